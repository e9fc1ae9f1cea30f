package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	StatsFile string `hcl:"stats_file,optional"`
}

// GameSettings contains the game rules the transport enforces and the
// card sources it loads.
type GameSettings struct {
	PromptDeck   string `hcl:"prompt_deck,optional"`
	ResponseDeck string `hcl:"response_deck,optional"`
	HandSize     int    `hcl:"hand_size,optional"`
	// DefaultMaxPoints is used when .play gives no point cap;
	// MinPoints/MaxPoints bound what players may ask for. The engine
	// itself accepts any cap, the range policy lives here.
	DefaultMaxPoints int `hcl:"default_max_points,optional"`
	MinPoints        int `hcl:"min_points,optional"`
	MaxPoints        int `hcl:"max_points,optional"`
	// IdleMinutes is how long a room may sit inactive before the
	// reaper abandons its game.
	IdleMinutes int `hcl:"idle_minutes,optional"`
}

// IdleTimeout returns the reaper cutoff as a duration.
func (gs GameSettings) IdleTimeout() time.Duration {
	return time.Duration(gs.IdleMinutes) * time.Minute
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   "localhost",
			Port:      8080,
			LogLevel:  "info",
			StatsFile: "czarbot-stats.json",
		},
		Game: GameSettings{
			PromptDeck:       "decks/prompts.txt",
			ResponseDeck:     "decks/responses.txt",
			HandSize:         10,
			DefaultMaxPoints: 5,
			MinPoints:        5,
			MaxPoints:        10,
			IdleMinutes:      30,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist or omits values.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var parsed struct {
		Server *ServerSettings `hcl:"server,block"`
		Game   *GameSettings   `hcl:"game,block"`
	}
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if parsed.Server != nil {
		merge(&config.Server.Address, parsed.Server.Address)
		mergeInt(&config.Server.Port, parsed.Server.Port)
		merge(&config.Server.LogLevel, parsed.Server.LogLevel)
		merge(&config.Server.StatsFile, parsed.Server.StatsFile)
	}
	if parsed.Game != nil {
		merge(&config.Game.PromptDeck, parsed.Game.PromptDeck)
		merge(&config.Game.ResponseDeck, parsed.Game.ResponseDeck)
		mergeInt(&config.Game.HandSize, parsed.Game.HandSize)
		mergeInt(&config.Game.DefaultMaxPoints, parsed.Game.DefaultMaxPoints)
		mergeInt(&config.Game.MinPoints, parsed.Game.MinPoints)
		mergeInt(&config.Game.MaxPoints, parsed.Game.MaxPoints)
		mergeInt(&config.Game.IdleMinutes, parsed.Game.IdleMinutes)
	}

	if config.Game.MinPoints > config.Game.MaxPoints {
		return nil, fmt.Errorf("min_points %d exceeds max_points %d",
			config.Game.MinPoints, config.Game.MaxPoints)
	}
	return config, nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
