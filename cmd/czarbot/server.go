package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/quartz"

	"github.com/czarbot/czarbot/cmd/czarbot/shared"
	"github.com/czarbot/czarbot/internal/server"
	"github.com/czarbot/czarbot/internal/server/statistics"
)

// ServerCmd runs the WebSocket game server.
type ServerCmd struct {
	Config   string `short:"c" default:"czarbot.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)

	addr := c.Addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}

	stats, err := statistics.Open(cfg.Server.StatsFile)
	if err != nil {
		return fmt.Errorf("opening stats file: %w", err)
	}

	clock := quartz.NewReal()
	service, err := server.NewGameService(cfg.Game, stats, clock, logger)
	if err != nil {
		return err
	}
	reaper := server.NewReaper(service, clock, cfg.Game.IdleTimeout(), time.Minute, logger)
	srv := server.NewServer(addr, service, reaper, logger)

	logger.Info("Starting czarbot server",
		"addr", addr,
		"promptDeck", cfg.Game.PromptDeck,
		"responseDeck", cfg.Game.ResponseDeck,
		"statsFile", cfg.Server.StatsFile,
		"idleTimeout", cfg.Game.IdleTimeout())

	ctx := shared.SetupSignalHandler(logger)
	err = srv.Start(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
