package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the game server"`
	Client  ClientCmd        `cmd:"" help:"Connect to a server as an interactive player"`
	Decks   DecksCmd         `cmd:"" help:"Inspect and validate card deck files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("czarbot"),
		kong.Description("A fill-in-the-blank card game played over chat"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
