package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/czarbot/czarbot/cmd/czarbot/shared"
	"github.com/czarbot/czarbot/internal/client"
	"github.com/czarbot/czarbot/internal/tui"
)

// ClientCmd connects to a server and plays interactively.
type ClientCmd struct {
	Server string `short:"s" default:"ws://localhost:8080/ws" help:"Server URL"`
	Name   string `short:"n" required:"" help:"Your player name"`
	Room   string `short:"r" default:"lounge" help:"Room to join"`
	Debug  bool   `help:"Enable debug logging to czarbot-client.log"`
}

func (c *ClientCmd) Run() error {
	// The TUI owns the terminal, so logs go to a file or nowhere.
	logger := log.New(io.Discard)
	if c.Debug {
		f, err := os.OpenFile("czarbot-client.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = shared.SetupLogger("debug")
		logger.SetOutput(f)
	}

	conn := client.New(c.Server, logger)
	if err := conn.Connect(); err != nil {
		return err
	}
	defer conn.Disconnect()

	model := tui.NewModel(conn, c.Name, c.Room, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running client: %w", err)
	}
	return nil
}
