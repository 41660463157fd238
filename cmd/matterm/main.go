package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"matterm/internal/config"
	"matterm/internal/logging"
	"matterm/internal/loopback"
	"matterm/internal/protocol"
	"matterm/internal/tui"
)

func main() {
	cfg := config.ParseFlags()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "matterm: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.DebugLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "matterm: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client, err := loopback.StartSession(protocol.Credentials{UserID: cfg.UserID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "matterm: %v\n", err)
		os.Exit(1)
	}
	loopback.SeedDemo(client)

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(tui.New(cfg, client, logger), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "matterm fatal error: %v\n", err)
		os.Exit(1)
	}
}
