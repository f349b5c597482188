package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"wanderlist/cmd"
	"wanderlist/internal/db"
	"wanderlist/internal/destinations"
	"wanderlist/internal/store"
	"wanderlist/internal/tips"
	"wanderlist/internal/ui"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so logs go to a file.
	logFile, err := os.OpenFile(config.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(config.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Initialize tip source
	var remote tips.Source
	switch {
	case config.TipsEnabled && config.OpenAIKey != "":
		remote = tips.NewRemoteSource(config.OpenAIKey, config.BaseURL, config.Model)
		logger.Info("AI tips enabled", "model", config.Model)
	case !config.TipsEnabled:
		fmt.Fprintln(os.Stderr, "ℹ  AI tips turned off during setup, using offline tips")
	default:
		fmt.Fprintln(os.Stderr, "ℹ  No OPENAI_API_KEY set, using offline tips")
	}
	provider := tips.NewProvider(remote, logger)

	// Detect terminal capabilities
	termCaps := ui.DetectTerminalCapabilities()

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	records := store.New(db.NewSlots(database, config.QuotaBytes), logger)
	if config.Reset {
		if err := records.Reset(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset destinations: %v\n", err)
			os.Exit(1)
		}
	}
	service := destinations.NewService(ctx, records, logger)

	// Create and run Bubble Tea app
	app := ui.New(service, provider, termCaps, ui.PrefsPath(config.ConfigDir), logger)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("app exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}
