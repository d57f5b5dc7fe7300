// ABOUTME: Entry point for the Pak ARIESS voice note chat
// ABOUTME: Parses CLI flags, sets up logging and starts the application
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/pak-ariess/voicenote-go/internal/app"
	"github.com/pak-ariess/voicenote-go/internal/config"
	"github.com/pak-ariess/voicenote-go/internal/observability"
	"github.com/pak-ariess/voicenote-go/internal/version"
)

var (
	logFile     = flag.String("log-file", "voicenote.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use line mode with streaming logs")
	streamLogs  = flag.Bool("stream-logs", false, "Alias for -no-tui")
	exportDir   = flag.String("export-dir", "", "Directory for saved voice notes (default: working directory)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		observability.InitLogger(cfg.LogLevel, false, f)
	} else {
		// Line mode: log to both stdout and file
		observability.InitLogger(cfg.LogLevel, cfg.LogPretty, io.MultiWriter(os.Stdout, f))
	}

	log.Info().Str("version", version.Version).Bool("tui", useTUI).Msg("Starting voice note chat")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(app.Config{
		Settings:  cfg,
		UseTUI:    useTUI,
		ExportDir: *exportDir,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}

	log.Info().Msg("Voice note chat stopped")
}
