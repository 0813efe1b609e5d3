// Package main is the entry point for the journal HTTP server.
//
// main stays minimal: read configuration, build the logger, open the
// journal and start the server. Everything else lives in internal/.
//
// Configuration comes from journal.{yaml,toml,json} (or the file named by
// JOURNAL_CONFIG) and JOURNAL_* environment variables, e.g.
//
//	JOURNAL_DB_PATH=/var/lib/journal/journal.db JOURNAL_HTTP_PORT=9090 server
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/moodjournal/internal/app"
	"github.com/sakif/moodjournal/internal/config"
	"github.com/sakif/moodjournal/internal/logging"
	"github.com/sakif/moodjournal/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	cfg, err := config.Load(os.Getenv("JOURNAL_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		slog.Error("failed to set up logging", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	// === 3. DATABASE AND SERVICES ===
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to open journal",
			slog.String("database", cfg.DB.Path),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. SERVE ===
	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM).
	srv := server.New(server.Config{Port: cfg.HTTP.Port}, a)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		a.Close()
		os.Exit(1)
	}

	if err := a.Close(); err != nil {
		logger.Warn("failed to close database", slog.String("error", err.Error()))
	}
}
