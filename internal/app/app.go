// Package app opens the entry store and builds the services every host
// surface (HTTP, CLI, MCP) shares.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/moodjournal/internal/config"
	"github.com/sakif/moodjournal/internal/metrics"
	sqliteRepo "github.com/sakif/moodjournal/internal/repository/sqlite"
	"github.com/sakif/moodjournal/internal/service"
	"github.com/sakif/moodjournal/internal/unlock"
)

// MetricsNamespace prefixes every exported prometheus series.
const MetricsNamespace = "moodjournal"

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Journal    *service.JournalService
	Streaks    *service.StreakService
	Dashboard  *service.DashboardService
	CustomTags *service.CustomTagService
	Calendar   *service.CalendarService

	db *sqliteRepo.DB
}

// New opens the database named in cfg, creating its directory if needed,
// and wires the services on top of it. Call Close when done.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.EnsureDBDir(); err != nil {
		return nil, err
	}

	db, err := sqliteRepo.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	m := metrics.New(MetricsNamespace)
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Journal: service.NewJournalService(db, unlock.NewCache(), service.JournalConfig{
			UnlockTTL:   cfg.Unlock.TTL,
			MaxPageSize: cfg.Search.MaxPageSize,
			Metrics:     m,
		}, logger),
		Streaks:    service.NewStreakService(db, logger),
		Dashboard:  service.NewDashboardService(db, logger),
		CustomTags: service.NewCustomTagService(db, logger),
		Calendar:   service.NewCalendarService(db, logger),
		db:         db,
	}

	logger.Debug("journal opened", slog.String("database", cfg.DB.Path))
	return a, nil
}

// Ping reports whether the database is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.db.Ping(ctx)
}

func (a *App) Close() error {
	return a.db.Close()
}
