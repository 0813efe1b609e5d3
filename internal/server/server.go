// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer: it decides which URL patterns map to
// which handler, what middleware runs in front of them, and how the server
// starts and stops. The services themselves come from internal/app, so the
// CLI and the MCP server share exactly the same store and business logic.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/moodjournal/internal/app"
	"github.com/sakif/moodjournal/internal/handler"
	"github.com/sakif/moodjournal/internal/middleware"
)

// ShutdownTimeout is how long in-flight requests get to finish.
const ShutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port int
}

// Server represents the HTTP server and the services it exposes.
//
// The server does not own the database: whoever built the app closes it
// after Run returns.
type Server struct {
	router *chi.Mux
	config Config
	app    *app.App
	logger *slog.Logger
}

// New creates a Server over the services in a.
func New(cfg Config, a *app.App) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		app:    a,
		logger: a.Logger,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                        → database ping
// GET    /metrics                        → prometheus exposition
// GET    /api/entries                    → search (filters, sort, paging)
// GET    /api/entries/recent             → last updated entries
// GET    /api/entries/range              → entries between two dates
// GET    /api/entries/{date}             → one day (PIN via X-Entry-PIN)
// PUT    /api/entries/{date}             → create or replace the day
// DELETE /api/entries/{date}             → delete the day
// POST   /api/entries/{date}/unlock      → unlock a PIN-protected day
// POST   /api/entries/{date}/lock        → lock it again
// GET    /api/stats/streaks              → current / longest / missed
// GET    /api/stats/summary              → dashboard for a range
// GET    /api/moods, /api/tags           → vocabularies in use
// GET    /api/moods/taxonomy             → the fixed mood list
// GET|POST /api/custom-tags, DELETE /api/custom-tags/{id}
// GET    /api/events                     → events (?month= or ?from=&to=)
// POST   /api/events                     → new event
// GET|PUT|DELETE /api/events/{id}
//
// Middleware order matters: RequestID must run before Logger so the id is
// in the log line, and Recoverer sits inside Logger so a panic is still
// logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.app.Metrics))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.app.Metrics.Handler())

	entries := handler.NewEntryHandler(s.app.Journal, s.logger)
	stats := handler.NewStatsHandler(s.app.Journal, s.app.Streaks, s.app.Dashboard, s.app.CustomTags, s.logger)
	customTags := handler.NewCustomTagHandler(s.app.CustomTags, s.logger)
	calendar := handler.NewCalendarHandler(s.app.Calendar, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", entries.HandleSearch)
			r.Get("/recent", entries.HandleRecent)
			r.Get("/range", entries.HandleRange)
			r.Get("/{date}", entries.HandleGet)
			r.Put("/{date}", entries.HandleSave)
			r.Delete("/{date}", entries.HandleDelete)
			r.Post("/{date}/unlock", entries.HandleUnlock)
			r.Post("/{date}/lock", entries.HandleLock)
		})

		r.Get("/stats/streaks", stats.HandleStreaks)
		r.Get("/stats/summary", stats.HandleSummary)
		r.Get("/moods", stats.HandleMoods)
		r.Get("/moods/taxonomy", stats.HandleTaxonomy)
		r.Get("/tags", stats.HandleTags)

		r.Get("/custom-tags", customTags.HandleList)
		r.Post("/custom-tags", customTags.HandleCreate)
		r.Delete("/custom-tags/{id}", customTags.HandleDelete)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", calendar.HandleList)
			r.Post("/", calendar.HandleCreate)
			r.Get("/{id}", calendar.HandleGet)
			r.Put("/{id}", calendar.HandleUpdate)
			r.Delete("/{id}", calendar.HandleDelete)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.app.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "unavailable")
		return
	}
	fmt.Fprintln(w, "ok")
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully:
//  1. stop accepting new connections
//  2. wait up to ShutdownTimeout for in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
