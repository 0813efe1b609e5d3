// Package commands implements the journal command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sakif/moodjournal/internal/app"
	"github.com/sakif/moodjournal/internal/config"
	"github.com/sakif/moodjournal/internal/logging"
)

// Version is stamped at build time with -ldflags "-X ...commands.Version=".
var Version = "dev"

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

func New() *cobra.Command {
	ro := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Mood journal: write daily entries, search them and follow your streaks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.SetOut(color.Output)

	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", "",
		"config file (default: journal.{yaml,toml,json} in . or ~/.config/moodjournal)")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "",
		"override log.level (debug, info, warn, error)")

	AddCommands(cmd, ro)
	return cmd
}

func AddCommands(topLevel *cobra.Command, ro *RootOptions) {
	addServe(topLevel, ro)
	addMCP(topLevel, ro)
	addSearch(topLevel, ro)
	addShow(topLevel, ro)
	addSave(topLevel, ro)
	addDelete(topLevel, ro)
	addRecent(topLevel, ro)
	addStreaks(topLevel, ro)
	addMoods(topLevel, ro)
	addTags(topLevel, ro)
	addSummary(topLevel, ro)
	addExport(topLevel, ro)
	addEvents(topLevel, ro)
	addVersion(topLevel)
}

// session is one opened journal: config, logger and services.
type session struct {
	*app.App
	logCloser io.Closer
}

// open loads configuration and opens the journal. Logs go to console, which
// must not be stdout when stdout carries a protocol.
func open(ro *RootOptions, console io.Writer) (*session, error) {
	cfg, err := config.Load(ro.ConfigPath)
	if err != nil {
		return nil, err
	}
	if ro.LogLevel != "" {
		cfg.Log.Level = ro.LogLevel
	}

	logger, closer, err := logging.NewWithWriter(console, cfg.Log)
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &session{App: a, logCloser: closer}, nil
}

func (s *session) Close() {
	if err := s.App.Close(); err != nil {
		s.Logger.Warn("closing database", slog.String("error", err.Error()))
	}
	s.logCloser.Close()
}

// withSession opens the journal for a one-shot command, logging to stderr.
func withSession(ro *RootOptions, fn func(s *session) error) error {
	s, err := open(ro, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
