// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sakif/moodjournal/internal/config"
)

// New returns a logger writing to stderr and, when cfg.File is set, to a
// size-rotated log file. Close the returned io.Closer on exit.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is New with a caller-chosen console writer. The CLI passes
// io.Discard when its stdout carries a protocol.
func NewWithWriter(console io.Writer, cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if s := strings.TrimSpace(cfg.Level); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return nil, nil, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
	}

	var (
		writer io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
			Compress:   true,
		}
		writer = io.MultiWriter(console, file)
		closer = file
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	case "", "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
