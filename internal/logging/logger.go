// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the logging configuration.
type Config struct {
	Level    slog.Level
	FilePath string // optional log file, appended to
	Console  bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:   slog.LevelInfo,
		Console: true,
	}
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger with the given configuration. Console
// output is human-readable text; the file, when configured, gets JSON
// lines so downstream tooling can parse crawl logs.
func NewLogger(config Config) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: config.Level}

	var handlers []slog.Handler
	if config.Console {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
	}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.NewTextHandler(io.Discard, opts)), nil
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(multiHandler(handlers)), nil
	}
}

// SetDefault creates and sets a default logger with the given configuration.
func SetDefault(config Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
