// Package logging provides structured logging configuration using log/slog.
//
// Every pipeline step logs through loggers carrying run and entity
// context, so one run's entries can be correlated across ingest,
// consolidation, and store writes.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForRun returns a logger that stamps every entry with the run ID.
//
// Usage:
//
//	log := logging.ForRun(runID)
//	log.Info("run started", "sources", len(sources))
func ForRun(runID string) *slog.Logger {
	return slog.Default().With("run_id", runID)
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating step-specific loggers that carry
// consistent context through a multi-stage run.
func WithFields(log *slog.Logger, args ...any) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With(args...)
}
