// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options select the handler installed by New.
type Options struct {
	// Format is "json" or "text". Anything else means text.
	Format string
	// Level is the minimum level logged. The zero value is info.
	Level  slog.Level
	Output io.Writer
}

// OptionsFromEnv reads LOG_FORMAT and LOG_LEVEL. Text output at debug level
// is the development default.
func OptionsFromEnv() Options {
	return Options{
		Format: strings.ToLower(os.Getenv("LOG_FORMAT")),
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Output: os.Stdout,
	}
}

// New installs a logger built from the environment as slog's default.
func New() *slog.Logger {
	logger := NewWithOptions(OptionsFromEnv())
	slog.SetDefault(logger)
	return logger
}

// NewWithOptions builds a logger without touching the default.
func NewWithOptions(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level}))
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.Level, AddSource: true}))
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown values
// fall back to debug.
func ParseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
