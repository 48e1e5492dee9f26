package config

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger for the given environment. Production gets
// a JSON handler, everything else a text handler. The minimum level comes
// from LOG_LEVEL (debug, info, warn, error; default info).
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(os.Getenv("LOG_LEVEL"))}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
