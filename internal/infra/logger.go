package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging type shared across packages.
type Logger = zerolog.Logger

// NewLogger returns the service logger on stdout for cfg.
func NewLogger(cfg *Config) Logger {
	return newLogger(os.Stdout, cfg.AppEnv, cfg.LogLevel)
}

// newLogger picks console output and debug level in development and JSON at
// info elsewhere. A valid LOG_LEVEL overrides the level either way.
func newLogger(out io.Writer, appEnv, level string) Logger {
	dev := appEnv == "development"

	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}

	if dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "thumbnailer").
		Logger()
}
