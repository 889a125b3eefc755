package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a structured logger writing to w. JSON output is intended for
// service deployments; text output for interactive use.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init creates and sets the process-wide default slog logger on stderr.
func Init(level slog.Level, json bool) *slog.Logger {
	logger := New(os.Stderr, level, json)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("trace", "debug", "info", "warn", "error") to
// slog.Level. Trace maps below debug so per-candidate diagnostics can be
// enabled separately. Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
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

// LevelTrace sits below slog.LevelDebug for high-volume diagnostics.
const LevelTrace = slog.Level(-8)
