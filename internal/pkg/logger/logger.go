package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ReplaceAttrFunc rewrites attributes before they are written.
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// New returns a JSON logger writing to stdout at the given level.
// Unknown levels fall back to info.
func New(level string, replace ReplaceAttrFunc) *slog.Logger {
	return NewWithWriter(os.Stdout, level, replace)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string, replace ReplaceAttrFunc) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: replace,
	}))
}

// ParseLevel maps a LOG_LEVEL string to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
