package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger creates a new structured logger with JSON output
func NewLogger(level string) *slog.Logger {
	return newJSONLogger(os.Stdout, level)
}

// NewTextLogger creates a colored text logger for development
func NewTextLogger(level string) *slog.Logger {
	return newTextLogger(os.Stdout, level)
}

// New picks the JSON or text logger by format name
func New(format, level string) *slog.Logger {
	if format == "text" {
		return NewTextLogger(level)
	}
	return NewLogger(level)
}

func newJSONLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:   ParseLevel(level),
		NoColor: w != os.Stdout,
	}))
}
