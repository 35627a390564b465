// Package logger provides a thin slog wrapper with level and format
// configuration shared by the CLI and the gateway.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

// Options holds configurable settings for the logger.
type Options struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // "json" or "text"
	Output io.Writer
}

// New creates a Logger from the given options. Zero-value fields fall
// back to INFO/text/stderr.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a text logger at INFO level writing to stderr.
func NewDefault() *Logger {
	return New(Options{})
}

// Discard returns a logger that drops everything. Used in tests and in
// quiet mode.
func Discard() *Logger {
	return New(Options{Output: io.Discard, Level: "ERROR"})
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
