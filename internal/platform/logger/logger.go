package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the process logger: JSON in production, text elsewhere.
func New(environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
