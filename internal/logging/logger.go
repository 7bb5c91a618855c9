// Package logging builds the structured loggers used by sercon.
//
// While a console session owns the terminal nothing may be written to
// stderr, so session loggers write into a Capture that is replayed once
// the terminal has been restored.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// New creates a structured logger writing to w. When stderr is a terminal
// it uses slog.TextHandler for human-readable output; otherwise
// slog.JSONHandler for machine-parseable output. The choice follows
// stderr, not w, because captured records end up on stderr.
//
// Callers scope the logger with component context via With():
//
//	logger := logging.New(capture, verbose).With("device", cfg.Device)
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
