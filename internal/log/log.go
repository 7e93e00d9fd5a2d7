// Package log configures structured logging for sonarstep using log/slog.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup configures the default slog logger based on verbosity flags.
//
//   - quiet mode:   only WARN and ERROR messages
//   - normal mode:  INFO and above
//   - verbose mode: DEBUG and above
//
// Output is written to stderr. format selects slog.JSONHandler for "json";
// anything else uses slog.TextHandler.
func Setup(verbose, quiet bool, format string) {
	slog.SetDefault(New(os.Stderr, verbose, quiet, format))
}

// New builds a logger writing to w with the same level and format rules as
// Setup, without touching the process default.
func New(w io.Writer, verbose, quiet bool, format string) *slog.Logger {
	var level slog.Level
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, FormatJSON) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ValidFormat reports whether format is a recognised log format. The empty
// string means the default.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", FormatText, FormatJSON:
		return true
	}
	return false
}
