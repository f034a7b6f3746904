package logging

import (
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// NewLogger returns a pterm structured logger writing to w at the given level
// ("trace", "debug", "info", "warn", "error", "disabled").
func NewLogger(level string, w io.Writer) *pterm.Logger {
	if w == nil {
		w = io.Discard
	}
	return pterm.DefaultLogger.WithLevel(ParseLevel(level)).WithWriter(w)
}

// Discard returns a logger that drops everything.
func Discard() *pterm.Logger {
	return NewLogger("disabled", io.Discard)
}

// ParseLevel maps a level name to a pterm level; unknown names mean info.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "disabled", "off", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
