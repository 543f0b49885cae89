// Package logging builds the structured logger shared by the CLI and the
// store.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	clog "github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New returns a slog.Logger writing human-readable records to w at the
// given level (debug, info, warn or error).
func New(w io.Writer, level string) (*slog.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	h := clog.NewWithOptions(w, clog.Options{
		Level:           lvl,
		Prefix:          "confshelf",
		ReportTimestamp: lvl == clog.DebugLevel,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(h), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
