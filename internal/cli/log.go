// Package cli implements the langpack command-line interface.
//
// # Commands
//
//   - resolve: fetch and cache the language packs of configured repositories
//   - check: list the translation updates a site should install
//   - cache: clear the cache or print its location
//   - poll: refresh every repository on a cron schedule
//   - serve: expose diagnostics, metrics and a forced recheck over HTTP
//   - pick: browse repositories and their packs interactively
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Long-running
// commands tag their log lines with a run ID.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// withRunID returns a child logger tagging every line with a fresh run ID.
func withRunID(l *log.Logger) (*log.Logger, string) {
	id := uuid.NewString()
	return l.With("run", id[:8]), id
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Resolved 12 repositories (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
