// Package history persists build reports in a local SQLite database so
// recent builds can be listed with `docsite history`.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned when the store has been closed.
var ErrClosed = errors.New("history store closed")

// Record summarises one build.
type Record struct {
	BuildID     string
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     string
	Pages       int
	Assets      int
	Collections map[string]int
	GitCommit   string
	GitBranch   string
	Error       string
}

// Store persists build records.
type Store interface {
	Record(ctx context.Context, r Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
