// Package storage persists simulation runs: a plain-text snapshot codec for
// layer distributions, a versioned JSON codec for run records, and Store
// backends (in-memory, and SQLite when built with -tags sqlite).
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrVersionMismatch indicates a record written by another codec version.
	ErrVersionMismatch = errors.New("storage: record version mismatch")
	// ErrNotInitialized indicates use of a store before Init.
	ErrNotInitialized = errors.New("storage: store is not initialized")
	// ErrUnsupportedBackend indicates an unknown or unavailable store kind.
	ErrUnsupportedBackend = errors.New("storage: unsupported store backend")
	// ErrMalformedSnapshot indicates an unparsable snapshot line.
	ErrMalformedSnapshot = errors.New("storage: malformed snapshot")
	// ErrMissingID indicates a record without an id.
	ErrMissingID = errors.New("storage: record has no id")
)

// Store defines persistence operations for simulation runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, rec RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID            string
	CreatedAt     time.Time
	StepsRun      int
	Reason        string
	Magnetization float64
}
