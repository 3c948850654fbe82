package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Snapshots() SnapshotStore
}

// SnapshotStore keeps the seat usage captured by each run, per toolbox.
type SnapshotStore interface {
	// Record stores the snapshots of one run as the latest entry of each
	// toolbox and prepends them to the toolbox history.
	Record(ctx context.Context, snapshots []Snapshot) error
	Latest(ctx context.Context, toolbox string) (*Snapshot, error)
	// History returns up to limit snapshots of a toolbox, newest first.
	History(ctx context.Context, toolbox string, limit int) ([]Snapshot, error)
	Toolboxes(ctx context.Context) ([]string, error)
}
