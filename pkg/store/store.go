// Package store persists board snapshots by instance name.
//
// A store holds exactly one board per instance name; Put replaces the whole
// snapshot. FileStore keeps boards as JSON files for CLI usage, MongoStore
// keeps them as documents for serve mode. Both validate instance names
// before touching the backend and report misses as BOARD_NOT_FOUND.
package store

import (
	"context"

	"github.com/stormboard/stormboard/pkg/board"
)

// Store persists whole-board snapshots keyed by instance name.
type Store interface {
	// Get loads a board. Returns a BOARD_NOT_FOUND error when absent.
	Get(ctx context.Context, name string) (*board.Board, error)

	// Put saves a board under its InstanceName, replacing any prior
	// snapshot.
	Put(ctx context.Context, b *board.Board) error

	// Delete removes a board. Returns a BOARD_NOT_FOUND error when absent.
	Delete(ctx context.Context, name string) error

	// List returns all stored instance names, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
