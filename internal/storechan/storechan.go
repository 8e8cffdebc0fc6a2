// Package storechan defines the append-only per-scope storage channel used
// for snapshot records, plus a factory over the available drivers.
//
// Record names embed a zero-padded creation timestamp, so lexical order over
// names is chronological order; List relies on that to return newest-first.
package storechan

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Channel is an append-style store of named binary records grouped by scope.
//
// Append is last-write-wins for a duplicate name within a scope. Delete on a
// missing record is a no-op.
type Channel interface {
	// Append stores a record under the scope.
	Append(ctx context.Context, scope, name string, payload []byte) error
	// List returns record names for the scope, newest-first. A limit of zero
	// or less returns all records.
	List(ctx context.Context, scope string, limit int) ([]string, error)
	// Fetch returns a record payload, or ErrNotFound.
	Fetch(ctx context.Context, scope, name string) ([]byte, error)
	// Delete removes a record.
	Delete(ctx context.Context, scope, name string) error
	// Scopes returns every scope that has at least one record.
	Scopes(ctx context.Context) ([]string, error)
	// Close releases driver resources.
	Close() error
}
