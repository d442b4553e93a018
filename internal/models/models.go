package models

import "context"

// CollectionStore defines the interface for collection persistence.
// Implementations include the SQLite table store and the flat JSON
// document store.
type CollectionStore interface {
	// ReadAll returns the current full collection. Never returns
	// partially-written data: a concurrent in-progress replace must not
	// be visible as a torn read.
	ReadAll(ctx context.Context) (Collection, error)

	// ReplaceAll atomically discards the previous collection and persists
	// the given records unconditionally, returning the new version.
	// All-or-nothing: a failure partway through leaves the previous
	// collection intact.
	ReplaceAll(ctx context.Context, users []UserRecord) (int64, error)

	// CompareAndSwapAll replaces the collection only if the stored version
	// matches expected, returning the new version. Returns
	// shared.ErrConflict (wrapped) when another writer got there first.
	CompareAndSwapAll(ctx context.Context, expected int64, users []UserRecord) (int64, error)
}
