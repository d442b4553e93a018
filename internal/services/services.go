package services

import (
	"context"

	"github.com/lunchroulette/lunchd/internal/models"
)

// CollectionAPI is the two-operation surface of the collection service.
// There is deliberately no per-record operation: callers fetch the whole
// collection, mutate it in memory and publish it back with the version
// they read.
type CollectionAPI interface {
	// FetchAll returns the current collection, version included.
	FetchAll(ctx context.Context) (models.Collection, error)

	// Replace publishes users as the new collection, conditional on the
	// stored version still being expected. Returns the new version, or
	// shared.ErrConflict when another writer got there first.
	Replace(ctx context.Context, expected int64, users []models.UserRecord) (int64, error)
}
