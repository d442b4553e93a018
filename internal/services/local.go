package services

import (
	"context"

	"github.com/lunchroulette/lunchd/internal/models"
)

// LocalCollection implements [CollectionAPI] directly over a store, without a
// server round trip. This is the degraded/offline variant: the CLI pointed
// straight at the JSON document (or SQLite file) the way the original SPA
// revision used browser-local storage.
type LocalCollection struct {
	store models.CollectionStore
}

var _ CollectionAPI = (*LocalCollection)(nil)

// NewLocalCollection wraps a store in the client interface.
func NewLocalCollection(store models.CollectionStore) *LocalCollection {
	return &LocalCollection{store: store}
}

func (l *LocalCollection) FetchAll(ctx context.Context) (models.Collection, error) {
	return l.store.ReadAll(ctx)
}

func (l *LocalCollection) Replace(ctx context.Context, expected int64, users []models.UserRecord) (int64, error) {
	return l.store.CompareAndSwapAll(ctx, expected, users)
}
