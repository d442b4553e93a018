package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/repositories"
	"github.com/lunchroulette/lunchd/internal/shared"
)

func TestLocalCollection(t *testing.T) {
	store := repositories.NewDocumentRepository(filepath.Join(t.TempDir(), "users.json"))
	api := NewLocalCollection(store)
	ctx := context.Background()

	users := []models.UserRecord{models.NewUserRecord("alice", "pw1")}

	version, err := api.Replace(ctx, 0, users)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}

	collection, err := api.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if collection.Version != 1 || len(collection.Users) != 1 {
		t.Errorf("unexpected collection: %+v", collection)
	}

	if _, err := api.Replace(ctx, 0, users); !errors.Is(err, shared.ErrConflict) {
		t.Errorf("expected ErrConflict on stale version, got %v", err)
	}
}
