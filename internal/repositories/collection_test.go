package repositories

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleUsers(t *testing.T) []models.UserRecord {
	t.Helper()

	fav, err := models.NewFavorite("3", map[string]any{"name": "Taco Cart", "cuisine": "mexican"})
	if err != nil {
		t.Fatalf("failed to build favorite: %v", err)
	}

	return []models.UserRecord{
		models.NewUserRecord("alice", "pw1"),
		{Username: "bob", Password: "pw2", Favorites: []models.FavoriteEntry{fav}},
	}
}

func TestCollectionRepositoryReadAllEmpty(t *testing.T) {
	repo := NewCollectionRepository(setupTestDB(t))

	collection, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if collection.Version != 0 {
		t.Errorf("expected version 0, got %d", collection.Version)
	}
	if len(collection.Users) != 0 {
		t.Errorf("expected no users, got %d", len(collection.Users))
	}
}

func TestCollectionRepositoryRoundTrip(t *testing.T) {
	repo := NewCollectionRepository(setupTestDB(t))
	ctx := context.Background()

	version, err := repo.ReplaceAll(ctx, sampleUsers(t))
	if err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after first replace, got %d", version)
	}

	collection, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if collection.Version != 1 {
		t.Errorf("expected version 1, got %d", collection.Version)
	}
	if len(collection.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(collection.Users))
	}
	if collection.Users[0].Username != "alice" || collection.Users[1].Username != "bob" {
		t.Errorf("user order not preserved: %s, %s", collection.Users[0].Username, collection.Users[1].Username)
	}
	if !collection.Users[1].HasFavorite("3") {
		t.Error("bob's favorite did not survive the round trip")
	}
}

func TestCollectionRepositoryVersionIncrements(t *testing.T) {
	repo := NewCollectionRepository(setupTestDB(t))
	ctx := context.Background()
	users := sampleUsers(t)

	for want := int64(1); want <= 3; want++ {
		version, err := repo.ReplaceAll(ctx, users)
		if err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}
		if version != want {
			t.Errorf("expected version %d, got %d", want, version)
		}
	}
}

func TestCollectionRepositoryCompareAndSwap(t *testing.T) {
	repo := NewCollectionRepository(setupTestDB(t))
	ctx := context.Background()
	users := sampleUsers(t)

	t.Run("matching version succeeds", func(t *testing.T) {
		version, err := repo.CompareAndSwapAll(ctx, 0, users)
		if err != nil {
			t.Fatalf("CompareAndSwapAll failed: %v", err)
		}
		if version != 1 {
			t.Errorf("expected version 1, got %d", version)
		}
	})

	t.Run("stale version fails with conflict", func(t *testing.T) {
		_, err := repo.CompareAndSwapAll(ctx, 0, users)
		if !errors.Is(err, shared.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("failed swap leaves collection untouched", func(t *testing.T) {
		collection, err := repo.ReadAll(ctx)
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if collection.Version != 1 {
			t.Errorf("expected version 1 after failed swap, got %d", collection.Version)
		}
	})
}

func TestCollectionRepositoryRejectsDuplicates(t *testing.T) {
	repo := NewCollectionRepository(setupTestDB(t))

	users := []models.UserRecord{
		models.NewUserRecord("alice", "pw1"),
		models.NewUserRecord("alice", "pw2"),
	}

	_, err := repo.ReplaceAll(context.Background(), users)
	if !errors.Is(err, shared.ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}
