package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lunchroulette/lunchd/internal/models"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	t.Run("load before save returns nil", func(t *testing.T) {
		identity, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})

	t.Run("save and load round trip", func(t *testing.T) {
		if err := store.Save(models.NewUserRecord("alice", "pw1")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		identity, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if identity == nil || identity.Username != "alice" {
			t.Errorf("unexpected identity: %+v", identity)
		}
	})

	t.Run("session file is private", func(t *testing.T) {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}
	})

	t.Run("clear removes the file", func(t *testing.T) {
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected session file to be removed")
		}

		// Clearing an already empty store is fine.
		if err := store.Clear(); err != nil {
			t.Errorf("Clear on missing file failed: %v", err)
		}
	})

	t.Run("corrupt file surfaces an error", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
			t.Fatalf("failed to seed corrupt file: %v", err)
		}
		if _, err := store.Load(); err == nil {
			t.Error("expected an error loading a corrupt session file")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if identity, err := store.Load(); err != nil || identity != nil {
		t.Errorf("expected empty store, got %+v, %v", identity, err)
	}

	record := models.NewUserRecord("alice", "pw1")
	if err := store.Save(record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Username != "alice" {
		t.Errorf("unexpected identity: %+v", loaded)
	}

	// The store hands out clones, not its internal record.
	loaded.Username = "mallory"
	again, _ := store.Load()
	if again.Username != "alice" {
		t.Error("Load must return an independent copy")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if identity, _ := store.Load(); identity != nil {
		t.Error("expected empty store after Clear")
	}
}
