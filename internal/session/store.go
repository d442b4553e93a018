package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lunchroulette/lunchd/internal/models"
)

// Store persists the session identity under a single key: read at startup,
// written on login and favorite toggles, deleted on logout.
type Store interface {
	Load() (*models.UserRecord, error) // Load returns nil when no session is saved
	Save(identity models.UserRecord) error
	Clear() error
}

// FileStore keeps the identity in one JSON file, the CLI equivalent of the
// SPA's lunchroulette_current_user localStorage key.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed session store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*models.UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var identity models.UserRecord
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}

	return &identity, nil
}

func (s *FileStore) Save(identity models.UserRecord) error {
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the identity in memory only. Used in tests and anywhere
// session persistence across restarts is not wanted.
type MemoryStore struct {
	mu       sync.Mutex
	identity *models.UserRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return nil, nil
	}
	clone := s.identity.Clone()
	return &clone, nil
}

func (s *MemoryStore) Save(identity models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := identity.Clone()
	s.identity = &clone
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	return nil
}
