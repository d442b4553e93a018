package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/shared"
)

// document is the on-disk envelope for the flat JSON store.
type document struct {
	Version int64               `json:"version"`
	Users   []models.UserRecord `json:"users"`
}

// DocumentRepository implements [models.CollectionStore] on a single JSON
// file, the degraded/offline variant of the service. Replaces go through a
// temp file in the same directory followed by a rename, so a crash partway
// through leaves the previous document intact.
type DocumentRepository struct {
	path string
	mu   sync.RWMutex
}

var _ models.CollectionStore = (*DocumentRepository)(nil)

// NewDocumentRepository creates a document store backed by the file at path.
// The file does not have to exist yet; a missing file reads as an empty
// collection at version 0.
func NewDocumentRepository(path string) *DocumentRepository {
	return &DocumentRepository{path: path}
}

// ReadAll loads the current document.
func (r *DocumentRepository) ReadAll(ctx context.Context) (models.Collection, error) {
	if err := ctx.Err(); err != nil {
		return models.Collection{}, fmt.Errorf("%w: %v", shared.ErrIOFailure, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return models.Collection{}, err
	}

	return models.Collection{Version: doc.Version, Users: doc.Users}, nil
}

// ReplaceAll swaps in the given records unconditionally.
func (r *DocumentRepository) ReplaceAll(ctx context.Context, users []models.UserRecord) (int64, error) {
	return r.replace(ctx, nil, users)
}

// CompareAndSwapAll swaps in the given records only if the stored version
// matches expected, otherwise fails with [shared.ErrConflict].
func (r *DocumentRepository) CompareAndSwapAll(ctx context.Context, expected int64, users []models.UserRecord) (int64, error) {
	return r.replace(ctx, &expected, users)
}

func (r *DocumentRepository) replace(ctx context.Context, expected *int64, users []models.UserRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrIOFailure, err)
	}

	if err := models.ValidateUsers(users); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return 0, err
	}

	if expected != nil && doc.Version != *expected {
		return 0, fmt.Errorf("%w: stored version %d, expected %d", shared.ErrConflict, doc.Version, *expected)
	}

	next := document{Version: doc.Version + 1, Users: users}
	if err := r.write(next); err != nil {
		return 0, err
	}

	return next.Version, nil
}

// load reads and decodes the document. Callers hold at least a read lock.
//
// A bare JSON array is accepted for compatibility with the browser-local
// revision of the SPA, which persisted the user list without an envelope;
// it reads as version 0.
func (r *DocumentRepository) load() (document, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return document{Version: 0, Users: []models.UserRecord{}}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("failed to read document: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return document{Version: 0, Users: []models.UserRecord{}}, nil
	}

	if trimmed[0] == '[' {
		var users []models.UserRecord
		if err := json.Unmarshal(trimmed, &users); err != nil {
			return document{}, fmt.Errorf("failed to decode legacy document: %w", err)
		}
		return document{Version: 0, Users: users}, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Users == nil {
		doc.Users = []models.UserRecord{}
	}

	return doc, nil
}

// write encodes doc to a temp file next to the target and renames it into
// place. Callers hold the write lock.
func (r *DocumentRepository) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp document: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to swap document: %w", err)
	}

	return nil
}
