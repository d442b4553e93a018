package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/services"
	"github.com/lunchroulette/lunchd/internal/shared"
)

// defaultMaxRetries bounds the fetch-mutate-publish cycle on version conflicts.
const defaultMaxRetries = 3

// Manager mediates all account operations for one session.
type Manager struct {
	api        services.CollectionAPI
	sessions   Store
	logger     *log.Logger
	maxRetries int

	mu       sync.Mutex
	identity *models.UserRecord
}

// ManagerOpts contains configuration options for creating a Manager.
type ManagerOpts struct {
	API        services.CollectionAPI
	Sessions   Store
	Logger     *log.Logger
	MaxRetries int
}

// NewManager creates a Manager. API is required; the session store defaults
// to in-memory and the retry budget to 3 attempts.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Sessions == nil {
		opts.Sessions = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	return &Manager{
		api:        opts.API,
		sessions:   opts.Sessions,
		logger:     opts.Logger,
		maxRetries: opts.MaxRetries,
	}
}

// Restore loads a previously persisted identity, if any. Called once at
// startup; the restored identity is a snapshot from the last confirmed write.
func (m *Manager) Restore() error {
	identity, err := m.sessions.Load()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	m.mu.Lock()
	m.identity = identity
	m.mu.Unlock()

	if identity != nil {
		m.logger.Debug("session restored", "username", identity.Username)
	}
	return nil
}

// Current returns a copy of the authenticated identity, if any.
func (m *Manager) Current() (models.UserRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity == nil {
		return models.UserRecord{}, false
	}
	return m.identity.Clone(), true
}

// Signup creates a new account with empty favorites and logs it in.
// Fails with [shared.ErrDuplicateUser] when the username is taken, and with
// [shared.ErrContention] when the retry budget runs out.
func (m *Manager) Signup(ctx context.Context, username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", shared.ErrInvalidArgument)
	}

	err := m.publish(ctx, func(c models.Collection) ([]models.UserRecord, bool, error) {
		if _, ok := c.Find(username); ok {
			return nil, false, shared.ErrDuplicateUser
		}
		return append(c.Users, models.NewUserRecord(username, password)), true, nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("account created", "username", username)
	return m.Login(ctx, username, password)
}

// Login finds the record with exactly matching username and password, makes
// a snapshot of it the current identity and persists it to the session store.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	collection, err := m.api.FetchAll(ctx)
	if err != nil {
		return err
	}

	record, ok := collection.Find(username)
	if !ok || record.Password != password {
		return shared.ErrInvalidCredentials
	}

	if err := m.setIdentity(record); err != nil {
		return err
	}

	m.logger.Info("logged in", "username", username)
	return nil
}

// Logout clears the identity and removes it from the session store.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.identity = nil
	m.mu.Unlock()

	return m.sessions.Clear()
}

// ToggleFavorite adds entry to the current user's favorites, or removes it
// when an entry with the same id is already present. Reports whether a write
// was applied: false without an active session, and false when the user
// vanished from the collection concurrently. The identity is only updated
// after the service confirms the write.
func (m *Manager) ToggleFavorite(ctx context.Context, entry models.FavoriteEntry) (bool, error) {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return false, nil
	}
	username := m.identity.Username
	m.mu.Unlock()

	var updated models.UserRecord

	err := m.publish(ctx, func(c models.Collection) ([]models.UserRecord, bool, error) {
		users := c.Clone().Users
		for i := range users {
			if users[i].Username != username {
				continue
			}
			added := users[i].Toggle(entry)
			updated = users[i].Clone()
			m.logger.Debug("toggling favorite", "username", username, "id", entry.ID(), "added", added)
			return users, true, nil
		}
		// User deleted concurrently: nothing to publish.
		return nil, false, nil
	})
	if err != nil {
		return false, err
	}

	if updated.Username == "" {
		return false, nil
	}
	return true, m.setIdentity(updated)
}

// IsFavorite is a pure read against the cached identity; no round trip.
func (m *Manager) IsFavorite(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity == nil {
		return false
	}
	return m.identity.HasFavorite(id)
}

// mutate inspects a freshly fetched collection and returns the records to
// publish. Returning publish=false aborts the cycle without an error.
type mutate func(c models.Collection) (users []models.UserRecord, publish bool, err error)

// publish runs the fetch-mutate-publish cycle with bounded retry on version
// conflicts. No lock is held across the round trips.
func (m *Manager) publish(ctx context.Context, fn mutate) error {
	var lastErr error

	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		collection, err := m.api.FetchAll(ctx)
		if err != nil {
			return err
		}

		users, ok, err := fn(collection)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if _, err := m.api.Replace(ctx, collection.Version, users); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				m.logger.Debug("publish conflict, retrying", "attempt", attempt, "version", collection.Version)
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("%w: %v", shared.ErrContention, lastErr)
}

// setIdentity replaces the current identity and mirrors it to the session
// store. A store failure surfaces as ErrIOFailure; the in-memory identity is
// kept, since the collection write it reflects already succeeded.
func (m *Manager) setIdentity(record models.UserRecord) error {
	snapshot := record.Clone()

	m.mu.Lock()
	m.identity = &snapshot
	m.mu.Unlock()

	if err := m.sessions.Save(snapshot); err != nil {
		return fmt.Errorf("%w: failed to persist session: %v", shared.ErrIOFailure, err)
	}
	return nil
}
