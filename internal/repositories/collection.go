package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/shared"
)

// CollectionRepository implements [models.CollectionStore] on a SQLite table:
// one row per user, favorites JSON-encoded, plus the collection_meta version
// counter row.
type CollectionRepository struct {
	db *sql.DB
}

var _ models.CollectionStore = (*CollectionRepository)(nil)

// NewCollectionRepository creates a new [CollectionRepository] with the given database connection
func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// ReadAll returns the whole collection inside one transaction, so the version
// and the rows always belong to the same snapshot.
func (r *CollectionRepository) ReadAll(ctx context.Context) (models.Collection, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Collection{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	collection, err := readAllTx(tx)
	if err != nil {
		return models.Collection{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Collection{}, fmt.Errorf("failed to commit read transaction: %w", err)
	}

	return collection, nil
}

// ReplaceAll discards the stored collection and persists users unconditionally.
func (r *CollectionRepository) ReplaceAll(ctx context.Context, users []models.UserRecord) (int64, error) {
	return r.replace(ctx, nil, users)
}

// CompareAndSwapAll replaces the collection only when the stored version
// matches expected, otherwise fails with [shared.ErrConflict].
func (r *CollectionRepository) CompareAndSwapAll(ctx context.Context, expected int64, users []models.UserRecord) (int64, error) {
	return r.replace(ctx, &expected, users)
}

// replace runs the delete-and-reinsert cycle in a single transaction.
// When expected is non-nil the stored version is checked first.
func (r *CollectionRepository) replace(ctx context.Context, expected *int64, users []models.UserRecord) (int64, error) {
	if err := models.ValidateUsers(users); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stored int64
	if err := tx.QueryRow("SELECT version FROM collection_meta WHERE id = 1").Scan(&stored); err != nil {
		return 0, fmt.Errorf("failed to read collection version: %w", err)
	}

	if expected != nil && stored != *expected {
		return 0, fmt.Errorf("%w: stored version %d, expected %d", shared.ErrConflict, stored, *expected)
	}

	if _, err := tx.Exec("DELETE FROM users"); err != nil {
		return 0, fmt.Errorf("failed to clear users: %w", err)
	}

	for i, user := range users {
		favorites, err := json.Marshal(user.Favorites)
		if err != nil {
			return 0, fmt.Errorf("failed to encode favorites for %s: %w", user.Username, err)
		}

		_, err = tx.Exec(
			"INSERT INTO users (username, password, favorites, position) VALUES (?, ?, ?, ?)",
			user.Username, user.Password, string(favorites), i,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert user %s: %w", user.Username, err)
		}
	}

	newVersion := stored + 1
	if _, err := tx.Exec("UPDATE collection_meta SET version = ? WHERE id = 1", newVersion); err != nil {
		return 0, fmt.Errorf("failed to bump collection version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit replace: %w", err)
	}

	return newVersion, nil
}

// readAllTx loads version and rows from an open transaction.
func readAllTx(tx *sql.Tx) (models.Collection, error) {
	var version int64
	if err := tx.QueryRow("SELECT version FROM collection_meta WHERE id = 1").Scan(&version); err != nil {
		return models.Collection{}, fmt.Errorf("failed to read collection version: %w", err)
	}

	rows, err := tx.Query("SELECT username, password, favorites FROM users ORDER BY position ASC")
	if err != nil {
		return models.Collection{}, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.UserRecord{}
	for rows.Next() {
		var username, password, favoritesJSON string
		if err := rows.Scan(&username, &password, &favoritesJSON); err != nil {
			return models.Collection{}, fmt.Errorf("failed to scan user: %w", err)
		}

		var favorites []models.FavoriteEntry
		if err := json.Unmarshal([]byte(favoritesJSON), &favorites); err != nil {
			return models.Collection{}, fmt.Errorf("failed to decode favorites for %s: %w", username, err)
		}
		if favorites == nil {
			favorites = []models.FavoriteEntry{}
		}

		users = append(users, models.UserRecord{Username: username, Password: password, Favorites: favorites})
	}

	if err := rows.Err(); err != nil {
		return models.Collection{}, fmt.Errorf("row iteration error: %w", err)
	}

	return models.Collection{Version: version, Users: users}, nil
}
