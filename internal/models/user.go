package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FavoriteEntry is a single favorited restaurant. The id identifies the
// restaurant; every other field is opaque and round-trips verbatim.
type FavoriteEntry struct {
	id  string
	raw json.RawMessage
}

// NewFavorite builds a FavoriteEntry from an id and optional descriptive
// fields. The fields are serialized once and carried verbatim from then on.
func NewFavorite(id string, fields map[string]any) (FavoriteEntry, error) {
	obj := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		obj[k] = v
	}
	obj["id"] = id

	raw, err := json.Marshal(obj)
	if err != nil {
		return FavoriteEntry{}, fmt.Errorf("failed to encode favorite: %w", err)
	}

	return FavoriteEntry{id: id, raw: raw}, nil
}

// ID returns the restaurant identifier, normalized to its textual form.
//
// The SPA stores ids as either JSON strings or numbers; "3" and 3 compare
// equal here.
func (e FavoriteEntry) ID() string { return e.id }

// UnmarshalJSON captures the entire object verbatim and extracts the id.
func (e *FavoriteEntry) UnmarshalJSON(data []byte) error {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("favorite entry is not an object: %w", err)
	}
	if len(probe.ID) == 0 || bytes.Equal(probe.ID, []byte("null")) {
		return fmt.Errorf("favorite entry is missing an id")
	}

	id, err := normalizeID(probe.ID)
	if err != nil {
		return err
	}

	e.id = id
	e.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON emits the entry exactly as it was received.
func (e FavoriteEntry) MarshalJSON() ([]byte, error) {
	if e.raw == nil {
		return json.Marshal(map[string]string{"id": e.id})
	}
	return e.raw, nil
}

// normalizeID turns a raw JSON id token (string or number) into its textual form.
func normalizeID(raw json.RawMessage) (string, error) {
	token := bytes.TrimSpace(raw)
	if len(token) > 0 && token[0] == '"' {
		var s string
		if err := json.Unmarshal(token, &s); err != nil {
			return "", fmt.Errorf("invalid favorite id: %w", err)
		}
		return s, nil
	}

	if _, err := strconv.ParseFloat(string(token), 64); err != nil {
		return "", fmt.Errorf("invalid favorite id %q: must be a string or number", token)
	}
	return string(token), nil
}

// UserRecord is one account: username, password and the ordered favorites
// list. Passwords are compared by plain equality — the SPA ships them in
// cleartext and this service reproduces that contract rather than hardening it.
type UserRecord struct {
	Username  string          `json:"username"`
	Password  string          `json:"password"`
	Favorites []FavoriteEntry `json:"favorites"`
}

// NewUserRecord creates a record with an empty (non-nil) favorites list.
func NewUserRecord(username, password string) UserRecord {
	return UserRecord{Username: username, Password: password, Favorites: []FavoriteEntry{}}
}

// Clone returns a deep copy. SessionIdentity holds clones, never live
// references into a collection.
func (u UserRecord) Clone() UserRecord {
	favorites := make([]FavoriteEntry, len(u.Favorites))
	for i, f := range u.Favorites {
		favorites[i] = FavoriteEntry{id: f.id, raw: append(json.RawMessage(nil), f.raw...)}
	}
	return UserRecord{Username: u.Username, Password: u.Password, Favorites: favorites}
}

// HasFavorite reports whether an entry with the given id is present.
func (u UserRecord) HasFavorite(id string) bool {
	for _, f := range u.Favorites {
		if f.id == id {
			return true
		}
	}
	return false
}

// Toggle removes the entry matching entry.ID() if present, else appends
// entry. Returns true when the entry was added.
func (u *UserRecord) Toggle(entry FavoriteEntry) bool {
	for i, f := range u.Favorites {
		if f.id == entry.id {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			return false
		}
	}
	u.Favorites = append(u.Favorites, entry)
	return true
}

// Validate checks that the record is storable: non-empty username and
// favorites unique by id.
func (u UserRecord) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username must not be empty")
	}

	seen := make(map[string]struct{}, len(u.Favorites))
	for _, f := range u.Favorites {
		if _, ok := seen[f.id]; ok {
			return fmt.Errorf("duplicate favorite id %q for user %s", f.id, u.Username)
		}
		seen[f.id] = struct{}{}
	}
	return nil
}

// Collection is the full set of user records plus the optimistic-concurrency
// version counter. Usernames are unique; insertion order is preserved but not
// guaranteed to callers.
type Collection struct {
	Version int64
	Users   []UserRecord
}

// Find returns a deep copy of the record with the given username.
func (c Collection) Find(username string) (UserRecord, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u.Clone(), true
		}
	}
	return UserRecord{}, false
}

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	users := make([]UserRecord, len(c.Users))
	for i, u := range c.Users {
		users[i] = u.Clone()
	}
	return Collection{Version: c.Version, Users: users}
}

// ValidateUsers checks every record and the username-uniqueness invariant.
func ValidateUsers(users []UserRecord) error {
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		if err := u.Validate(); err != nil {
			return err
		}
		if _, ok := seen[u.Username]; ok {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
		seen[u.Username] = struct{}{}
	}
	return nil
}
