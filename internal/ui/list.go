package ui

import (
	"encoding/json"

	"github.com/charmbracelet/bubbles/list"
	"github.com/lunchroulette/lunchd/internal/models"
)

var _ list.Item = favoriteItem{}

// favoriteItem wraps [models.FavoriteEntry] to implement [list.Item].
//
// The entry's descriptive fields are opaque to the service, but the TUI can
// still peek at common ones (name, address) for display.
type favoriteItem struct {
	entry models.FavoriteEntry
}

// fields decodes the verbatim entry payload for display purposes only.
func (i favoriteItem) fields() map[string]any {
	raw, err := json.Marshal(i.entry)
	if err != nil {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func (i favoriteItem) FilterValue() string { return i.Title() }

func (i favoriteItem) Title() string {
	if name, ok := i.fields()["name"].(string); ok && name != "" {
		return name
	}
	return i.entry.ID()
}

func (i favoriteItem) Description() string {
	fields := i.fields()
	if address, ok := fields["address"].(string); ok && address != "" {
		return address
	}
	if cuisine, ok := fields["cuisine"].(string); ok && cuisine != "" {
		return cuisine
	}
	return "id " + i.entry.ID()
}
