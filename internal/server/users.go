package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/shared"
)

// VersionHeader carries the collection version: on responses the version of
// the returned/stored collection, on POST requests the version the client
// read before mutating. A POST without it is an unconditional replace, kept
// for compatibility with the original SPA client.
const VersionHeader = "X-Collection-Version"

// maxPayloadBytes bounds the POST body. The whole user collection for a
// lunch app fits comfortably under this.
const maxPayloadBytes = 4 << 20

// UsersHandler serves the collection endpoints. Implements [Handler].
type UsersHandler struct {
	store  models.CollectionStore
	logger *log.Logger

	// writeMu serializes bulk replacements so two read-modify-write cycles
	// cannot interleave at the storage layer. The store's version check
	// handles staleness; this handles interleaving.
	writeMu sync.Mutex
}

var _ Handler = (*UsersHandler)(nil)

// NewUsersHandler creates a UsersHandler over the given store.
func NewUsersHandler(store models.CollectionStore, logger *log.Logger) *UsersHandler {
	return &UsersHandler{store: store, logger: logger}
}

// Routes returns the method-qualified patterns this handler serves.
func (h *UsersHandler) Routes() []string {
	return []string{"GET /api/users", "POST /api/users"}
}

// ServeHTTP dispatches to the read or replace path.
func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		h.read(w, req)
	case http.MethodPost:
		h.replace(w, req)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// read returns the full collection as a bare JSON array, version in the header.
func (h *UsersHandler) read(w http.ResponseWriter, req *http.Request) {
	collection, err := h.store.ReadAll(req.Context())
	if err != nil {
		h.logger.Error("failed to read collection", "error", err)
		h.writeError(w, http.StatusInternalServerError, shared.ErrIOFailure)
		return
	}

	w.Header().Set(VersionHeader, strconv.FormatInt(collection.Version, 10))
	h.writeJSON(w, http.StatusOK, collection.Users)
}

// replace persists the posted array as the new collection.
func (h *UsersHandler) replace(w http.ResponseWriter, req *http.Request) {
	var users []models.UserRecord

	decoder := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxPayloadBytes))
	if err := decoder.Decode(&users); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err))
		return
	}

	if err := models.ValidateUsers(users); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err))
		return
	}

	var expected *int64
	if raw := req.Header.Get(VersionHeader); raw != "" {
		version, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: bad %s header", shared.ErrInvalidPayload, VersionHeader))
			return
		}
		expected = &version
	}

	h.writeMu.Lock()
	var newVersion int64
	var err error
	if expected != nil {
		newVersion, err = h.store.CompareAndSwapAll(req.Context(), *expected, users)
	} else {
		newVersion, err = h.store.ReplaceAll(req.Context(), users)
	}
	h.writeMu.Unlock()

	switch {
	case err == nil:
		w.Header().Set(VersionHeader, strconv.FormatInt(newVersion, 10))
		h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, shared.ErrConflict):
		// Tell the client where the collection actually is, so it can
		// retry its read-modify-write without another GET.
		if current, readErr := h.store.ReadAll(req.Context()); readErr == nil {
			w.Header().Set(VersionHeader, strconv.FormatInt(current.Version, 10))
		}
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, shared.ErrInvalidPayload):
		h.writeError(w, http.StatusBadRequest, err)
	default:
		h.logger.Error("failed to replace collection", "error", err)
		h.writeError(w, http.StatusInternalServerError, shared.ErrIOFailure)
	}
}

func (h *UsersHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *UsersHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
