// HTTP client for the collection service endpoints
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/server"
	"github.com/lunchroulette/lunchd/internal/shared"
)

// CollectionClient implements [CollectionAPI] over HTTP.
type CollectionClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ CollectionAPI = (*CollectionClient)(nil)

// NewCollectionClient creates a client for the lunchd server at baseURL.
func NewCollectionClient(baseURL string, client *http.Client) *CollectionClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CollectionClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// FetchAll performs GET /api/users and pairs the body with the version header.
func (c *CollectionClient) FetchAll(ctx context.Context) (models.Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users", nil)
	if err != nil {
		return models.Collection{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Collection{}, fmt.Errorf("%w: %v", shared.ErrIOFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Collection{}, fmt.Errorf("%w: failed to read response: %v", shared.ErrIOFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.Collection{}, statusError(resp.StatusCode, body)
	}

	version, err := parseVersion(resp)
	if err != nil {
		return models.Collection{}, err
	}

	var users []models.UserRecord
	if err := json.Unmarshal(body, &users); err != nil {
		return models.Collection{}, fmt.Errorf("%w: bad response body: %v", shared.ErrIOFailure, err)
	}
	if users == nil {
		users = []models.UserRecord{}
	}

	return models.Collection{Version: version, Users: users}, nil
}

// Replace performs POST /api/users with the expected version in the header.
func (c *CollectionClient) Replace(ctx context.Context, expected int64, users []models.UserRecord) (int64, error) {
	payload, err := json.Marshal(users)
	if err != nil {
		return 0, fmt.Errorf("failed to encode users: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(server.VersionHeader, strconv.FormatInt(expected, 10))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrIOFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response: %v", shared.ErrIOFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, statusError(resp.StatusCode, body)
	}

	return parseVersion(resp)
}

// parseVersion extracts the collection version from a response header.
func parseVersion(resp *http.Response) (int64, error) {
	raw := resp.Header.Get(server.VersionHeader)
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: missing or bad %s header", shared.ErrIOFailure, server.VersionHeader)
	}
	return version, nil
}

// statusError maps non-200 responses onto the error taxonomy, carrying the
// server's message through for display.
func statusError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Error
	}

	switch status {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", shared.ErrConflict, message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", shared.ErrInvalidPayload, message)
	default:
		return fmt.Errorf("%w: server returned %d: %s", shared.ErrIOFailure, status, message)
	}
}
