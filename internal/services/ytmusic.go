// YouTube Music implementation of [DestinationCatalog]
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python
// library for YouTube Music operations.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"sp2yt/internal/shared"
)

const defaultYTBaseURL = "http://localhost:8080"

// ytAddStatusSucceeded is the proxy's status value for a fully applied batch.
const ytAddStatusSucceeded = "STATUS_SUCCEEDED"

// YTMusicService implements [DestinationCatalog] for YouTube Music via proxy.
type YTMusicService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYTMusicService creates a new YouTube Music service instance.
func NewYTMusicService(baseURL string) *YTMusicService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YTMusicService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (y *YTMusicService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YTMusicService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: auth_file", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

// doRequest performs a proxy request, marshalling body (when non-nil) as JSON
// and decoding the response into result.
func (y *YTMusicService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("youtube music API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("youtube music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search requests up to limit ranked results for the query.
//
// Calls GET /api/search on the proxy without a type filter so every result
// carries its resultType tag; filtering to songs happens in the matcher.
func (y *YTMusicService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("/api/search?q=%s&limit=%d", url.QueryEscape(query), limit)

	var results []SearchResult
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// CreatePlaylist creates a new playlist and returns its ID.
//
// Calls POST /api/playlists on the proxy.
func (y *YTMusicService) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if privacy == "" {
		privacy = PrivacyPrivate
	}

	createReq := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{
		Title:         title,
		Description:   description,
		PrivacyStatus: privacy,
	}

	var createResp struct {
		PlaylistID string `json:"playlist_id"`
	}

	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", createReq, &createResp); err != nil {
		return "", err
	}
	if createResp.PlaylistID == "" {
		return "", fmt.Errorf("%w: create playlist returned no id", shared.ErrAPIRequest)
	}

	return createResp.PlaylistID, nil
}

// AddPlaylistItems appends one batch of video IDs to a playlist.
//
// Calls POST /api/playlists/{id}/items on the proxy. A non-2xx response is an
// error; a 2xx response without STATUS_SUCCEEDED is reported through the
// result so callers can log a partial application.
func (y *YTMusicService) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) (*AddItemsResult, error) {
	addReq := struct {
		VideoIDs []string `json:"video_ids"`
	}{VideoIDs: videoIDs}

	var raw json.RawMessage
	endpoint := fmt.Sprintf("/api/playlists/%s/items", playlistID)
	if err := y.doRequest(ctx, http.MethodPost, endpoint, addReq, &raw); err != nil {
		return nil, err
	}

	result := &AddItemsResult{Raw: raw}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &status); err == nil {
		result.Status = status.Status
		result.Succeeded = status.Status == ytAddStatusSucceeded
	}

	return result, nil
}

// Health checks the proxy's health endpoint, returning the authenticated flag.
func (y *YTMusicService) Health(ctx context.Context) (bool, error) {
	var health struct {
		Status        string `json:"status"`
		Authenticated bool   `json:"authenticated"`
	}

	if err := y.doRequest(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	return health.Authenticated, nil
}
