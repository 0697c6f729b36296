// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"sp2yt/internal/models"
	"sp2yt/internal/services"
)

// MockSource is a test double for [services.SourceCatalog].
type MockSource struct {
	Playlists []models.Playlist
	Meta      *models.Playlist
	Items     []models.PlaylistItem
	Err       error
}

func (m *MockSource) Name() string { return "mock-source" }

func (m *MockSource) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.Playlists, m.Err
}

func (m *MockSource) PlaylistMetadata(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Meta != nil {
		return m.Meta, nil
	}
	return &models.Playlist{ID: playlistID, Name: "Mock Playlist"}, nil
}

func (m *MockSource) PlaylistItemsPage(ctx context.Context, playlistID, cursor string) ([]models.PlaylistItem, string, error) {
	if m.Err != nil {
		return nil, "", m.Err
	}
	return m.Items, "", nil
}

// MockDestination is a test double for [services.DestinationCatalog].
type MockDestination struct {
	Results    []services.SearchResult
	PlaylistID string
	AddResult  *services.AddItemsResult
	Err        error

	SearchQueries []string
	AddedBatches  [][]string
}

func (m *MockDestination) Name() string { return "mock-destination" }

func (m *MockDestination) Search(ctx context.Context, query string, limit int) ([]services.SearchResult, error) {
	m.SearchQueries = append(m.SearchQueries, query)
	return m.Results, m.Err
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.PlaylistID != "" {
		return m.PlaylistID, nil
	}
	return "PLmock000000", nil
}

func (m *MockDestination) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) (*services.AddItemsResult, error) {
	m.AddedBatches = append(m.AddedBatches, videoIDs)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.AddResult != nil {
		return m.AddResult, nil
	}
	return &services.AddItemsResult{Succeeded: true, Status: "STATUS_SUCCEEDED"}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
