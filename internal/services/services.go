package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"sp2yt/internal/models"
	"sp2yt/internal/shared"
)

// Playlist privacy statuses accepted by the destination API.
const (
	PrivacyPublic   = "PUBLIC"
	PrivacyPrivate  = "PRIVATE"
	PrivacyUnlisted = "UNLISTED"
)

// NormalizePrivacy uppercases a privacy value for the destination API, so
// "private" and "PRIVATE" are equivalent on the command line. Empty input
// defaults to PRIVATE; anything else must be one of the accepted statuses.
func NormalizePrivacy(raw string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return PrivacyPrivate, nil
	case PrivacyPublic:
		return PrivacyPublic, nil
	case PrivacyPrivate:
		return PrivacyPrivate, nil
	case PrivacyUnlisted:
		return PrivacyUnlisted, nil
	default:
		return "", fmt.Errorf("%w: privacy must be PUBLIC, PRIVATE, or UNLISTED, got %q", shared.ErrInvalidArgument, raw)
	}
}

// SourceCatalog is the read side of a transfer: the service a playlist is
// fetched from.
type SourceCatalog interface {
	// Name returns the service name for display and cache keys.
	Name() string

	// PlaylistMetadata retrieves name and description for a playlist.
	PlaylistMetadata(ctx context.Context, playlistID string) (*models.Playlist, error)

	// PlaylistItemsPage retrieves one page of playlist items. An empty
	// cursor requests the first page; the returned cursor is empty when no
	// pages remain.
	PlaylistItemsPage(ctx context.Context, playlistID, cursor string) ([]models.PlaylistItem, string, error)

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// SearchArtist is one artist entry in a destination search result.
type SearchArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// SearchResult is one ranked destination search result, decoded at the API
// boundary so result kinds are checked before any field access.
type SearchResult struct {
	ResultType string         `json:"resultType"`
	VideoID    string         `json:"videoId"`
	Title      string         `json:"title"`
	Artists    []SearchArtist `json:"artists"`
	Album      *struct {
		Name string `json:"name"`
	} `json:"album"`
	Duration string `json:"duration"`
}

// SearchCapability exposes ranked catalog search.
type SearchCapability interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// AddItemsResult reports the outcome of one batch submission.
type AddItemsResult struct {
	Succeeded bool   // true when the API reported STATUS_SUCCEEDED
	Status    string // raw status string from the response
	Raw       []byte // raw response body for diagnostics
}

// DestinationCatalog is the write side of a transfer: the service the new
// playlist is created on.
type DestinationCatalog interface {
	SearchCapability

	// Name returns the service name for display.
	Name() string

	// CreatePlaylist creates an empty playlist and returns its ID.
	CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error)

	// AddPlaylistItems appends one batch of video IDs to a playlist.
	AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) (*AddItemsResult, error)
}

// OAuthService is implemented by catalogs that authenticate through an OAuth2
// authorization-code flow with a local callback server.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
