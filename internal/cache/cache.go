// Package cache implements the content-addressed on-disk store for fetched
// source playlists.
//
// Entries are JSON files named by the md5 hex digest of the playlist ID,
// holding the playlist metadata, the ordered track items, and an ISO-8601
// fetch timestamp. The digest is an addressing scheme, not a security
// boundary.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"sp2yt/internal/models"
	"sp2yt/internal/shared"
)

// DefaultExpiry is how long a cached playlist stays valid.
const DefaultExpiry = 7 * 24 * time.Hour

// Entry is the on-disk cache document.
type Entry struct {
	Playlist   models.Playlist       `json:"playlist"`
	Tracks     []models.PlaylistItem `json:"tracks"`
	CachedAt   time.Time             `json:"cached_at"`
	PlaylistID string                `json:"playlist_id"`
}

// PlaylistCache is a directory-backed store of fetched playlists keyed by
// playlist ID. Single-writer by design; concurrent invocations against the
// same playlist may race on read-then-write.
type PlaylistCache struct {
	dir    string
	expiry time.Duration
	logger *log.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

// New creates a PlaylistCache rooted at dir. A non-positive expiry selects
// [DefaultExpiry].
func New(dir string, expiry time.Duration, logger *log.Logger) *PlaylistCache {
	if dir == "" {
		dir = ".spotify_cache"
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &PlaylistCache{
		dir:    dir,
		expiry: expiry,
		logger: logger,
		now:    time.Now,
	}
}

// Key returns the cache file name for a playlist ID.
func (c *PlaylistCache) Key(playlistID string) string {
	sum := md5.Sum([]byte(playlistID))
	return hex.EncodeToString(sum[:]) + ".json"
}

func (c *PlaylistCache) path(playlistID string) string {
	return filepath.Join(c.dir, c.Key(playlistID))
}

// Load returns the cached export for a playlist ID. Any failure (missing
// file, malformed JSON, missing fields, or an expired timestamp) degrades to
// [shared.ErrCacheMiss] so the caller falls through to a live fetch.
func (c *PlaylistCache) Load(playlistID string) (*models.PlaylistExport, error) {
	data, err := os.ReadFile(c.path(playlistID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrCacheMiss, playlistID)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("cache file corrupted, fetching fresh data", "playlist", playlistID, "error", err)
		return nil, fmt.Errorf("%w: corrupt entry for %s", shared.ErrCacheMiss, playlistID)
	}

	if entry.PlaylistID != playlistID || entry.CachedAt.IsZero() {
		c.logger.Warn("cache entry invalid, fetching fresh data", "playlist", playlistID)
		return nil, fmt.Errorf("%w: invalid entry for %s", shared.ErrCacheMiss, playlistID)
	}

	if c.now().Sub(entry.CachedAt) >= c.expiry {
		return nil, fmt.Errorf("%w: expired entry for %s", shared.ErrCacheMiss, playlistID)
	}

	return &models.PlaylistExport{Playlist: entry.Playlist, Items: entry.Tracks}, nil
}

// Store writes an export to the cache with the current timestamp, creating
// the cache directory as needed.
func (c *PlaylistCache) Store(playlistID string, export *models.PlaylistExport) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	entry := Entry{
		Playlist:   export.Playlist,
		Tracks:     export.Items,
		CachedAt:   c.now(),
		PlaylistID: playlistID,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(c.path(playlistID), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}
