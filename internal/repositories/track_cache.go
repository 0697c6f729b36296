package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sp2yt/internal/models"
)

// TrackCacheAdapter implements tasks.TrackCacher on top of TrackRepository.
//
// Deduplication rides on the (service, service_id) UNIQUE constraint:
// re-caching an already known track is a no-op, not an error.
type TrackCacheAdapter struct {
	repo      *TrackRepository
	playlists *PlaylistRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// NewCatalogCache creates an adapter that persists both tracks and playlist
// metadata from one database handle.
func NewCatalogCache(db *sql.DB) *TrackCacheAdapter {
	return &TrackCacheAdapter{
		repo:      NewTrackRepository(db),
		playlists: NewPlaylistRepository(db),
	}
}

// CacheTracks persists a batch of tracks fetched from a service. Tracks
// without a service ID or title are skipped; a duplicate is ignored.
func (a *TrackCacheAdapter) CacheTracks(ctx context.Context, service string, tracks []models.Track) error {
	for _, track := range tracks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if track.ID == "" || track.Title == "" {
			continue
		}

		if err := a.cacheTrack(service, track); err != nil {
			return err
		}
	}
	return nil
}

// CachePlaylistMeta persists playlist metadata alongside its tracks. The
// adapter must have been built with [NewCatalogCache]; without a playlist
// repository the call is a no-op.
func (a *TrackCacheAdapter) CachePlaylistMeta(ctx context.Context, service string, playlist models.Playlist) error {
	if a.playlists == nil || playlist.ID == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := a.playlists.GetByServiceID(service, playlist.ID)
	if err == nil && existing != nil {
		return nil
	}

	persisted := models.NewPersistedPlaylist(0, service, playlist.ID, playlist)

	if err := a.playlists.Create(persisted); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache playlist: %w", err)
	}

	return nil
}

func (a *TrackCacheAdapter) cacheTrack(service string, track models.Track) error {
	existing, err := a.repo.GetByServiceID(service, track.ID)
	if err == nil && existing != nil {
		return nil
	}

	persisted := models.NewPersistedTrack(0, service, track.ID, track)

	if err := a.repo.Create(persisted); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}

	return nil
}
