package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/models"
	"sp2yt/internal/shared"
)

// CachePlaylist fetches a Spotify playlist and warms both local caches: the
// JSON playlist cache and, when the database is configured, the track store.
func (r *Runner) CachePlaylist(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: spotify credentials are not configured", shared.ErrMissingCredentials)
	}

	playlistID := NormalizePlaylistID(cmd.String("id"))
	export, err := r.fetchPlaylistExport(ctx, playlistID)
	if err != nil {
		return err
	}

	if err := r.cache.Store(playlistID, export); err != nil {
		return err
	}
	r.writePlain("Cached playlist %q (%d tracks) at %s\n",
		export.Playlist.Name, len(export.Items), r.cache.Key(playlistID))

	if r.tracks != nil {
		if err := r.tracks.CacheTracks(ctx, r.source.Name(), export.Tracks()); err != nil {
			return fmt.Errorf("failed to cache tracks: %w", err)
		}
		if pc, ok := r.tracks.(interface {
			CachePlaylistMeta(context.Context, string, models.Playlist) error
		}); ok {
			if err := pc.CachePlaylistMeta(ctx, r.source.Name(), export.Playlist); err != nil {
				return fmt.Errorf("failed to cache playlist metadata: %w", err)
			}
		}
		r.writePlain("Track store updated.\n")
	}

	return nil
}
