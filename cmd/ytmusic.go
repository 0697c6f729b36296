package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/services"
	"sp2yt/internal/shared"
)

// YTMusicSearch searches YouTube Music and prints the ranked results.
func (r *Runner) YTMusicSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if r.dest == nil {
		return fmt.Errorf("%w: youtube music proxy is not configured", shared.ErrServiceUnavailable)
	}

	results, err := r.dest.Search(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results) == 0 {
		r.writePlain("No results for %q\n", query)
		return nil
	}

	r.writePlain("Results for %q:\n\n", query)
	for i, res := range results {
		artist := ""
		if len(res.Artists) > 0 {
			artist = res.Artists[0].Name
		}
		r.writePlain("  %d. [%s] %s - %s (%s) %s\n",
			i+1, res.ResultType, artist, res.Title, res.Duration, res.VideoID)
	}
	return nil
}

// YTMusicCreate creates a playlist on YouTube Music.
func (r *Runner) YTMusicCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	if r.dest == nil {
		return fmt.Errorf("%w: youtube music proxy is not configured", shared.ErrServiceUnavailable)
	}

	privacy, err := services.NormalizePrivacy(cmd.String("privacy"))
	if err != nil {
		return err
	}

	playlistID, err := r.dest.CreatePlaylist(ctx, name, cmd.String("description"), privacy)
	if err != nil {
		return err
	}

	r.logger.Info("playlist created", "id", playlistID, "name", name)
	r.writePlain("Created playlist %q (ID: %s)\n", name, playlistID)
	return nil
}

// YTMusicAdd adds one track to an existing playlist, either by direct video
// ID or by searching for the best match of a query.
func (r *Runner) YTMusicAdd(ctx context.Context, cmd *cli.Command) error {
	if r.dest == nil {
		return fmt.Errorf("%w: youtube music proxy is not configured", shared.ErrServiceUnavailable)
	}

	playlistID := cmd.String("playlist-id")
	videoID := cmd.String("video-id")

	if videoID == "" {
		query := cmd.String("track")
		if query == "" {
			return fmt.Errorf("%w: provide --video-id or --track", shared.ErrMissingArgument)
		}

		results, err := r.dest.Search(ctx, query, 5)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.ResultType == "song" {
				videoID = res.VideoID
				r.writePlain("Matched %q → %s (%s)\n", query, res.Title, res.VideoID)
				break
			}
		}
		if videoID == "" {
			return fmt.Errorf("%w: no song result for %q", shared.ErrTrackNotFound, query)
		}
	}

	result, err := r.dest.AddPlaylistItems(ctx, playlistID, []string{videoID})
	if err != nil {
		return err
	}
	if !result.Succeeded {
		return fmt.Errorf("%w: add returned status %q", shared.ErrAPIRequest, result.Status)
	}

	r.writePlain("Added %s to playlist %s\n", videoID, playlistID)
	return nil
}
