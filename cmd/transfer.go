package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/tasks"
)

// NormalizePlaylistID extracts the bare playlist ID from a share URL or URI.
//
// Accepts "https://open.spotify.com/playlist/<id>?si=...", the
// "spotify:playlist:<id>" URI form, and bare IDs unchanged.
func NormalizePlaylistID(raw string) string {
	raw = strings.TrimSpace(raw)

	if idx := strings.Index(raw, "open.spotify.com/playlist/"); idx != -1 {
		raw = raw[idx+len("open.spotify.com/playlist/"):]
		if q := strings.IndexAny(raw, "?#"); q != -1 {
			raw = raw[:q]
		}
		return raw
	}

	if strings.HasPrefix(raw, "spotify:playlist:") {
		return strings.TrimPrefix(raw, "spotify:playlist:")
	}

	return raw
}

func (r *Runner) transferOpts(cmd *cli.Command) tasks.TransferOpts {
	variance := cmd.String("variance")
	if variance == "" {
		variance = r.config.Transfer.Variance
	}

	return tasks.TransferOpts{
		PlaylistName: cmd.String("playlist-name"),
		Description:  cmd.String("description"),
		Privacy:      cmd.String("privacy"),
		Limit:        int(cmd.Int("limit")),
		NoCache:      cmd.Bool("no-cache"),
		Variance:     variance,
		SearchRate:   r.config.Transfer.SearchRate,
	}
}

// TransferRun runs a full Spotify → YouTube Music transfer.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	playlistID := NormalizePlaylistID(cmd.String("playlist"))
	opts := r.transferOpts(cmd)

	r.logger.Info("starting transfer", "playlist", playlistID)
	r.writePlain("Starting playlist transfer...\n")
	r.writePlain("Source: %s\n\n", playlistID)

	if !cmd.Bool("yes") && !r.confirm("Do you want to continue with the transfer?") {
		r.writePlain("Transfer cancelled.\n")
		return nil
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource:
				r.writePlain("→ %s\n", update.Message)
			case tasks.SearchTracks:
				if update.Step == 0 {
					r.writePlain("\nSearching tracks on YouTube Music...\n")
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.CreatePlaylist, tasks.AddTracks:
				r.writePlain("\n→ %s\n", update.Message)
			}
		}
	}()

	report, err := r.engine.Run(ctx, progressCh, playlistID, opts)
	close(progressCh)
	<-drained

	if err != nil {
		if report != nil && len(report.Unmatched) > 0 {
			r.writePlain("\nNo tracks could be matched. Unmatched:\n")
			for _, track := range report.Unmatched {
				r.writePlain("  - %s\n", track.Label())
			}
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.renderReport(report)
	return nil
}

func (r *Runner) renderReport(report *tasks.TransferReport) {
	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Transfer Complete\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Source: %s (%d tracks)\n", report.SourcePlaylist.Playlist.Name, report.TotalTracks)
	if report.FromCache {
		r.writePlain("(source served from cache)\n")
	}
	r.writePlain("Destination: %s (ID: %s)\n", report.DestName, report.DestPlaylistID)
	r.writePlain("Matched: %d/%d (%.1f%%)\n", report.MatchedCount(), report.TotalTracks, report.MatchPercentage)
	r.writePlain("Added: %d\n", report.AddedCount)

	if len(report.Unmatched) > 0 {
		r.writePlain("\nNo match for %d tracks:\n", len(report.Unmatched))
		for _, track := range report.Unmatched {
			r.writePlain("  - %s\n", track.Label())
		}
	}

	if len(report.Mismatches) > 0 {
		r.writePlain("\nDuration mismatches (still transferred):\n")
		for _, mm := range report.Mismatches {
			r.writePlain("  - %s: off by %.1fs (matched '%s')\n", mm.Track.Label(), mm.DiffSec, mm.Candidate.Title)
		}
	}

	if len(report.Skipped) > 0 {
		r.writePlain("\nDuration check skipped for %d tracks:\n", len(report.Skipped))
		for _, s := range report.Skipped {
			r.writePlain("  - %s (%s)\n", s.Track.Label(), s.Reason)
		}
	}

	if len(report.Missing) > 0 {
		r.writePlain("\n%d playlist items had no track data and were skipped.\n", len(report.Missing))
	}

	if len(report.FailedBatches) > 0 {
		r.writePlain("\n%d batches failed to add:\n", len(report.FailedBatches))
		for _, batch := range report.FailedBatches {
			r.writePlain("  - batch %d (%d tracks): %s\n", batch.Index, len(batch.VideoIDs), batch.Error)
		}
	}
}
