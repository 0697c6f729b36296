package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"sp2yt/internal/cache"
	"sp2yt/internal/match"
	"sp2yt/internal/models"
	"sp2yt/internal/services"
	"sp2yt/internal/shared"
)

// addBatchSize is the maximum number of video IDs per destination add call.
const addBatchSize = 100

// defaultSearchRate is the search request budget in requests per second.
const defaultSearchRate = 5.0

// videoIDLength is the fixed length of a YouTube video ID. Search results
// with any other length are treated as unmatched.
const videoIDLength = 11

// TrackCacher persists fetched source tracks to the local catalog.
// Implementations must tolerate repeated calls for the same tracks.
type TrackCacher interface {
	CacheTracks(ctx context.Context, service string, tracks []models.Track) error
}

// TransferOpts contains configuration for a single transfer run.
type TransferOpts struct {
	PlaylistName string  // Destination playlist name (default: source playlist name)
	Description  string  // Destination playlist description
	Privacy      string  // PUBLIC, PRIVATE, or UNLISTED (default: PRIVATE)
	Limit        int     // Cap on source tracks processed (0 = no cap)
	NoCache      bool    // Skip cache reads; the fresh fetch is still written back
	Variance     string  // Duration variance expression, e.g. "5s" or "10%"
	SearchRate   float64 // Destination searches per second (default: 5)
}

// TransferEngine orchestrates a full source-to-destination playlist transfer.
// Contains dependencies on both catalogs plus the optional playlist cache and
// track persistence hook.
type TransferEngine struct {
	source services.SourceCatalog
	dest   services.DestinationCatalog
	cache  *cache.PlaylistCache
	tracks TrackCacher
	logger *log.Logger
}

// NewTransferEngine creates a TransferEngine. cache and tracks may be nil to
// disable playlist caching and catalog persistence respectively.
func NewTransferEngine(source services.SourceCatalog, dest services.DestinationCatalog, pc *cache.PlaylistCache, tracks TrackCacher, logger *log.Logger) *TransferEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TransferEngine{
		source: source,
		dest:   dest,
		cache:  pc,
		tracks: tracks,
		logger: logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TransferEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs a full Spotify → YouTube Music playlist transfer.
//
// Tracks are matched in source order. A track lands in the add list when a
// song-typed search result with a valid video ID exists; duration checks
// annotate the report but never remove a track. When no track matches at
// all, Run returns the report alongside [shared.ErrNothingToTransfer] and no
// destination playlist is created.
func (e *TransferEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, opts TransferOpts) (*TransferReport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}
	if e.dest == nil {
		return nil, fmt.Errorf("%w: destination service not initialized", shared.ErrServiceUnavailable)
	}

	spec := match.Resolve(opts.Variance)
	report := newTransferReport(spec)

	e.sendProgress(progress, fetchingSourceUpdate(1, 1))

	export, fromCache, err := e.fetchExport(ctx, playlistID, opts.NoCache)
	if err != nil {
		return nil, err
	}

	if opts.Limit > 0 && len(export.Items) > opts.Limit {
		export = &models.PlaylistExport{Playlist: export.Playlist, Items: export.Items[:opts.Limit]}
	}

	report.SourcePlaylist = export
	report.FromCache = fromCache
	report.TotalTracks = len(export.Items)

	if fromCache {
		e.sendProgress(progress, cachedPlaylistUpdate(export))
	} else {
		e.sendProgress(progress, foundPlaylistUpdate(export))
	}

	if e.tracks != nil {
		if err := e.tracks.CacheTracks(ctx, e.source.Name(), export.Tracks()); err != nil {
			e.logger.Warn("failed to persist source tracks", "error", err)
		}
	}

	if err := e.matchTracks(ctx, progress, export, spec, opts.SearchRate, report); err != nil {
		return report, err
	}

	if len(report.AddedIDs) == 0 {
		report.finalize()
		return report, fmt.Errorf("%w: no tracks matched on %s", shared.ErrNothingToTransfer, e.dest.Name())
	}

	name := opts.PlaylistName
	if name == "" {
		name = export.Playlist.Name
	}
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Transferred from Spotify playlist: %s", export.Playlist.Name)
	}
	privacy, err := services.NormalizePrivacy(opts.Privacy)
	if err != nil {
		report.finalize()
		return report, err
	}

	e.sendProgress(progress, createDestinationUpdate(name))

	destID, err := e.dest.CreatePlaylist(ctx, name, description, privacy)
	if err != nil {
		report.finalize()
		return report, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}

	report.DestPlaylistID = destID
	report.DestName = name
	e.sendProgress(progress, createdPlaylistUpdate(name, destID))

	e.addInBatches(ctx, progress, destID, report)

	report.finalize()
	e.sendProgress(progress, doneUpdate(report.AddedCount, report.TotalTracks))
	return report, nil
}

// fetchExport loads the playlist from cache when allowed, otherwise fetches
// it page by page from the source and writes it back to the cache.
func (e *TransferEngine) fetchExport(ctx context.Context, playlistID string, noCache bool) (*models.PlaylistExport, bool, error) {
	if e.cache != nil && !noCache {
		if export, err := e.cache.Load(playlistID); err == nil {
			e.logger.Debug("using cached playlist", "playlist", playlistID, "tracks", len(export.Items))
			return export, true, nil
		}
	}

	playlist, err := e.source.PlaylistMetadata(ctx, playlistID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to fetch playlist %s: %v", shared.ErrPlaylistNotFound, playlistID, err)
	}

	var items []models.PlaylistItem
	cursor := ""
	for {
		page, next, err := e.source.PlaylistItemsPage(ctx, playlistID, cursor)
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed to fetch playlist items: %v", shared.ErrAPIRequest, err)
		}

		items = append(items, page...)
		if next == "" {
			break
		}
		cursor = next
	}

	export := &models.PlaylistExport{Playlist: *playlist, Items: items}

	if e.cache != nil {
		if err := e.cache.Store(playlistID, export); err != nil {
			e.logger.Warn("failed to cache playlist", "playlist", playlistID, "error", err)
		}
	}

	return export, false, nil
}

// matchTracks searches the destination for every source item, filling the
// report's buckets. Searches are paced by a rate limiter; a search transport
// error for one track demotes it to unmatched rather than aborting the run.
func (e *TransferEngine) matchTracks(ctx context.Context, progress chan<- ProgressUpdate, export *models.PlaylistExport, spec match.VarianceSpec, searchRate float64, report *TransferReport) error {
	if searchRate <= 0 {
		searchRate = defaultSearchRate
	}
	limiter := rate.NewLimiter(rate.Limit(searchRate), 1)

	total := len(export.Items)
	e.sendProgress(progress, searchTracksUpdate(0, total, nil))

	for i, item := range export.Items {
		if item.Track == nil {
			e.logger.Warn("playlist item has no track payload", "position", i+1)
			report.Missing = append(report.Missing, i+1)
			continue
		}

		track := *item.Track
		e.sendProgress(progress, searchTracksUpdate(i+1, total, &track))

		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: search rate limiter interrupted: %v", shared.ErrTimeout, err)
		}

		title := track.Title
		if title == "" {
			title = match.UnknownTitle
		}
		artist := track.Artist
		if artist == "" {
			artist = match.UnknownArtist
		}

		candidate, err := match.FindBestMatch(ctx, e.dest, title, artist)
		if err != nil {
			e.logger.Warn("search failed", "track", track.Label(), "error", err)
			report.Unmatched = append(report.Unmatched, track)
			continue
		}

		if candidate == nil || len(candidate.VideoID) != videoIDLength {
			if candidate != nil {
				e.logger.Warn("discarding match with invalid video ID", "track", track.Label(), "video_id", candidate.VideoID)
			}
			report.Unmatched = append(report.Unmatched, track)
			continue
		}

		result := match.Evaluate(track.DurationMS, candidate.DurationSec, spec)
		switch result.Verdict {
		case match.Skipped:
			report.Skipped = append(report.Skipped, SkippedTrack{Track: track, Reason: result.Reason})
		case match.Mismatch:
			e.logger.Warn("duration outside variance",
				"track", track.Label(),
				"candidate", candidate.Title,
				"diff_seconds", fmt.Sprintf("%.1f", result.DiffSec))
			report.Mismatches = append(report.Mismatches, Mismatch{Track: track, Candidate: *candidate, DiffSec: result.DiffSec})
		}

		report.AddedIDs = append(report.AddedIDs, candidate.VideoID)
	}

	return nil
}

// addInBatches pushes the add list to the destination in fixed-size batches.
// A rejected batch is recorded and the remaining batches still run.
func (e *TransferEngine) addInBatches(ctx context.Context, progress chan<- ProgressUpdate, destID string, report *TransferReport) {
	ids := report.AddedIDs
	totalBatches := (len(ids) + addBatchSize - 1) / addBatchSize

	for i := 0; i < len(ids); i += addBatchSize {
		end := min(i+addBatchSize, len(ids))
		batch := ids[i:end]
		index := i/addBatchSize + 1

		e.sendProgress(progress, addBatchUpdate(index, totalBatches, len(batch)))

		res, err := e.dest.AddPlaylistItems(ctx, destID, batch)
		if err != nil {
			e.logger.Warn("batch add failed", "batch", index, "size", len(batch), "error", err)
			report.FailedBatches = append(report.FailedBatches, FailedBatch{Index: index, VideoIDs: batch, Error: err.Error()})
			continue
		}

		if !res.Succeeded {
			e.logger.Warn("batch add rejected", "batch", index, "size", len(batch), "status", res.Status)
			report.FailedBatches = append(report.FailedBatches, FailedBatch{Index: index, VideoIDs: batch, Error: fmt.Sprintf("status %s", res.Status)})
			continue
		}

		report.AddedCount += len(batch)
	}
}
