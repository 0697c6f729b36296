package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"sp2yt/internal/cache"
	"sp2yt/internal/models"
	"sp2yt/internal/services"
	"sp2yt/internal/shared"
)

// stubSource serves a fixed playlist split into pages.
type stubSource struct {
	playlist  models.Playlist
	pages     [][]models.PlaylistItem
	metaCalls int
	metaErr   error
}

func (s *stubSource) Name() string { return "Spotify" }

func (s *stubSource) PlaylistMetadata(_ context.Context, _ string) (*models.Playlist, error) {
	s.metaCalls++
	if s.metaErr != nil {
		return nil, s.metaErr
	}
	pl := s.playlist
	return &pl, nil
}

func (s *stubSource) PlaylistItemsPage(_ context.Context, _ string, cursor string) ([]models.PlaylistItem, string, error) {
	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("bad cursor %q", cursor)
		}
		idx = n
	}

	if idx >= len(s.pages) {
		return nil, "", nil
	}

	next := ""
	if idx+1 < len(s.pages) {
		next = strconv.Itoa(idx + 1)
	}
	return s.pages[idx], next, nil
}

func (s *stubSource) GetPlaylists(_ context.Context) ([]models.Playlist, error) {
	return []models.Playlist{s.playlist}, nil
}

// stubDest records searches, created playlists and add batches.
type stubDest struct {
	searchFn func(query string, limit int) ([]services.SearchResult, error)
	createFn func(title, description, privacy string) (string, error)
	addFn    func(playlistID string, videoIDs []string) (*services.AddItemsResult, error)

	searches []string
	creates  int
	batches  [][]string
}

func (d *stubDest) Name() string { return "YouTube Music" }

func (d *stubDest) Search(_ context.Context, query string, limit int) ([]services.SearchResult, error) {
	d.searches = append(d.searches, query)
	if d.searchFn != nil {
		return d.searchFn(query, limit)
	}
	return nil, nil
}

func (d *stubDest) CreatePlaylist(_ context.Context, title, description, privacy string) (string, error) {
	d.creates++
	if d.createFn != nil {
		return d.createFn(title, description, privacy)
	}
	return "PLdest000001", nil
}

func (d *stubDest) AddPlaylistItems(_ context.Context, playlistID string, videoIDs []string) (*services.AddItemsResult, error) {
	batch := make([]string, len(videoIDs))
	copy(batch, videoIDs)
	d.batches = append(d.batches, batch)
	if d.addFn != nil {
		return d.addFn(playlistID, videoIDs)
	}
	return &services.AddItemsResult{Succeeded: true, Status: "STATUS_SUCCEEDED"}, nil
}

func songResult(videoID, title, artist, duration string) services.SearchResult {
	return services.SearchResult{
		ResultType: "song",
		VideoID:    videoID,
		Title:      title,
		Artists:    []services.SearchArtist{{Name: artist}},
		Duration:   duration,
	}
}

func trackItem(id, title, artist string, durationMS int) models.PlaylistItem {
	return models.PlaylistItem{Track: &models.Track{ID: id, Title: title, Artist: artist, DurationMS: durationMS}}
}

func fastOpts() TransferOpts {
	return TransferOpts{SearchRate: 100000}
}

func newEngine(source services.SourceCatalog, dest services.DestinationCatalog) *TransferEngine {
	return NewTransferEngine(source, dest, nil, nil, shared.NewLogger(io.Discard))
}

func TestRunFullTransfer(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Road Trip"},
		pages: [][]models.PlaylistItem{
			{
				trackItem("t1", "Perfect Match", "Artist A", 200000),
				trackItem("t2", "Drifted", "Artist B", 200000),
				trackItem("t3", "No Duration", "Artist C", 0),
			},
			{
				trackItem("t4", "Ghost", "Artist D", 180000),
				{Track: nil},
				trackItem("t6", "Bad ID", "Artist E", 180000),
				trackItem("t7", "Silent Clock", "Artist F", 180000),
			},
		},
	}

	dest := &stubDest{
		searchFn: func(query string, limit int) ([]services.SearchResult, error) {
			if limit != 5 {
				t.Errorf("search limit = %d, want 5", limit)
			}

			switch {
			case strings.HasPrefix(query, "Perfect Match"):
				// 200s source, 3:21 = 201s, within the 3s default.
				return []services.SearchResult{songResult("vidperfect1", "Perfect Match", "Artist A", "3:21")}, nil
			case strings.HasPrefix(query, "Drifted"):
				// 200s source vs 3:30 = 210s, outside the 3s default.
				return []services.SearchResult{songResult("viddrifted1", "Drifted", "Artist B", "3:30")}, nil
			case strings.HasPrefix(query, "No Duration"):
				return []services.SearchResult{songResult("vidnodur001", "No Duration", "Artist C", "3:00")}, nil
			case strings.HasPrefix(query, "Ghost"):
				// Only a non-song result; nothing qualifies.
				return []services.SearchResult{{ResultType: "video", VideoID: "vidghost001", Title: "Ghost"}}, nil
			case strings.HasPrefix(query, "Bad ID"):
				return []services.SearchResult{songResult("short", "Bad ID", "Artist E", "3:00")}, nil
			case strings.HasPrefix(query, "Silent Clock"):
				// No duration text from the destination.
				return []services.SearchResult{songResult("vidsilent01", "Silent Clock", "Artist F", "")}, nil
			}
			return nil, nil
		},
	}

	engine := newEngine(source, dest)

	report, err := engine.Run(context.Background(), nil, "pl1", fastOpts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalTracks != 7 {
		t.Errorf("TotalTracks = %d, want 7", report.TotalTracks)
	}

	wantAdded := []string{"vidperfect1", "viddrifted1", "vidnodur001", "vidsilent01"}
	if len(report.AddedIDs) != len(wantAdded) {
		t.Fatalf("AddedIDs = %v, want %v", report.AddedIDs, wantAdded)
	}
	for i, id := range wantAdded {
		if report.AddedIDs[i] != id {
			t.Errorf("AddedIDs[%d] = %q, want %q", i, report.AddedIDs[i], id)
		}
	}

	if len(report.Unmatched) != 2 {
		t.Fatalf("Unmatched = %d tracks, want 2", len(report.Unmatched))
	}
	if report.Unmatched[0].Title != "Ghost" || report.Unmatched[1].Title != "Bad ID" {
		t.Errorf("Unmatched = [%s, %s], want [Ghost, Bad ID]", report.Unmatched[0].Title, report.Unmatched[1].Title)
	}

	if len(report.Mismatches) != 1 || report.Mismatches[0].Track.Title != "Drifted" {
		t.Fatalf("Mismatches = %+v, want one entry for Drifted", report.Mismatches)
	}
	if report.Mismatches[0].DiffSec != 10 {
		t.Errorf("Mismatches[0].DiffSec = %v, want 10", report.Mismatches[0].DiffSec)
	}

	if len(report.Skipped) != 2 {
		t.Fatalf("Skipped = %d entries, want 2", len(report.Skipped))
	}
	if report.Skipped[0].Reason != "missing source duration" {
		t.Errorf("Skipped[0].Reason = %q, want %q", report.Skipped[0].Reason, "missing source duration")
	}
	if report.Skipped[1].Reason != "missing destination duration" {
		t.Errorf("Skipped[1].Reason = %q, want %q", report.Skipped[1].Reason, "missing destination duration")
	}

	if len(report.Missing) != 1 || report.Missing[0] != 5 {
		t.Errorf("Missing = %v, want [5]", report.Missing)
	}

	if dest.creates != 1 {
		t.Errorf("creates = %d, want 1", dest.creates)
	}
	if report.DestPlaylistID != "PLdest000001" {
		t.Errorf("DestPlaylistID = %q", report.DestPlaylistID)
	}
	if report.DestName != "Road Trip" {
		t.Errorf("DestName = %q, want source playlist name", report.DestName)
	}

	if len(dest.batches) != 1 || len(dest.batches[0]) != 4 {
		t.Fatalf("batches = %v, want one batch of 4", dest.batches)
	}
	if report.AddedCount != 4 {
		t.Errorf("AddedCount = %d, want 4", report.AddedCount)
	}
	if len(report.FailedBatches) != 0 {
		t.Errorf("FailedBatches = %v, want none", report.FailedBatches)
	}
}

func TestRunBatchSplitting(t *testing.T) {
	const total = 250

	items := make([]models.PlaylistItem, total)
	for i := range items {
		items[i] = trackItem(fmt.Sprintf("t%d", i), fmt.Sprintf("Track %d", i), "Artist", 180000)
	}

	source := &stubSource{
		playlist: models.Playlist{ID: "big", Name: "Big"},
		pages:    [][]models.PlaylistItem{items},
	}

	calls := 0
	dest := &stubDest{
		searchFn: func(query string, limit int) ([]services.SearchResult, error) {
			calls++
			id := fmt.Sprintf("vid%08d", calls)
			return []services.SearchResult{songResult(id, query, "Artist", "3:00")}, nil
		},
	}

	// Second batch is rejected; the rest still run.
	batchNum := 0
	dest.addFn = func(_ string, videoIDs []string) (*services.AddItemsResult, error) {
		batchNum++
		if batchNum == 2 {
			return nil, errors.New("server error")
		}
		return &services.AddItemsResult{Succeeded: true, Status: "STATUS_SUCCEEDED"}, nil
	}

	engine := newEngine(source, dest)

	report, err := engine.Run(context.Background(), nil, "big", fastOpts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantSizes := []int{100, 100, 50}
	if len(dest.batches) != len(wantSizes) {
		t.Fatalf("batches = %d, want %d", len(dest.batches), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(dest.batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(dest.batches[i]), want)
		}
	}

	if len(report.FailedBatches) != 1 || report.FailedBatches[0].Index != 2 {
		t.Fatalf("FailedBatches = %+v, want one entry for batch 2", report.FailedBatches)
	}

	if report.AddedCount != 150 {
		t.Errorf("AddedCount = %d, want 150", report.AddedCount)
	}
	if len(report.AddedIDs) != total {
		t.Errorf("AddedIDs = %d, want %d", len(report.AddedIDs), total)
	}
}

func TestRunNothingToTransfer(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Obscure"},
		pages: [][]models.PlaylistItem{
			{trackItem("t1", "Unfindable", "Nobody", 180000)},
		},
	}
	dest := &stubDest{}

	engine := newEngine(source, dest)

	report, err := engine.Run(context.Background(), nil, "pl1", fastOpts())
	if !errors.Is(err, shared.ErrNothingToTransfer) {
		t.Fatalf("Run() error = %v, want ErrNothingToTransfer", err)
	}

	if report == nil {
		t.Fatal("Run() returned nil report")
	}
	if len(report.Unmatched) != 1 {
		t.Errorf("Unmatched = %d, want 1", len(report.Unmatched))
	}
	if dest.creates != 0 {
		t.Errorf("creates = %d, want no playlist created", dest.creates)
	}
}

func TestRunLimit(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Long"},
		pages: [][]models.PlaylistItem{
			{
				trackItem("t1", "One", "A", 180000),
				trackItem("t2", "Two", "B", 180000),
				trackItem("t3", "Three", "C", 180000),
			},
		},
	}

	dest := &stubDest{
		searchFn: func(query string, limit int) ([]services.SearchResult, error) {
			return []services.SearchResult{songResult("vid00000001", query, "X", "3:00")}, nil
		},
	}

	engine := newEngine(source, dest)

	opts := fastOpts()
	opts.Limit = 2

	report, err := engine.Run(context.Background(), nil, "pl1", opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalTracks != 2 {
		t.Errorf("TotalTracks = %d, want 2", report.TotalTracks)
	}
	if len(dest.searches) != 2 {
		t.Errorf("searches = %d, want 2", len(dest.searches))
	}
}

func TestRunUnknownFieldDefaults(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Sparse"},
		pages: [][]models.PlaylistItem{
			{{Track: &models.Track{ID: "t1", DurationMS: 180000}}},
		},
	}
	dest := &stubDest{}

	engine := newEngine(source, dest)

	_, err := engine.Run(context.Background(), nil, "pl1", fastOpts())
	if !errors.Is(err, shared.ErrNothingToTransfer) {
		t.Fatalf("Run() error = %v, want ErrNothingToTransfer", err)
	}

	if len(dest.searches) != 1 {
		t.Fatalf("searches = %d, want 1", len(dest.searches))
	}
	if dest.searches[0] != "Unknown Title Unknown Artist" {
		t.Errorf("query = %q, want %q", dest.searches[0], "Unknown Title Unknown Artist")
	}
}

func TestRunDestinationOptions(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Road Trip"},
		pages: [][]models.PlaylistItem{
			{trackItem("t1", "One", "A", 180000)},
		},
	}

	var gotTitle, gotDescription, gotPrivacy string
	dest := &stubDest{
		searchFn: func(query string, limit int) ([]services.SearchResult, error) {
			return []services.SearchResult{songResult("vid00000001", query, "A", "3:00")}, nil
		},
		createFn: func(title, description, privacy string) (string, error) {
			gotTitle, gotDescription, gotPrivacy = title, description, privacy
			return "PLcustom0001", nil
		},
	}

	engine := newEngine(source, dest)

	opts := fastOpts()
	opts.PlaylistName = "Custom Name"
	opts.Description = "My description"
	opts.Privacy = services.PrivacyUnlisted

	if _, err := engine.Run(context.Background(), nil, "pl1", opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if gotTitle != "Custom Name" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotDescription != "My description" {
		t.Errorf("description = %q", gotDescription)
	}
	if gotPrivacy != services.PrivacyUnlisted {
		t.Errorf("privacy = %q", gotPrivacy)
	}
}

func TestRunPrivacyNormalization(t *testing.T) {
	newFixtures := func() (*stubSource, *stubDest, *string) {
		source := &stubSource{
			playlist: models.Playlist{ID: "pl1", Name: "Road Trip"},
			pages: [][]models.PlaylistItem{
				{trackItem("t1", "One", "A", 180000)},
			},
		}
		var gotPrivacy string
		dest := &stubDest{
			searchFn: func(query string, limit int) ([]services.SearchResult, error) {
				return []services.SearchResult{songResult("vid00000001", query, "A", "3:00")}, nil
			},
			createFn: func(title, description, privacy string) (string, error) {
				gotPrivacy = privacy
				return "PLcustom0001", nil
			},
		}
		return source, dest, &gotPrivacy
	}

	t.Run("lowercase input is uppercased", func(t *testing.T) {
		source, dest, gotPrivacy := newFixtures()
		opts := fastOpts()
		opts.Privacy = "private"

		if _, err := newEngine(source, dest).Run(context.Background(), nil, "pl1", opts); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if *gotPrivacy != services.PrivacyPrivate {
			t.Errorf("privacy = %q, want %q", *gotPrivacy, services.PrivacyPrivate)
		}
	})

	t.Run("mixed case unlisted", func(t *testing.T) {
		source, dest, gotPrivacy := newFixtures()
		opts := fastOpts()
		opts.Privacy = "Unlisted"

		if _, err := newEngine(source, dest).Run(context.Background(), nil, "pl1", opts); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if *gotPrivacy != services.PrivacyUnlisted {
			t.Errorf("privacy = %q, want %q", *gotPrivacy, services.PrivacyUnlisted)
		}
	})

	t.Run("unknown value is rejected before creation", func(t *testing.T) {
		source, dest, _ := newFixtures()
		opts := fastOpts()
		opts.Privacy = "friends-only"

		_, err := newEngine(source, dest).Run(context.Background(), nil, "pl1", opts)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("Run() error = %v, want ErrInvalidArgument", err)
		}
		if dest.creates != 0 {
			t.Errorf("creates = %d, want 0", dest.creates)
		}
	})
}

func TestRunCache(t *testing.T) {
	newSource := func() *stubSource {
		return &stubSource{
			playlist: models.Playlist{ID: "pl1", Name: "Cached"},
			pages: [][]models.PlaylistItem{
				{trackItem("t1", "One", "A", 180000)},
			},
		}
	}
	newDest := func() *stubDest {
		return &stubDest{
			searchFn: func(query string, limit int) ([]services.SearchResult, error) {
				return []services.SearchResult{songResult("vid00000001", query, "A", "3:00")}, nil
			},
		}
	}

	t.Run("second run served from cache", func(t *testing.T) {
		pc := cache.New(t.TempDir(), time.Hour, shared.NewLogger(io.Discard))
		source := newSource()
		engine := NewTransferEngine(source, newDest(), pc, nil, shared.NewLogger(io.Discard))

		report, err := engine.Run(context.Background(), nil, "pl1", fastOpts())
		if err != nil {
			t.Fatalf("first Run() error = %v", err)
		}
		if report.FromCache {
			t.Error("first run claims cache hit")
		}

		report, err = engine.Run(context.Background(), nil, "pl1", fastOpts())
		if err != nil {
			t.Fatalf("second Run() error = %v", err)
		}
		if !report.FromCache {
			t.Error("second run not served from cache")
		}
		if source.metaCalls != 1 {
			t.Errorf("metaCalls = %d, want 1", source.metaCalls)
		}
	})

	t.Run("no-cache skips read but writes back", func(t *testing.T) {
		pc := cache.New(t.TempDir(), time.Hour, shared.NewLogger(io.Discard))
		source := newSource()
		engine := NewTransferEngine(source, newDest(), pc, nil, shared.NewLogger(io.Discard))

		opts := fastOpts()
		opts.NoCache = true

		if _, err := engine.Run(context.Background(), nil, "pl1", opts); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if _, err := pc.Load("pl1"); err != nil {
			t.Errorf("cache not written back: %v", err)
		}

		if _, err := engine.Run(context.Background(), nil, "pl1", opts); err != nil {
			t.Fatalf("second Run() error = %v", err)
		}
		if source.metaCalls != 2 {
			t.Errorf("metaCalls = %d, want 2 (cache read skipped)", source.metaCalls)
		}
	})
}

func TestRunProgressUpdates(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Progress"},
		pages: [][]models.PlaylistItem{
			{trackItem("t1", "One", "A", 180000)},
		},
	}
	dest := &stubDest{
		searchFn: func(query string, limit int) ([]services.SearchResult, error) {
			return []services.SearchResult{songResult("vid00000001", query, "A", "3:00")}, nil
		},
	}

	engine := newEngine(source, dest)

	progress := make(chan ProgressUpdate, 64)
	if _, err := engine.Run(context.Background(), progress, "pl1", fastOpts()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(progress)

	phases := map[Phase]bool{}
	var searchMessages []string
	for update := range progress {
		phases[update.Phase] = true
		if update.Phase == SearchTracks && update.Step > 0 {
			searchMessages = append(searchMessages, update.Message)
		}
	}

	for _, want := range []Phase{FetchSource, SearchTracks, CreatePlaylist, AddTracks, Done} {
		if !phases[want] {
			t.Errorf("no progress update for phase %s", want)
		}
	}

	// Per-track messages carry the track label, title before artist.
	if len(searchMessages) == 0 {
		t.Fatal("no per-track search updates")
	}
	if !strings.Contains(searchMessages[0], "One - A") {
		t.Errorf("search message = %q, want it to contain %q", searchMessages[0], "One - A")
	}
}

func TestRunSearchErrorDemotesToUnmatched(t *testing.T) {
	source := &stubSource{
		playlist: models.Playlist{ID: "pl1", Name: "Flaky"},
		pages: [][]models.PlaylistItem{
			{
				trackItem("t1", "Broken", "A", 180000),
				trackItem("t2", "Fine", "B", 180000),
			},
		},
	}
	dest := &stubDest{
		searchFn: func(query string, limit int) ([]services.SearchResult, error) {
			if strings.HasPrefix(query, "Broken") {
				return nil, errors.New("upstream 503")
			}
			return []services.SearchResult{songResult("vid00000001", query, "B", "3:00")}, nil
		},
	}

	engine := newEngine(source, dest)

	report, err := engine.Run(context.Background(), nil, "pl1", fastOpts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Unmatched) != 1 || report.Unmatched[0].Title != "Broken" {
		t.Errorf("Unmatched = %+v, want the failing track only", report.Unmatched)
	}
	if len(report.AddedIDs) != 1 {
		t.Errorf("AddedIDs = %v, want the surviving track", report.AddedIDs)
	}
}
