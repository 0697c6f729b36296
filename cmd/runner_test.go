package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/models"
	"sp2yt/internal/services"
	"sp2yt/internal/shared"
	tu "sp2yt/internal/testing"
)

func testRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	if opts.Output == nil {
		opts.Output = output
	}
	if opts.Config == nil {
		config := shared.DefaultConfig()
		config.Transfer.CacheDir = t.TempDir()
		opts.Config = config
	}
	return NewRunner(opts), output
}

func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	root := &cli.Command{Name: "sp2yt", Commands: r.register()}
	return root.Run(context.Background(), append([]string{"sp2yt"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			source := &tu.MockSource{}
			dest := &tu.MockDestination{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Source:     source,
				Dest:       dest,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.dest != dest {
				t.Error("expected dest to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
			if runner.cache == nil {
				t.Error("expected playlist cache to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			runner, output := testRunner(t, RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			runner, output := testRunner(t, RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner, _ := testRunner(t, RunnerOpts{})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner, _ := testRunner(t, RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limited := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner, _ := testRunner(t, RunnerOpts{Output: &limited})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			runner, output := testRunner(t, RunnerOpts{})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner, _ := testRunner(t, RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner, _ := testRunner(t, RunnerOpts{})
		commands := runner.register()

		if len(commands) != 8 {
			t.Fatalf("expected 8 top-level commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "spotify", "api", "ytmusic", "transfer", "cache", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestNormalizePlaylistID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare ID", "37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"share URL", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"share URL with query", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", "37i9dQZF1DXcBWIGoYBM5M"},
		{"URI form", "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"surrounding whitespace", "  37i9dQZF1DXcBWIGoYBM5M \n", "37i9dQZF1DXcBWIGoYBM5M"},
		{"URL without scheme", "open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=x", "37i9dQZF1DXcBWIGoYBM5M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePlaylistID(tt.input); got != tt.want {
				t.Errorf("NormalizePlaylistID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestYTMusicCommands(t *testing.T) {
	t.Run("search prints ranked results", func(t *testing.T) {
		dest := &tu.MockDestination{
			Results: []services.SearchResult{
				{ResultType: "song", VideoID: "dQw4w9WgXcQ", Title: "Test Song", Duration: "3:33",
					Artists: []services.SearchArtist{{Name: "Test Artist"}}},
			},
		}
		runner, output := testRunner(t, RunnerOpts{Dest: dest})

		if err := runCommand(t, runner, "ytmusic", "search", "test song"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(dest.SearchQueries) != 1 || dest.SearchQueries[0] != "test song" {
			t.Errorf("expected one search for 'test song', got %v", dest.SearchQueries)
		}
		if !strings.Contains(output.String(), "dQw4w9WgXcQ") {
			t.Errorf("expected video ID in output, got %s", output.String())
		}
	})

	t.Run("search without destination fails", func(t *testing.T) {
		runner, _ := testRunner(t, RunnerOpts{})

		err := runCommand(t, runner, "ytmusic", "search", "test")
		if err == nil {
			t.Fatal("expected error when destination is not configured")
		}
	})

	t.Run("create reports new playlist ID", func(t *testing.T) {
		dest := &tu.MockDestination{PlaylistID: "PLnew0000001"}
		runner, output := testRunner(t, RunnerOpts{Dest: dest})

		if err := runCommand(t, runner, "ytmusic", "create", "Road Trip"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "PLnew0000001") {
			t.Errorf("expected playlist ID in output, got %s", output.String())
		}
	})

	t.Run("add by video ID skips search", func(t *testing.T) {
		dest := &tu.MockDestination{}
		runner, _ := testRunner(t, RunnerOpts{Dest: dest})

		err := runCommand(t, runner, "ytmusic", "add", "--playlist-id", "PLx", "--video-id", "dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(dest.SearchQueries) != 0 {
			t.Errorf("expected no searches, got %v", dest.SearchQueries)
		}
		if len(dest.AddedBatches) != 1 || dest.AddedBatches[0][0] != "dQw4w9WgXcQ" {
			t.Errorf("expected one batch with the video ID, got %v", dest.AddedBatches)
		}
	})

	t.Run("add by track query uses first song result", func(t *testing.T) {
		dest := &tu.MockDestination{
			Results: []services.SearchResult{
				{ResultType: "video", VideoID: "vid00000001", Title: "Some Video"},
				{ResultType: "song", VideoID: "vid00000002", Title: "The Song"},
			},
		}
		runner, _ := testRunner(t, RunnerOpts{Dest: dest})

		err := runCommand(t, runner, "ytmusic", "add", "--playlist-id", "PLx", "--track", "the song")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(dest.AddedBatches) != 1 || dest.AddedBatches[0][0] != "vid00000002" {
			t.Errorf("expected song result to be added, got %v", dest.AddedBatches)
		}
	})
}

func TestCachePlaylistCommand(t *testing.T) {
	track := &models.Track{ID: "t1", Title: "Song", Artist: "Artist", DurationMS: 200000}
	source := &tu.MockSource{
		Meta:  &models.Playlist{ID: "pl1", Name: "Mix", TrackCount: 1},
		Items: []models.PlaylistItem{{Track: track}},
	}
	runner, output := testRunner(t, RunnerOpts{Source: source})

	if err := runCommand(t, runner, "cache", "playlist", "--id", "spotify:playlist:pl1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output.String(), "Mix") {
		t.Errorf("expected playlist name in output, got %s", output.String())
	}

	export, err := runner.cache.Load("pl1")
	if err != nil {
		t.Fatalf("expected playlist in cache, got %v", err)
	}
	if len(export.Items) != 1 || export.Items[0].Track.Title != "Song" {
		t.Errorf("unexpected cached export: %+v", export)
	}
}

func TestSpotifyPlaylistsCommand(t *testing.T) {
	source := &tu.MockSource{
		Playlists: []models.Playlist{
			{ID: "pl1", Name: "First", TrackCount: 10, Public: true},
			{ID: "pl2", Name: "Second", TrackCount: 20},
			{ID: "pl3", Name: "Third", TrackCount: 30},
		},
	}

	t.Run("lists playlists", func(t *testing.T) {
		runner, output := testRunner(t, RunnerOpts{Source: source})

		if err := runCommand(t, runner, "spotify", "playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, name := range []string{"First", "Second", "Third"} {
			if !strings.Contains(output.String(), name) {
				t.Errorf("expected %q in output, got %s", name, output.String())
			}
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		runner, output := testRunner(t, RunnerOpts{Source: source})

		if err := runCommand(t, runner, "spotify", "playlists", "--limit", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(output.String(), "Second") {
			t.Errorf("expected limit to drop later playlists, got %s", output.String())
		}
	})

	t.Run("without source fails", func(t *testing.T) {
		runner, _ := testRunner(t, RunnerOpts{})

		if err := runCommand(t, runner, "spotify", "playlists"); err == nil {
			t.Fatal("expected error when source is not configured")
		}
	})
}

func TestTransferRunCommand(t *testing.T) {
	newSource := func() *tu.MockSource {
		return &tu.MockSource{
			Meta: &models.Playlist{ID: "pl1", Name: "Road Trip", TrackCount: 1},
			Items: []models.PlaylistItem{
				{Track: &models.Track{ID: "t1", Title: "B", Artist: "Y", DurationMS: 100000}},
			},
		}
	}

	t.Run("unmatched tracks print title before artist", func(t *testing.T) {
		dest := &tu.MockDestination{Results: []services.SearchResult{
			{ResultType: "video", VideoID: "vid00000001", Title: "B"},
		}}
		runner, output := testRunner(t, RunnerOpts{Source: newSource(), Dest: dest})

		err := runCommand(t, runner, "transfer", "run", "--playlist", "pl1", "--yes", "--no-cache")
		if err == nil {
			t.Fatal("expected error when nothing matches")
		}

		if !strings.Contains(output.String(), "- B - Y") {
			t.Errorf("expected unmatched line %q in output, got %s", "- B - Y", output.String())
		}
		if strings.Contains(output.String(), "- Y - B") {
			t.Errorf("unmatched line has artist before title: %s", output.String())
		}
	})

	t.Run("successful run renders the report after progress", func(t *testing.T) {
		dest := &tu.MockDestination{Results: []services.SearchResult{
			{ResultType: "song", VideoID: "vid00000001", Title: "B", Duration: "1:40"},
		}}
		runner, output := testRunner(t, RunnerOpts{Source: newSource(), Dest: dest})

		if err := runCommand(t, runner, "transfer", "run", "--playlist", "pl1", "--yes", "--no-cache"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		progressAt := strings.Index(output.String(), "B - Y")
		reportAt := strings.Index(output.String(), "Transfer Complete")
		if progressAt == -1 || reportAt == -1 {
			t.Fatalf("expected progress and report in output, got %s", output.String())
		}
		if progressAt > reportAt {
			t.Errorf("progress output after the final report: %s", output.String())
		}
		if len(dest.AddedBatches) != 1 {
			t.Errorf("expected one add batch, got %d", len(dest.AddedBatches))
		}
	})

	t.Run("declined confirmation stops before searching", func(t *testing.T) {
		dest := &tu.MockDestination{}
		runner, output := testRunner(t, RunnerOpts{
			Source: newSource(),
			Dest:   dest,
			Input:  strings.NewReader("n\n"),
		})

		if err := runCommand(t, runner, "transfer", "run", "--playlist", "pl1", "--no-cache"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Transfer cancelled.") {
			t.Errorf("expected cancellation notice, got %s", output.String())
		}
		if len(dest.SearchQueries) != 0 {
			t.Errorf("expected no searches after declining, got %v", dest.SearchQueries)
		}
	})

	t.Run("typed confirmation proceeds", func(t *testing.T) {
		dest := &tu.MockDestination{Results: []services.SearchResult{
			{ResultType: "song", VideoID: "vid00000001", Title: "B", Duration: "1:40"},
		}}
		runner, output := testRunner(t, RunnerOpts{
			Source: newSource(),
			Dest:   dest,
			Input:  strings.NewReader("y\n"),
		})

		if err := runCommand(t, runner, "transfer", "run", "--playlist", "pl1", "--no-cache"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Transfer Complete") {
			t.Errorf("expected completed report, got %s", output.String())
		}
	})
}
