package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/repositories"
	"sp2yt/internal/services"
	"sp2yt/internal/shared"
	"sp2yt/internal/tasks"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var source services.SourceCatalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			source = svc
		}
	}

	dest := services.NewYTMusicService(config.Credentials.YouTube.ProxyURL)
	if config.Credentials.YouTube.HeadersPath != "" {
		_ = dest.Authenticate(context.Background(), map[string]string{
			"auth_file": config.Credentials.YouTube.HeadersPath,
		})
	}

	apiService := services.NewAPIService(config.Credentials.YouTube.ProxyURL, nil)

	// The catalog cache is optional; commands other than setup work without it.
	var trackCacher tasks.TrackCacher
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			trackCacher = repositories.NewCatalogCache(db)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: source,
		Dest:   dest,
		API:    apiService,
		Tracks: trackCacher,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "sp2yt",
		Usage:    "Transfer playlists from Spotify to YouTube Music",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNothingToTransfer) {
			logger.Warn("nothing to transfer", "error", err)
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
