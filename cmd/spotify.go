package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"sp2yt/internal/formatter"
	"sp2yt/internal/models"
	"sp2yt/internal/server"
	"sp2yt/internal/services"
	"sp2yt/internal/shared"
)

// SpotifyAuth runs the OAuth2 authorization-code flow against Spotify, using
// a local callback server, and persists the token to the config file.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config, err := loadOrCreateConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, spotify)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	if err := shared.SaveConfig(configPath, config); err != nil {
		return err
	}

	if err := spotify.OAuthenticate(ctx, token); err != nil {
		return err
	}
	r.source = spotify
	r.SetLogger(r.logger)

	r.writePlain("Spotify authentication complete. Token saved to %s\n", configPath)
	return nil
}

// doOAuth starts a one-shot callback server, opens the authorization URL in
// the user's browser and waits for the exchanged token.
func (r *Runner) doOAuth(ctx context.Context, spotify *services.SpotifyService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	handler := server.NewOAuthHandler(spotify.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := spotify.GetAuthURL(state)
	r.writePlain("Opening browser for Spotify authorization...\n")
	r.writePlain("If it does not open, visit:\n  %s\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return result.Token, nil
	case <-time.After(2 * time.Minute):
		return nil, fmt.Errorf("%w: no callback received within 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleSpotifyAuthError rewrites token-expiry errors into an actionable hint.
func handleSpotifyAuthError(err error) error {
	if errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("%w\nRun `sp2yt spotify auth` to re-authenticate", err)
	}
	return err
}

// SpotifyPlaylists lists the authenticated user's playlists.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: spotify credentials are not configured", shared.ErrMissingCredentials)
	}

	playlists, err := r.source.GetPlaylists(ctx)
	if err != nil {
		return handleSpotifyAuthError(err)
	}

	limit := int(cmd.Int("limit"))
	if limit > 0 && len(playlists) > limit {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for _, p := range playlists {
		r.writePlain("  %-24s %4d tracks  %-8s  %s\n",
			p.ID, p.TrackCount, shared.VisibilityString(p.Public), p.Name)
	}
	return nil
}

// fetchPlaylistExport pulls a playlist's metadata and every item page.
func (r *Runner) fetchPlaylistExport(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	playlist, err := r.source.PlaylistMetadata(ctx, playlistID)
	if err != nil {
		return nil, handleSpotifyAuthError(err)
	}

	export := &models.PlaylistExport{Playlist: *playlist}
	cursor := ""
	for {
		items, next, err := r.source.PlaylistItemsPage(ctx, playlistID, cursor)
		if err != nil {
			return nil, handleSpotifyAuthError(err)
		}
		export.Items = append(export.Items, items...)
		if next == "" {
			break
		}
		cursor = next
	}

	return export, nil
}

// SpotifyExport dumps a playlist's full JSON to stdout or a file.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: spotify credentials are not configured", shared.ErrMissingCredentials)
	}

	playlistID := NormalizePlaylistID(cmd.String("id"))
	export, err := r.fetchPlaylistExport(ctx, playlistID)
	if err != nil {
		return err
	}

	data, err := formatter.Render(export, cmd.String("format"), cmd.Bool("pretty"))
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.writePlain("Exported %d tracks to %s\n", len(export.Items), output)
		return nil
	}

	r.writePlain("%s\n", data)
	return nil
}
