package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/shared"
)

// AuthLogin uploads a browser.json auth file to the proxy and stores a copy
// under ~/.sp2yt so later sessions reuse it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to browser.json", shared.ErrMissingArgument)
	}

	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return err
	}
	if err := shared.ValidateJSON(data); err != nil {
		return err
	}

	if r.api == nil {
		return fmt.Errorf("%w: proxy URL is not configured", shared.ErrServiceUnavailable)
	}

	resp, err := r.api.UploadJSON(ctx, "/auth/upload", data)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: proxy returned %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	dir, err := appDir()
	if err != nil {
		return err
	}
	saved := filepath.Join(dir, "headers_auth.json")
	if err := os.WriteFile(saved, data, 0600); err != nil {
		return fmt.Errorf("failed to save auth file: %w", err)
	}

	r.logger.Info("auth uploaded", "saved", saved)
	r.writePlain("Authenticated with the proxy. Auth saved to %s\n", saved)
	return nil
}

// AuthStatus reports the proxy's health and authentication state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: proxy URL is not configured", shared.ErrServiceUnavailable)
	}

	resp, err := r.api.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	var health struct {
		Status        string `json:"status"`
		Authenticated bool   `json:"authenticated"`
	}
	if err := json.Unmarshal(resp.Body, &health); err != nil {
		return fmt.Errorf("failed to parse health response: %w", err)
	}

	r.writePlain("Proxy status: %s\n", health.Status)
	if health.Authenticated {
		r.writePlain("YouTube Music: authenticated\n")
	} else {
		r.writePlain("YouTube Music: not authenticated (run `sp2yt auth login <browser.json>`)\n")
	}
	return nil
}
