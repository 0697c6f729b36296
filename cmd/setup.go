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

// loadOrCreateConfig loads the config at path, creating it from the embedded
// example when it does not exist yet.
func loadOrCreateConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(path); err != nil {
			return nil, err
		}
	}
	return shared.LoadConfig(path)
}

func appDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".sp2yt")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// SetupDatabase initializes the SQLite database and runs all migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := loadOrCreateConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	r.writePlain("Database ready at %s\n", config.Database.Path)
	return nil
}

// SetupYouTube parses browser headers from a cURL command and registers them
// with the proxy. The resulting browser.json is what `auth login` uploads.
func (r *Runner) SetupYouTube(ctx context.Context, cmd *cli.Command) error {
	var headers *shared.CurlHeaders
	var err error

	switch {
	case cmd.String("curl-file") != "":
		headers, err = shared.ParseCurlFile(cmd.String("curl-file"))
	case cmd.String("curl") != "":
		headers, err = shared.ParseCurlCommand([]byte(cmd.String("curl")))
	default:
		return fmt.Errorf("%w: provide --curl or --curl-file", shared.ErrMissingArgument)
	}

	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	if r.api == nil {
		return fmt.Errorf("%w: proxy URL is not configured", shared.ErrServiceUnavailable)
	}

	resp, err := r.api.SetupBrowser(ctx, headers.ToHeadersRaw())
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, resp.Message)
	}

	output := cmd.String("output")
	if output == "" {
		dir, err := appDir()
		if err != nil {
			return err
		}
		output = filepath.Join(dir, "browser.json")
	}

	var content []byte
	switch auth := resp.AuthContent.(type) {
	case string:
		content = []byte(auth)
	default:
		content, err = json.MarshalIndent(auth, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode auth content: %w", err)
		}
	}

	if err := os.WriteFile(output, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	r.logger.Info("browser auth saved", "path", output)
	r.writePlain("YouTube Music auth written to %s\n", output)
	r.writePlain("Run `sp2yt auth login %s` to authenticate the proxy.\n", output)
	return nil
}
