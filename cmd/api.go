package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"sp2yt/internal/shared"
)

// APIGet performs a raw GET against the proxy and prints the response body.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}
	if r.api == nil {
		return fmt.Errorf("%w: proxy URL is not configured", shared.ErrServiceUnavailable)
	}

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return err
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}
	r.writePlain("%s\n", resp.Body)
	return nil
}

// APIPost performs a raw POST with a JSON body against the proxy.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}
	if r.api == nil {
		return fmt.Errorf("%w: proxy URL is not configured", shared.ErrServiceUnavailable)
	}

	data := []byte(cmd.String("data"))
	if err := shared.ValidateJSON(data); err != nil {
		return err
	}

	resp, err := r.api.Post(ctx, path, data)
	if err != nil {
		return err
	}

	r.writePlain("Status: %d\n", resp.StatusCode)
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}
	r.writePlain("%s\n", resp.Body)
	return nil
}
