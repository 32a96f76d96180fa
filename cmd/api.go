package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct, authenticated GET request to the TMDB API.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	useJSON := cmd.Bool("json")

	tmdb, err := r.tmdbService()
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := tmdb.Raw(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !useJSON)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
