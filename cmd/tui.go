package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalogue browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.requireSession(); err != nil {
		return err
	}
	cat, err := r.catalogueService()
	if err != nil {
		return err
	}

	model, err := ui.New(ctx, ui.Opts{
		Catalogue: cat,
		Sessions:  r.sessions,
		Watchlist: r.watchlist,
		Logger:    fileLogger,
	})
	if err != nil {
		return err
	}

	if err := ui.Run(ctx, model); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
