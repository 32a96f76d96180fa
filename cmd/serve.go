package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/cinewave/internal/server"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the local JSON API until interrupted.
//
// Without a TMDB token the session and watchlist routes still work; catalogue routes answer 503.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	opts := server.Opts{
		Addr:      addr,
		Sessions:  r.sessions,
		Watchlist: r.watchlist,
		Logger:    shared.WithLogger(r.logger, "component", "server"),
	}
	if cat, err := r.catalogueService(); err == nil {
		opts.Catalogue = cat
	} else {
		r.logger.Warn("catalogue routes disabled", "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("Serving cinewave API on http://%s\n", addr)
	return server.New(opts).ListenAndServe(ctx)
}
