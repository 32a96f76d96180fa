package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/cinewave/internal/formatter"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/tasks"
	"github.com/urfave/cli/v3"
)

// WatchlistList prints the saved movies in the order they were added.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	items := r.watchlist.All()
	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}
	if len(items) == 0 {
		return r.writePlain("Your watchlist is empty. Add a movie with 'cinewave watchlist add <id>'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Watch Later (%d)", len(items)))
	for i, item := range items {
		title := item.Title
		if year := shared.ReleaseYear(item.ReleaseDate); year != "" {
			title = fmt.Sprintf("%s (%s)", title, year)
		}
		r.writePlain("%3d. %-8d %-50s %s\n", i+1, item.ID, shared.Truncate(title, 50), shared.FormatRating(item.VoteAverage))
	}
	return nil
}

// WatchlistAdd snapshots a catalogue entry into the watchlist.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	cat, err := r.catalogueForSession()
	if err != nil {
		return err
	}

	d, err := cat.Movie(ctx, id)
	if err != nil {
		return err
	}

	added, err := r.watchlist.Add(models.Snapshot(d.Movie))
	if err != nil {
		return err
	}
	if !added {
		return r.writePlain("%s is already in your watchlist\n", d.Title)
	}
	r.logger.Info("added to watchlist", "movie_id", id)
	return r.writePlain("✓ %s added to your watchlist\n", d.Title)
}

// WatchlistRemove drops a movie from the watchlist. Removing an absent id is not an error.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(); err != nil {
		return err
	}

	title := fmt.Sprintf("movie %d", id)
	if item, ok := r.watchlist.Get(id); ok {
		title = item.Title
	}

	removed, err := r.watchlist.Remove(id)
	if err != nil {
		return err
	}
	if !removed {
		return r.writePlain("%s is not in your watchlist\n", title)
	}
	r.logger.Info("removed from watchlist", "movie_id", id)
	return r.writePlain("✓ %s removed from your watchlist\n", title)
}

// WatchlistExport writes the watchlist in the requested format.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	format := cmd.String("format")
	output := cmd.String("output")
	items := r.watchlist.All()

	if cmd.Bool("posters") {
		if format != formatter.FormatMarkdown {
			return fmt.Errorf("%w: --posters requires --format markdown", shared.ErrInvalidArgument)
		}
		if output == "" {
			output = "watchlist"
		}
		res, err := formatter.WriteMarkdownExport(items, output, r.imageBase(), true)
		if err != nil {
			return err
		}
		r.logger.Info("markdown export written", "dir", res.Directory, "posters", len(res.Posters))
		return r.writePlain("✓ Exported %d movies to %s (%d posters)\n", len(items), res.Directory, len(res.Posters))
	}

	path, err := formatter.WriteExport(items, format, output, r.imageBase())
	if err != nil {
		return err
	}
	r.logger.Info("export written", "path", path, "format", format)
	return r.writePlain("✓ Exported %d movies to %s\n", len(items), path)
}

// WatchlistTrailers finds the best trailer of every saved movie.
func (r *Runner) WatchlistTrailers(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	engine, err := r.taskEngine()
	if err != nil {
		return err
	}

	items := r.watchlist.All()
	if len(items) == 0 {
		return r.writePlain("Your watchlist is empty.\n")
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchWatchlist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchVideos:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()

	start := time.Now()
	digest, err := engine.Trailers(ctx, progressCh, items, tasks.TrailerOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progressCh)
	<-done
	if err != nil && digest == nil {
		return err
	}

	r.logger.Debug("trailer digest finished", "elapsed", time.Since(start), "found", digest.Found)

	if output := cmd.String("output"); output != "" {
		if werr := formatter.WriteTrailerDigest(digest, cmd.String("format"), output); werr != nil {
			return werr
		}
		r.writePlain("\n✓ Digest written to %s\n", output)
		return err
	}

	r.writePlain("\n")
	r.output.Write(formatter.DigestToText(digest))
	return err
}
