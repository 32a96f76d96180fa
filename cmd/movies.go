package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/tasks"
	"github.com/urfave/cli/v3"
)

// parseID reads a positive movie id argument.
func parseID(cmd *cli.Command) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg("id"))
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// catalogueForSession returns the catalogue once a session exists.
func (r *Runner) catalogueForSession() (services.Catalogue, error) {
	if err := r.requireSession(); err != nil {
		return nil, err
	}
	return r.catalogueService()
}

func (r *Runner) writeMovies(movies []models.Movie) {
	for _, mv := range movies {
		marker := " "
		if r.watchlist.Contains(mv.ID) {
			marker = "★"
		}
		title := mv.Title
		if year := shared.ReleaseYear(mv.ReleaseDate); year != "" {
			title = fmt.Sprintf("%s (%s)", title, year)
		}
		r.writePlain("%s %-8d %-50s %s\n", marker, mv.ID, shared.Truncate(title, 50), shared.FormatRating(mv.VoteAverage))
	}
}

// MoviesList prints one page of a category.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.catalogueForSession()
	if err != nil {
		return err
	}

	name := cmd.String("category")
	category, ok := services.LookupCategory(name)
	if !ok {
		r.logger.Warn("unknown category, showing popular", "category", name)
	}

	page, err := cat.Movies(ctx, category.Name, cmd.Int("page"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (page %d/%d)", category.Label, page.Page, page.TotalPages))
	r.writeMovies(page.Results)
	return nil
}

// MoviesCategories prints the category names accepted by --category.
func (r *Runner) MoviesCategories(ctx context.Context, cmd *cli.Command) error {
	for _, c := range services.Categories() {
		r.writePlain("%-16s %s\n", c.Name, c.Label)
	}
	return nil
}

// MoviesShow prints a movie's details.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
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
	if cmd.Bool("json") {
		return r.writeJSON(d, true)
	}

	title := d.Title
	if year := shared.ReleaseYear(d.ReleaseDate); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	r.writePlainHeader(title)
	if d.Tagline != "" {
		r.writePlain("%s\n\n", d.Tagline)
	}
	r.writePlain("Rating:  %s (%d votes)\n", shared.FormatRating(d.VoteAverage), d.VoteCount)
	r.writePlain("Runtime: %s\n", shared.FormatRuntime(d.Runtime))
	if genres := d.GenreNames(); len(genres) > 0 {
		r.writePlain("Genres:  %s\n", strings.Join(genres, ", "))
	}
	if poster := services.ImageURL(r.imageBase(), d.PosterPath, services.ImagePoster, services.SizeLarge); poster != "" {
		r.writePlain("Poster:  %s\n", poster)
	}
	if d.Overview != "" {
		r.writePlainln("%s", d.Overview)
	}
	if r.watchlist.Contains(d.ID) {
		r.writePlainln("★ In your watchlist")
	}
	return nil
}

// MoviesVideos prints a movie's videos, best first.
func (r *Runner) MoviesVideos(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	cat, err := r.catalogueForSession()
	if err != nil {
		return err
	}

	videos, err := cat.Videos(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		if videos == nil {
			videos = []models.Video{}
		}
		return r.writeJSON(videos, true)
	}

	if len(videos) == 0 {
		return r.writePlain("No videos for movie %d\n", id)
	}
	for _, v := range services.SortVideos(videos) {
		link := v.URL()
		if link == "" {
			link = v.Site
		}
		r.writePlain("%-8s %-40s %s\n", v.Type, shared.Truncate(v.Name, 40), link)
	}
	return nil
}

// MoviesSearch prints title matches, or keyword suggestions with --keywords.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	cat, err := r.catalogueForSession()
	if err != nil {
		return err
	}

	if cmd.Bool("keywords") {
		keywords, err := cat.Keywords(ctx, query)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(keywords, true)
		}
		for _, k := range keywords {
			r.writePlain("%s\n", k.Name)
		}
		return nil
	}

	page, err := cat.Search(ctx, query, cmd.Int("page"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}
	if len(page.Results) == 0 {
		return r.writePlain("No movies match %q\n", query)
	}
	r.writePlainHeader(fmt.Sprintf("Results for %q (%d)", query, page.TotalResults))
	r.writeMovies(page.Results)
	return nil
}

// MoviesFeatured prints the banner movies.
func (r *Runner) MoviesFeatured(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.catalogueForSession()
	if err != nil {
		return err
	}

	movies, err := cat.Featured(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}
	r.writePlainHeader("Featured")
	r.writeMovies(movies)
	return nil
}

// MoviesBrowse prints the home screen: featured movies, then a row per category.
func (r *Runner) MoviesBrowse(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	engine, err := r.taskEngine()
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.Browse(ctx, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = 5
	}
	clip := func(movies []models.Movie) []models.Movie {
		if len(movies) > limit {
			return movies[:limit]
		}
		return movies
	}

	if len(result.Featured) > 0 {
		r.writePlainHeader("Featured")
		r.writeMovies(clip(result.Featured))
	}
	for _, row := range result.Categories {
		r.writePlainln("%s", row.Category.Label)
		if row.Error != nil {
			r.writePlain("  ✗ %v\n", row.Error)
			continue
		}
		r.writeMovies(clip(row.Movies))
	}

	if len(result.Errors) > 0 {
		r.logger.Warn("some categories failed", "count", len(result.Errors))
	}
	return nil
}

// MoviesOpen opens the best trailer of a movie in the default browser.
func (r *Runner) MoviesOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	cat, err := r.catalogueForSession()
	if err != nil {
		return err
	}

	videos, err := cat.Videos(ctx, id)
	if err != nil {
		return err
	}
	best, ok := services.BestVideo(videos)
	if !ok {
		return fmt.Errorf("%w: no playable trailer for movie %d", shared.ErrMovieNotFound, id)
	}

	r.logger.Info("opening trailer", "movie_id", id, "url", best.URL())
	if err := shared.OpenBrowser(best.URL()); err != nil {
		r.writePlain("Could not open a browser; visit %s\n", best.URL())
		return nil
	}
	return r.writePlain("✓ Opening %s\n", best.URL())
}
