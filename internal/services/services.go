// package services defines the [Catalogue] interface for the movie catalogue API
package services

import (
	"context"

	"github.com/desertthunder/cinewave/internal/models"
)

// Catalogue is the read-only movie catalogue consumed by the CLI, TUI, server and tasks.
type Catalogue interface {
	// Movies lists one page of a named category. Unknown names fall back to [CategoryPopular].
	Movies(ctx context.Context, category string, page int) (*models.MoviePage, error)

	// Movie fetches a single movie's details.
	// Returns [shared.ErrMovieNotFound] when the id is unknown.
	Movie(ctx context.Context, id int) (*models.MovieDetails, error)

	// Videos lists promotional videos, trailers first, then teasers.
	Videos(ctx context.Context, id int) ([]models.Video, error)

	// Search runs a free-text title search.
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)

	// Keywords returns keyword suggestions for a partial query.
	Keywords(ctx context.Context, query string) ([]models.Keyword, error)

	// Featured returns the popular movies that have backdrop artwork.
	Featured(ctx context.Context) ([]models.Movie, error)
}
