// package tasks implements long-running catalogue operations.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
)

// CategoryResult is the outcome of fetching one category.
type CategoryResult struct {
	Category services.Category
	Movies   []models.Movie
	Error    error
}

// BrowseResult contains the first page of every category and the featured movies.
type BrowseResult struct {
	Featured   []models.Movie
	Categories []CategoryResult
	Errors     []CategoryResult
}

// Engine defines the catalogue operations.
type Engine interface {
	// Trailers finds the best video for every watchlist item.
	Trailers(ctx context.Context, progress chan<- ProgressUpdate, items []models.WatchlistItem, opts TrailerOpts) (*models.TrailerDigest, error)

	// Browse fetches the featured movies and the first page of every category.
	Browse(ctx context.Context, progress chan<- ProgressUpdate) (*BrowseResult, error)
}

// CatalogueEngine implements [Engine] on top of a [services.Catalogue].
type CatalogueEngine struct {
	catalogue services.Catalogue
}

var _ Engine = (*CatalogueEngine)(nil)

// NewCatalogueEngine creates a new CatalogueEngine.
func NewCatalogueEngine(catalogue services.Catalogue) *CatalogueEngine {
	return &CatalogueEngine{catalogue: catalogue}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CatalogueEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Browse fetches the featured movies and every category in display order.
func (e *CatalogueEngine) Browse(ctx context.Context, progress chan<- ProgressUpdate) (*BrowseResult, error) {
	if e.catalogue == nil {
		return nil, fmt.Errorf("%w: catalogue not initialized", shared.ErrServiceUnavailable)
	}

	categories := services.Categories()
	total := len(categories) + 1
	result := &BrowseResult{
		Categories: make([]CategoryResult, 0, len(categories)),
		Errors:     []CategoryResult{},
	}

	e.sendProgress(progress, featuredUpdate(1, total))
	featured, err := e.catalogue.Featured(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Errors = append(result.Errors, CategoryResult{
			Category: services.Category{Name: "featured", Label: "Featured"},
			Error:    err,
		})
	}
	result.Featured = featured

	for i, cat := range categories {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, categoryUpdate(i+2, total, cat))

		page, err := e.catalogue.Movies(ctx, cat.Name, 1)
		res := CategoryResult{Category: cat, Error: err}
		if err == nil {
			res.Movies = page.Results
		}

		result.Categories = append(result.Categories, res)
		if err != nil {
			result.Errors = append(result.Errors, res)
		}
	}

	return result, nil
}
