package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 4
	MaxWorkers       = 10
	DefaultRateLimit = 4.0
)

// TrailerOpts contains configuration for the trailer digest.
type TrailerOpts struct {
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Requests per second (default: 4)
	Now        func() time.Time // Clock for GeneratedAt
}

type trailerJob struct {
	index int
	item  models.WatchlistItem
}

type trailerOutcome struct {
	index  int
	result models.TrailerResult
}

// Trailers looks up the best video of every item concurrently with rate limiting and progress tracking.
//
// Results are returned in the order of items. A cancelled context stops dispatching; the partial
// digest is returned with the context error.
func (e *CatalogueEngine) Trailers(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	items []models.WatchlistItem,
	opts TrailerOpts,
) (*models.TrailerDigest, error) {
	if e.catalogue == nil {
		return nil, fmt.Errorf("%w: catalogue not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	digest := &models.TrailerDigest{
		GeneratedAt: opts.Now().UTC(),
		Total:       len(items),
		Results:     make([]models.TrailerResult, len(items)),
	}
	for i, item := range items {
		digest.Results[i] = models.TrailerResult{Item: item}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan trailerJob)
	outcomes := make(chan trailerOutcome, len(items))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.trailerWorker(ctx, &wg, limiter, jobs, outcomes)
	}

	e.sendProgress(prog, watchlistUpdate(len(items)))

	go func() {
		defer close(jobs)
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case jobs <- trailerJob{index: i, item: item}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for out := range outcomes {
		completed++
		digest.Results[out.index] = out.result

		res := out.result
		switch {
		case res.Error != "":
			digest.Failed++
			e.sendProgress(prog, trailerFailedUpdate(completed, len(items), res))
		case res.Found():
			digest.Found++
			e.sendProgress(prog, trailerFoundUpdate(completed, len(items), res))
		default:
			digest.Missing++
			e.sendProgress(prog, trailerMissingUpdate(completed, len(items), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return digest, err
	}
	return digest, nil
}

// trailerWorker resolves videos for jobs until the channel closes.
func (e *CatalogueEngine) trailerWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan trailerJob,
	outcomes chan<- trailerOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		outcomes <- trailerOutcome{index: job.index, result: e.bestTrailer(ctx, job.item)}
	}
}

func (e *CatalogueEngine) bestTrailer(ctx context.Context, item models.WatchlistItem) models.TrailerResult {
	result := models.TrailerResult{Item: item}

	videos, err := e.catalogue.Videos(ctx, item.ID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if v, ok := services.BestVideo(videos); ok {
		result.Video = &v
	}
	return result
}
