package tasks

import (
	"fmt"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchWatchlist Phase = iota
	FetchVideos
	FetchFeatured
	FetchCategory
)

func (p Phase) String() string {
	switch p {
	case FetchWatchlist:
		return "fetch_watchlist"
	case FetchVideos:
		return "fetch_videos"
	case FetchFeatured:
		return "fetch_featured"
	case FetchCategory:
		return "fetch_category"
	default:
		return ""
	}
}

func watchlistUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up trailers for %d movies...", total),
	}
}

func trailerFoundUpdate(step, total int, res models.TrailerResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: %s", step, total, res.Item.Title, res.Video.Name),
		Data:    res,
	}
}

func trailerMissingUpdate(step, total int, res models.TrailerResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s: no playable video", step, total, res.Item.Title),
		Data:    res,
	}
}

func trailerFailedUpdate(step, total int, res models.TrailerResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.Item.Title, res.Error),
		Data:    res,
	}
}

func featuredUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatured,
		Step:    step,
		Total:   total,
		Message: "Fetching featured movies...",
	}
}

func categoryUpdate(step, total int, cat services.Category) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", cat.Label),
		Data:    cat.Name,
	}
}
