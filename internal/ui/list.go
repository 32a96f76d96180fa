package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = watchlistItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
	saved bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.saved {
		return "★ " + i.movie.Title
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	return describe(i.movie.ReleaseDate, i.movie.VoteAverage, i.movie.Overview)
}

// watchlistItem wraps [models.WatchlistItem] to implement [list.Item].
type watchlistItem struct {
	item models.WatchlistItem
}

func (i watchlistItem) FilterValue() string { return i.item.Title }
func (i watchlistItem) Title() string       { return i.item.Title }
func (i watchlistItem) Description() string {
	return describe(i.item.ReleaseDate, i.item.VoteAverage, i.item.Overview)
}

func describe(date string, rating float64, overview string) string {
	desc := shared.FormatRating(rating)
	if year := shared.ReleaseYear(date); year != "" {
		desc = fmt.Sprintf("%s • %s", year, desc)
	}
	if overview != "" {
		desc = fmt.Sprintf("%s • %s", desc, shared.Truncate(overview, 80))
	}
	return desc
}

func movieItems(movies []models.Movie, saved func(int) bool) []list.Item {
	items := make([]list.Item, len(movies))
	for i, mv := range movies {
		items[i] = movieItem{movie: mv, saved: saved(mv.ID)}
	}
	return items
}

func watchlistItems(entries []models.WatchlistItem) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = watchlistItem{item: e}
	}
	return items
}
