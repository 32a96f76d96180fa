package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinewave/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFeaturedFetched MsgKind = iota
	MsgMoviesFetched
	MsgDetailsFetched
	MsgWatchlistChanged
	MsgSessionChanged
	MsgFeaturedTick
)

type featuredPayload struct {
	movies []models.Movie
	err    error
}

type moviesPayload struct {
	category string
	page     *models.MoviePage
	err      error
}

type detailsPayload struct {
	details *models.MovieDetails
	trailer *models.Video
	err     error
}

// featuredFetchedMsg is the constructor for [MsgFeaturedFetched]
func featuredFetchedMsg(movies []models.Movie, err error) Msg {
	return Msg{kind: MsgFeaturedFetched, data: featuredPayload{movies, err}}
}

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]
func moviesFetchedMsg(category string, page *models.MoviePage, err error) Msg {
	return Msg{kind: MsgMoviesFetched, data: moviesPayload{category, page, err}}
}

// detailsFetchedMsg is the constructor for [MsgDetailsFetched]
func detailsFetchedMsg(details *models.MovieDetails, trailer *models.Video, err error) Msg {
	return Msg{kind: MsgDetailsFetched, data: detailsPayload{details, trailer, err}}
}

// watchlistChangedMsg is the constructor for [MsgWatchlistChanged]
func watchlistChangedMsg(items []models.WatchlistItem) Msg {
	return Msg{kind: MsgWatchlistChanged, data: items}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(sess *models.Session) Msg {
	return Msg{kind: MsgSessionChanged, data: sess}
}

// featuredTickMsg is the constructor for [MsgFeaturedTick]
func featuredTickMsg() Msg {
	return Msg{kind: MsgFeaturedTick}
}
