// package models defines the data model for the cinewave catalogue client
package models

import (
	"fmt"
	"time"
)

// Movie is a catalogue list entry.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int   `json:"genre_ids,omitempty"`
	Adult         bool    `json:"adult"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the full record returned by /movie/{id}.
type MovieDetails struct {
	Movie
	Tagline  string  `json:"tagline"`
	Runtime  int     `json:"runtime"` // minutes
	Status   string  `json:"status"`
	Homepage string  `json:"homepage"`
	Genres   []Genre `json:"genres"`
	Budget   int64   `json:"budget"`
	Revenue  int64   `json:"revenue"`
}

// GenreNames returns the genre names in API order.
func (d MovieDetails) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// MoviePage is one page of a paginated listing.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Video types as reported by TMDB.
const (
	VideoTrailer = "Trailer"
	VideoTeaser  = "Teaser"
)

// Video is a promotional video attached to a movie.
type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	Language    string `json:"iso_639_1"`
	PublishedAt string `json:"published_at"`
}

// URL returns the public watch URL, or "" for hosts cinewave does not know.
func (v Video) URL() string {
	switch v.Site {
	case "YouTube":
		return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.Key)
	case "Vimeo":
		return fmt.Sprintf("https://vimeo.com/%s", v.Key)
	default:
		return ""
	}
}

// Keyword is a search suggestion.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Session is the single authenticated identity.
//
// JSON field names are the persisted layout of the session slot.
type Session struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"tmdbToken"`
	LoginTime time.Time `json:"loginTime"`
}

// WatchlistItem is a snapshot of a catalogue entry taken when it was added.
type WatchlistItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
}

// Snapshot copies the fields of m that the watchlist keeps.
func Snapshot(m Movie) WatchlistItem {
	return WatchlistItem{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
	}
}

// Validate checks that the item can be stored.
func (w WatchlistItem) Validate() error {
	if w.ID <= 0 {
		return fmt.Errorf("watchlist item id must be positive, got %d", w.ID)
	}
	if w.Title == "" {
		return fmt.Errorf("watchlist item %d has no title", w.ID)
	}
	return nil
}

// TrailerResult is the best video found for one watchlist item.
type TrailerResult struct {
	Item  WatchlistItem `json:"item"`
	Video *Video        `json:"video,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Found reports whether a playable video was selected.
func (r TrailerResult) Found() bool { return r.Video != nil }

// TrailerDigest collects the trailers of a whole watchlist, in watchlist order.
type TrailerDigest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Total       int             `json:"total"`
	Found       int             `json:"found"`
	Missing     int             `json:"missing"`
	Failed      int             `json:"failed"`
	Results     []TrailerResult `json:"results"`
}
