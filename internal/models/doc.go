// Package models defines the catalogue entities returned by TMDB and the two records cinewave persists.
//
// Catalogue types mirror TMDB's JSON so they decode directly from API responses:
//   - [Movie] : list entry (discover, trending, search results)
//   - [MovieDetails] : single movie with genres, runtime and tagline
//   - [Video] : promotional video (trailer, teaser, clip) hosted on YouTube or Vimeo
//   - [MoviePage] : one page of a paginated listing
//
// Persisted records:
//   - [Session] : the single authenticated identity with its TMDB request token
//   - [WatchlistItem] : a snapshot of a [Movie] taken when it was added to the watch-later list
package models
