package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionView is the public form of a session; the token stays server-side.
type sessionView struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LoginTime time.Time `json:"loginTime"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Session       *sessionView `json:"session,omitempty"`
}

func viewOf(sess *models.Session) *sessionView {
	if sess == nil {
		return nil
	}
	return &sessionView{ID: sess.ID, Email: sess.Email, Name: sess.Name, LoginTime: sess.LoginTime}
}

type watchlistResponse struct {
	Count int                    `json:"count"`
	Items []models.WatchlistItem `json:"items"`
}

type addResponse struct {
	Added bool                 `json:"added"`
	Item  models.WatchlistItem `json:"item"`
}

type removeResponse struct {
	Removed bool `json:"removed"`
}

type movieResponse struct {
	*models.MovieDetails
	InWatchlist bool `json:"in_watchlist"`
}

type movieListItem struct {
	models.Movie
	InWatchlist bool `json:"in_watchlist"`
}

type moviePageResponse struct {
	Page         int             `json:"page"`
	Results      []movieListItem `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

// pageResponse flags every result that is already in the watchlist.
func (s *Server) pageResponse(page *models.MoviePage) moviePageResponse {
	res := moviePageResponse{
		Page:         page.Page,
		Results:      make([]movieListItem, 0, len(page.Results)),
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
	}
	for _, m := range page.Results {
		res.Results = append(res.Results, movieListItem{Movie: m, InWatchlist: s.opts.Watchlist.Contains(m.ID)})
	}
	return res
}

type categoryView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusOf maps sentinel errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrAuthFailed), errors.Is(err, shared.ErrAPIRequest):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive integer", shared.ErrInvalidArgument)
	}
	return id, nil
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s *Server) catalogue(w http.ResponseWriter) (services.Catalogue, bool) {
	if s.opts.Catalogue == nil {
		writeError(w, http.StatusServiceUnavailable, "catalogue not configured")
		return nil, false
	}
	return s.opts.Catalogue, true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"catalogue": s.opts.Catalogue != nil,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.opts.Sessions.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Authenticated: true, Session: viewOf(sess)})
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.opts.Sessions.Current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Session: viewOf(sess)})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Sessions.End(); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWatchlist(w http.ResponseWriter, r *http.Request) {
	items := s.opts.Watchlist.All()
	writeJSON(w, http.StatusOK, watchlistResponse{Count: len(items), Items: items})
}

// addToWatchlist accepts a full item snapshot, or just {"id": n} when a catalogue is configured.
func (s *Server) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	var item models.WatchlistItem
	if err := decodeBody(w, r, &item); err != nil {
		s.fail(w, r, err)
		return
	}

	if item.ID > 0 && item.Title == "" && s.opts.Catalogue != nil {
		details, err := s.opts.Catalogue.Movie(r.Context(), item.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		item = models.Snapshot(details.Movie)
	}

	added, err := s.opts.Watchlist.Add(item)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, addResponse{Added: added, Item: item})
}

func (s *Server) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	removed, err := s.opts.Watchlist.Remove(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removeResponse{Removed: removed})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats := services.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Name: c.Name, Label: c.Label})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalogue(w)
	if !ok {
		return
	}
	movies, err := cat.Featured(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalogue(w)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = services.CategoryPopular
	}

	page, err := cat.Movies(r.Context(), category, queryPage(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.pageResponse(page))
}

func (s *Server) movie(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalogue(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	details, err := cat.Movie(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movieResponse{MovieDetails: details, InWatchlist: s.opts.Watchlist.Contains(id)})
}

func (s *Server) videos(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalogue(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	videos, err := cat.Videos(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalogue(w)
	if !ok {
		return
	}

	page, err := cat.Search(r.Context(), r.URL.Query().Get("q"), queryPage(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.pageResponse(page))
}
