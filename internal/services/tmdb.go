// TMDB v3 implementation of [Catalogue]
//
// Response types based on https://developer.themoviedb.org/reference
package services

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "fr-FR"

	// MinQueryLength is the shortest trimmed query sent to the search endpoints.
	MinQueryLength = 2
)

// TMDBOpts configures a [TMDBService].
type TMDBOpts struct {
	APIKey   string
	BaseURL  string
	Language string
	// HTTPClient supplies the transport under the bearer-token client.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// TMDBService implements [Catalogue] for TMDB.
type TMDBService struct {
	baseURL    string
	language   string
	httpClient *http.Client
	logger     *log.Logger
}

var _ Catalogue = (*TMDBService)(nil)

// NewTMDBService creates a TMDB client authenticated with opts.APIKey.
func NewTMDBService(opts TMDBOpts) (*TMDBService, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" || key == shared.PlaceholderAPIKey {
		return nil, fmt.Errorf("%w: TMDB api_key is not configured", shared.ErrMissingCredentials)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: "Bearer"})

	return &TMDBService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		language:   opts.Language,
		httpClient: oauth2.NewClient(ctx, src),
		logger:     opts.Logger,
	}, nil
}

// NewTMDBServiceFromConfig creates a client from the [tmdb] config section.
func NewTMDBServiceFromConfig(cfg shared.TMDBConfig, logger *log.Logger) (*TMDBService, error) {
	return NewTMDBService(TMDBOpts{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Language: cfg.Language,
		Logger:   logger,
	})
}

func (s *TMDBService) Name() string { return "TMDB" }

// Language returns the language sent with every catalogue request.
func (s *TMDBService) Language() string { return s.language }

// endpoint builds the URL for path with query parameters.
func (s *TMDBService) endpoint(path string, params url.Values) string {
	u := s.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// doRequest performs an authenticated GET and decodes the JSON body into result.
func (s *TMDBService) doRequest(ctx context.Context, path string, params url.Values, result any) error {
	apiURL := s.endpoint(path, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("tmdb request", "path", path)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}
	return nil
}

// StatusError reports a non-2xx TMDB response. It matches [shared.ErrAPIRequest] with errors.Is.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s returned status %d", shared.ErrAPIRequest, e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == shared.ErrAPIRequest
}

func (s *TMDBService) pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"language": {s.language}, "page": {strconv.Itoa(page)}}
}

// Movies lists one page of a category.
func (s *TMDBService) Movies(ctx context.Context, category string, page int) (*models.MoviePage, error) {
	cat, ok := LookupCategory(category)
	if !ok && category != "" {
		s.logger.Warn("unknown category, using popular", "category", category)
	}

	params := s.pageParams(page)
	for k, v := range cat.Params {
		params[k] = v
	}

	var result models.MoviePage
	if err := s.doRequest(ctx, cat.Endpoint, params, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []models.Movie{}
	}
	return &result, nil
}

// Movie fetches /movie/{id}.
func (s *TMDBService) Movie(ctx context.Context, id int) (*models.MovieDetails, error) {
	var details models.MovieDetails
	err := s.doRequest(ctx, fmt.Sprintf("movie/%d", id), url.Values{"language": {s.language}}, &details)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, id)
		}
		return nil, err
	}
	return &details, nil
}

// Videos fetches /movie/{id}/videos in English and French, ordered by [SortVideos].
func (s *TMDBService) Videos(ctx context.Context, id int) ([]models.Video, error) {
	params := url.Values{
		"language":               {s.language},
		"include_video_language": {"en,fr"},
	}

	var response struct {
		Results []models.Video `json:"results"`
	}
	if err := s.doRequest(ctx, fmt.Sprintf("movie/%d/videos", id), params, &response); err != nil {
		return nil, err
	}

	return SortVideos(response.Results), nil
}

func videoRank(v models.Video) int {
	switch v.Type {
	case models.VideoTrailer:
		return 0
	case models.VideoTeaser:
		return 1
	default:
		return 2
	}
}

// SortVideos returns a copy of videos with trailers first, then teasers, keeping API order otherwise.
func SortVideos(videos []models.Video) []models.Video {
	out := make([]models.Video, len(videos))
	copy(out, videos)
	slices.SortStableFunc(out, func(a, b models.Video) int {
		return cmp.Compare(videoRank(a), videoRank(b))
	})
	return out
}

// BestVideo returns the first playable video after sorting, if any.
func BestVideo(videos []models.Video) (models.Video, bool) {
	for _, v := range SortVideos(videos) {
		if v.URL() != "" {
			return v, true
		}
	}
	return models.Video{}, false
}

// Search queries /search/movie.
func (s *TMDBService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return &models.MoviePage{Page: 1, Results: []models.Movie{}}, nil
	}

	params := s.pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")

	var result models.MoviePage
	if err := s.doRequest(ctx, "search/movie", params, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []models.Movie{}
	}
	return &result, nil
}

// Keywords queries /search/keyword.
func (s *TMDBService) Keywords(ctx context.Context, query string) ([]models.Keyword, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return []models.Keyword{}, nil
	}

	params := url.Values{"query": {query}, "page": {"1"}}

	var response struct {
		Results []models.Keyword `json:"results"`
	}
	if err := s.doRequest(ctx, "search/keyword", params, &response); err != nil {
		return nil, err
	}
	if response.Results == nil {
		return []models.Keyword{}, nil
	}
	return response.Results, nil
}

// Featured returns popular movies with a backdrop, for the rotating banner.
func (s *TMDBService) Featured(ctx context.Context) ([]models.Movie, error) {
	var result models.MoviePage
	if err := s.doRequest(ctx, "movie/popular", url.Values{"language": {s.language}}, &result); err != nil {
		return nil, err
	}

	featured := make([]models.Movie, 0, len(result.Results))
	for _, m := range result.Results {
		if m.BackdropPath != "" {
			featured = append(featured, m)
		}
	}
	return featured, nil
}

// IssueToken requests a new request token from /authentication/token/new.
func (s *TMDBService) IssueToken(ctx context.Context) (string, error) {
	var response struct {
		Success      bool   `json:"success"`
		RequestToken string `json:"request_token"`
	}
	if err := s.doRequest(ctx, "authentication/token/new", nil, &response); err != nil {
		return "", err
	}
	if response.RequestToken == "" {
		return "", fmt.Errorf("%w: empty request_token", shared.ErrAPIRequest)
	}

	s.logger.Debug("request token issued")
	return response.RequestToken, nil
}
