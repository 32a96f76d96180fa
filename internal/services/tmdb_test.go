package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
	tu "github.com/desertthunder/cinewave/internal/testing"
)

// newTestService starts a TMDB stand-in and returns a client pointed at it.
func newTestService(t *testing.T, handler http.HandlerFunc) *TMDBService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewTMDBService(TMDBOpts{APIKey: "test-token", BaseURL: server.URL, Language: "fr-FR"})
	if err != nil {
		t.Fatalf("NewTMDBService failed: %v", err)
	}
	return srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestNewTMDBService(t *testing.T) {
	t.Run("Missing Key", func(t *testing.T) {
		for _, key := range []string{"", "   ", shared.PlaceholderAPIKey} {
			if _, err := NewTMDBService(TMDBOpts{APIKey: key}); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("key %q: expected ErrMissingCredentials, got %v", key, err)
			}
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		srv, err := NewTMDBService(TMDBOpts{APIKey: "k"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.baseURL != DefaultBaseURL {
			t.Errorf("expected default base URL, got %s", srv.baseURL)
		}
		if srv.Language() != DefaultLanguage {
			t.Errorf("expected default language, got %s", srv.Language())
		}
		if srv.Name() != "TMDB" {
			t.Errorf("unexpected name %s", srv.Name())
		}
	})

	t.Run("From Config", func(t *testing.T) {
		cfg := shared.TMDBConfig{APIKey: "k", BaseURL: "http://example.com/3/", Language: "en-US"}
		srv, err := NewTMDBServiceFromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.baseURL != "http://example.com/3" {
			t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
		}
	})

	t.Run("Custom Transport", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial refused"))}
		srv, err := NewTMDBService(TMDBOpts{APIKey: "k", HTTPClient: client})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = srv.Featured(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestMovies(t *testing.T) {
	tests := []struct {
		category string
		path     string
		params   map[string]string
	}{
		{"popular", "/discover/movie", map[string]string{"sort_by": "popularity.desc", "include_adult": "false", "include_video": "false"}},
		{"trending", "/trending/movie/week", nil},
		{"now-playing", "/movie/now_playing", nil},
		{"action", "/discover/movie", map[string]string{"with_genres": "28"}},
		{"comedy", "/discover/movie", map[string]string{"with_genres": "35"}},
		{"drama", "/discover/movie", map[string]string{"with_genres": "18"}},
		{"horror", "/discover/movie", map[string]string{"with_genres": "27"}},
		{"science-fiction", "/discover/movie", map[string]string{"with_genres": "878"}},
		{"westerns", "/discover/movie", map[string]string{"sort_by": "popularity.desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path {
					t.Errorf("expected path %s, got %s", tt.path, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
					t.Errorf("expected bearer auth, got %q", got)
				}
				q := r.URL.Query()
				if q.Get("language") != "fr-FR" || q.Get("page") != "2" {
					t.Errorf("missing language/page: %s", r.URL.RawQuery)
				}
				for k, v := range tt.params {
					if q.Get(k) != v {
						t.Errorf("expected %s=%s, got %q", k, v, q.Get(k))
					}
				}
				writeJSON(t, w, models.MoviePage{Page: 2, Results: []models.Movie{{ID: 1, Title: "A"}}, TotalPages: 3})
			})

			page, err := srv.Movies(context.Background(), tt.category, 2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if page.Page != 2 || len(page.Results) != 1 || page.Results[0].Title != "A" {
				t.Errorf("unexpected page: %+v", page)
			}
		})
	}

	t.Run("Page Floor", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") != "1" {
				t.Errorf("expected page=1, got %s", r.URL.Query().Get("page"))
			}
			writeJSON(t, w, map[string]any{"page": 1})
		})
		page, err := srv.Movies(context.Background(), "popular", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Results == nil {
			t.Error("expected empty, non-nil results")
		}
	})

	t.Run("Error Status", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := srv.Movies(context.Background(), "popular", 1)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected StatusError 401, got %v", err)
		}
	})
}

func TestMovie(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/movie/550" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(t, w, map[string]any{
				"id": 550, "title": "Fight Club", "runtime": 139,
				"genres": []map[string]any{{"id": 18, "name": "Drame"}},
			})
		})

		d, err := srv.Movie(context.Background(), 550)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.ID != 550 || d.Title != "Fight Club" || d.Runtime != 139 {
			t.Errorf("unexpected details: %+v", d)
		}
		if !slices.Equal(d.GenreNames(), []string{"Drame"}) {
			t.Errorf("unexpected genres: %v", d.GenreNames())
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := srv.Movie(context.Background(), 1)
		if !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		})
		_, err := srv.Movie(context.Background(), 1)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestVideos(t *testing.T) {
	srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/7/videos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("include_video_language"); got != "en,fr" {
			t.Errorf("expected include_video_language=en,fr, got %q", got)
		}
		writeJSON(t, w, map[string]any{"results": []models.Video{
			{Key: "f1", Type: "Featurette", Site: "YouTube"},
			{Key: "t1", Type: "Teaser", Site: "YouTube"},
			{Key: "tr1", Type: "Trailer", Site: "YouTube"},
			{Key: "c1", Type: "Clip", Site: "YouTube"},
			{Key: "tr2", Type: "Trailer", Site: "Vimeo"},
		}})
	})

	videos, err := srv.Videos(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var keys []string
	for _, v := range videos {
		keys = append(keys, v.Key)
	}
	want := []string{"tr1", "tr2", "t1", "f1", "c1"}
	if !slices.Equal(keys, want) {
		t.Errorf("expected order %v, got %v", want, keys)
	}
}

func TestBestVideo(t *testing.T) {
	t.Run("Skips Unknown Sites", func(t *testing.T) {
		v, ok := BestVideo([]models.Video{
			{Key: "x", Type: "Trailer", Site: "Dailymotion"},
			{Key: "y", Type: "Teaser", Site: "YouTube"},
		})
		if !ok || v.Key != "y" {
			t.Errorf("expected teaser y, got %+v (%v)", v, ok)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, ok := BestVideo(nil); ok {
			t.Error("expected no video")
		}
	})

	t.Run("Sort Does Not Mutate Input", func(t *testing.T) {
		in := []models.Video{{Key: "a", Type: "Clip"}, {Key: "b", Type: "Trailer"}}
		_ = SortVideos(in)
		if in[0].Key != "a" {
			t.Error("SortVideos mutated its input")
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("Short Query Skips Request", func(t *testing.T) {
		calls := 0
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

		for _, q := range []string{"", "a", "  b  ", "é"} {
			page, err := srv.Search(context.Background(), q, 1)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Results) != 0 {
				t.Errorf("expected no results for %q", q)
			}
			kw, err := srv.Keywords(context.Background(), q)
			if err != nil || len(kw) != 0 {
				t.Errorf("expected no keywords for %q, got %v %v", q, kw, err)
			}
		}
		if calls != 0 {
			t.Errorf("expected no requests, got %d", calls)
		}
	})

	t.Run("Query", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if r.URL.Path != "/search/movie" || q.Get("query") != "dune" || q.Get("include_adult") != "false" {
				t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
			}
			writeJSON(t, w, models.MoviePage{Page: 1, Results: []models.Movie{{ID: 438631, Title: "Dune"}}})
		})

		page, err := srv.Search(context.Background(), " dune ", 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Results) != 1 || page.Results[0].ID != 438631 {
			t.Errorf("unexpected results: %+v", page.Results)
		}
	})

	t.Run("Keywords", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/keyword" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(t, w, map[string]any{"results": []models.Keyword{{ID: 1, Name: "space"}}})
		})

		kw, err := srv.Keywords(context.Background(), "spa")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(kw) != 1 || kw[0].Name != "space" {
			t.Errorf("unexpected keywords: %+v", kw)
		}
	})
}

func TestFeatured(t *testing.T) {
	srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, models.MoviePage{Results: []models.Movie{
			{ID: 1, BackdropPath: "/a.jpg"},
			{ID: 2},
			{ID: 3, BackdropPath: "/c.jpg"},
		}})
	})

	movies, err := srv.Featured(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(movies) != 2 || movies[0].ID != 1 || movies[1].ID != 3 {
		t.Errorf("expected movies with backdrops only, got %+v", movies)
	}
}

func TestIssueToken(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/authentication/token/new" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(t, w, map[string]any{"success": true, "request_token": "rt-1"})
		})

		token, err := srv.IssueToken(context.Background())
		if err != nil || token != "rt-1" {
			t.Errorf("expected rt-1, got %q (%v)", token, err)
		}
	})

	t.Run("Empty Token", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"success": false})
		})
		if _, err := srv.IssueToken(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		if _, err := srv.IssueToken(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestCategories(t *testing.T) {
	names := CategoryNames()
	if len(names) != 8 || names[0] != CategoryPopular {
		t.Errorf("unexpected categories: %v", names)
	}

	c := Categories()
	c[0].Name = "changed"
	if Categories()[0].Name != CategoryPopular {
		t.Error("Categories exposed internal state")
	}

	if cat, ok := LookupCategory("nope"); ok || cat.Name != CategoryPopular {
		t.Errorf("expected popular fallback, got %v %v", cat.Name, ok)
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name                   string
		base, path, kind, size string
		want                   string
	}{
		{"empty path", "", "", ImagePoster, SizeLarge, ""},
		{"default base poster medium", "", "/p.jpg", ImagePoster, SizeMedium, "https://image.tmdb.org/t/p/w342/p.jpg"},
		{"backdrop large", "https://img.test/t/p/", "/b.jpg", ImageBackdrop, SizeLarge, "https://img.test/t/p/w1280/b.jpg"},
		{"profile large", "", "/f.jpg", ImageProfile, SizeLarge, "https://image.tmdb.org/t/p/h632/f.jpg"},
		{"profile small", "", "/f.jpg", ImageProfile, SizeSmall, "https://image.tmdb.org/t/p/w45/f.jpg"},
		{"unknown kind", "", "/x.jpg", "banner", SizeSmall, "https://image.tmdb.org/t/p/w185/x.jpg"},
		{"unknown size", "", "/x.jpg", ImageBackdrop, "huge", "https://image.tmdb.org/t/p/w780/x.jpg"},
		{"original", "", "/x.jpg", ImagePoster, SizeOriginal, "https://image.tmdb.org/t/p/original/x.jpg"},
		{"missing slash", "", "x.jpg", ImagePoster, SizeSmall, "https://image.tmdb.org/t/p/w185/x.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageURL(tt.base, tt.path, tt.kind, tt.size); got != tt.want {
				t.Errorf("ImageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
