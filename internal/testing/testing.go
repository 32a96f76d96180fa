// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
)

// MockCatalogue is a test double for [services.Catalogue].
//
// Listings come from Pages keyed by category; ids missing from Details return [shared.ErrMovieNotFound].
type MockCatalogue struct {
	mu sync.Mutex

	Pages       map[string][]models.Movie
	Details     map[int]models.MovieDetails
	VideosByID  map[int][]models.Video
	FeaturedSet []models.Movie
	KeywordSet  []models.Keyword
	// Err, when set, is returned by every call.
	Err error
	// VideoErrs fails Videos for specific ids.
	VideoErrs map[int]error

	Calls []string
}

func (m *MockCatalogue) record(call string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()
}

// CallCount returns the number of calls whose name starts with prefix.
func (m *MockCatalogue) CallCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *MockCatalogue) Movies(ctx context.Context, category string, page int) (*models.MoviePage, error) {
	m.record("Movies:" + category)
	if m.Err != nil {
		return nil, m.Err
	}
	results := m.Pages[category]
	if results == nil {
		results = []models.Movie{}
	}
	return &models.MoviePage{Page: page, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (m *MockCatalogue) Movie(ctx context.Context, id int) (*models.MovieDetails, error) {
	m.record("Movie")
	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.Details[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, id)
	}
	return &d, nil
}

func (m *MockCatalogue) Videos(ctx context.Context, id int) ([]models.Video, error) {
	m.record("Videos")
	if m.Err != nil {
		return nil, m.Err
	}
	if err, ok := m.VideoErrs[id]; ok {
		return nil, err
	}
	return m.VideosByID[id], nil
}

func (m *MockCatalogue) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	m.record("Search:" + query)
	if m.Err != nil {
		return nil, m.Err
	}
	var results []models.Movie
	for _, movies := range m.Pages {
		for _, mv := range movies {
			if strings.Contains(strings.ToLower(mv.Title), strings.ToLower(query)) {
				results = append(results, mv)
			}
		}
	}
	if results == nil {
		results = []models.Movie{}
	}
	return &models.MoviePage{Page: page, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (m *MockCatalogue) Keywords(ctx context.Context, query string) ([]models.Keyword, error) {
	m.record("Keywords")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.KeywordSet, nil
}

func (m *MockCatalogue) Featured(ctx context.Context) ([]models.Movie, error) {
	m.record("Featured")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.FeaturedSet, nil
}

// MockIssuer is a token issuer returning Token or Err.
type MockIssuer struct {
	Token string
	Err   error
}

func (m *MockIssuer) IssueToken(ctx context.Context) (string, error) {
	return m.Token, m.Err
}

// Storage mirrors storage.Storage without importing it.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// FailingStorage wraps a Storage and fails the selected operations.
type FailingStorage struct {
	Storage
	FailGet    bool
	FailSet    bool
	FailDelete bool
}

// ErrStorageFailure is returned by [FailingStorage].
var ErrStorageFailure = errors.New("storage failure injected")

func (f *FailingStorage) Get(key string) (string, bool, error) {
	if f.FailGet {
		return "", false, ErrStorageFailure
	}
	return f.Storage.Get(key)
}

func (f *FailingStorage) Set(key, value string) error {
	if f.FailSet {
		return ErrStorageFailure
	}
	return f.Storage.Set(key, value)
}

func (f *FailingStorage) Delete(key string) error {
	if f.FailDelete {
		return ErrStorageFailure
	}
	return f.Storage.Delete(key)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}
