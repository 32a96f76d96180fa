package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/session"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/storage"
	mock "github.com/desertthunder/cinewave/internal/testing"
	"github.com/desertthunder/cinewave/internal/watchlist"
)

type harness struct {
	model     *Model
	sessions  *session.Store
	watchlist *watchlist.Store
	catalogue *mock.MockCatalogue
	opened    []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := storage.NewMemory()
	sessions := session.NewStore(session.StoreOpts{
		Storage: st,
		Account: session.Account{ID: 1, Email: "demo@cinewave.local", Name: "Demo", Secret: "changeme"},
		Issuer:  &mock.MockIssuer{Token: "rt"},
	})
	if _, err := sessions.Authenticate(context.Background(), "demo@cinewave.local", "changeme"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	h := &harness{
		sessions:  sessions,
		watchlist: watchlist.NewStore(st, nil),
		catalogue: &mock.MockCatalogue{
			Pages: map[string][]models.Movie{
				"popular":  {{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15", VoteAverage: 8.4}, {ID: 13, Title: "Forrest Gump"}},
				"trending": {{ID: 27205, Title: "Inception"}},
			},
			Details: map[int]models.MovieDetails{
				550: {Movie: models.Movie{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15"}, Tagline: "Mischief. Mayhem. Soap.", Runtime: 139},
				13:  {Movie: models.Movie{ID: 13, Title: "Forrest Gump"}},
			},
			VideosByID: map[int][]models.Video{
				550: {
					{Key: "tz", Name: "Teaser", Type: models.VideoTeaser, Site: "YouTube"},
					{Key: "tr", Name: "Official Trailer", Type: models.VideoTrailer, Site: "YouTube"},
				},
			},
			FeaturedSet: []models.Movie{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}},
		},
	}

	m, err := New(context.Background(), Opts{
		Catalogue: h.catalogue,
		Sessions:  sessions,
		Watchlist: h.watchlist,
		OpenURL: func(u string) error {
			h.opened = append(h.opened, u)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(m.Close)
	h.model = m

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.run(m.fetchMovies("popular"))
	h.run(m.fetchFeatured())
	return h
}

// run executes cmd synchronously and feeds its message back into the model.
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		h.model.Update(msg)
	}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = h.model.Update(msg)
	}
	return cmd
}

// drain applies pending store notifications.
func (h *harness) drain() {
	for {
		select {
		case msg := <-h.model.events:
			h.model.Update(msg)
		default:
			return
		}
	}
}

func TestNew(t *testing.T) {
	st := storage.NewMemory()
	sessions := session.NewStore(session.StoreOpts{Storage: st, Account: session.Account{Email: "a", Secret: "b"}})
	_, err := New(context.Background(), Opts{
		Catalogue: &mock.MockCatalogue{},
		Sessions:  sessions,
		Watchlist: watchlist.NewStore(st, nil),
	})
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}

	_, err = New(context.Background(), Opts{Sessions: sessions, Watchlist: watchlist.NewStore(st, nil)})
	if !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestBrowse(t *testing.T) {
	h := newHarness(t)

	t.Run("Initial Category", func(t *testing.T) {
		if got := len(h.model.movieList.Items()); got != 2 {
			t.Fatalf("expected 2 movies, got %d", got)
		}
		view := h.model.View()
		for _, want := range []string{"Popular", "Fight Club", "Featured", "One", "Signed in as Demo"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q", want)
			}
		}
	})

	t.Run("Next Category", func(t *testing.T) {
		h.run(h.press("tab"))
		if h.model.currentCategory().Name != "trending" {
			t.Fatalf("expected trending, got %s", h.model.currentCategory().Name)
		}
		items := h.model.movieList.Items()
		if len(items) != 1 || items[0].(movieItem).movie.Title != "Inception" {
			t.Errorf("unexpected items %+v", items)
		}
	})

	t.Run("Wrap Around", func(t *testing.T) {
		h.run(h.press("shift+tab"))
		h.run(h.press("shift+tab"))
		if h.model.currentCategory().Name != "science-fiction" {
			t.Errorf("expected last category, got %s", h.model.currentCategory().Name)
		}
	})

	t.Run("Stale Response Ignored", func(t *testing.T) {
		h.model.Update(moviesFetchedMsg("popular", &models.MoviePage{Results: []models.Movie{{ID: 9, Title: "Stale"}}}, nil))
		for _, it := range h.model.movieList.Items() {
			if it.(movieItem).movie.Title == "Stale" {
				t.Error("response for another category was applied")
			}
		}
	})
}

func TestWatchlistKeys(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	h.drain()
	if !h.watchlist.Contains(550) {
		t.Fatal("a did not add the selected movie")
	}
	if !h.model.movieList.Items()[0].(movieItem).saved {
		t.Error("list not refreshed after add")
	}
	if !strings.Contains(h.model.status, "added") {
		t.Errorf("unexpected status %q", h.model.status)
	}

	h.press("a")
	if h.watchlist.Len() != 1 || !strings.Contains(h.model.status, "already") {
		t.Errorf("duplicate add: len=%d status=%q", h.watchlist.Len(), h.model.status)
	}

	h.press("w")
	h.drain()
	if h.model.view != WatchlistView {
		t.Fatalf("expected watchlist view, got %v", h.model.view)
	}
	if got := len(h.model.watchList.Items()); got != 1 {
		t.Fatalf("expected 1 watchlist item, got %d", got)
	}

	h.press("d")
	h.drain()
	if h.watchlist.Contains(550) || len(h.model.watchList.Items()) != 0 {
		t.Error("d did not remove the selected item")
	}
	if !strings.Contains(h.model.View(), "empty") {
		t.Error("expected empty watchlist message")
	}

	h.press("esc")
	if h.model.view != BrowseView {
		t.Errorf("esc should return to browse, got %v", h.model.view)
	}
}

func TestExternalWatchlistChange(t *testing.T) {
	h := newHarness(t)

	if _, err := h.watchlist.Add(models.WatchlistItem{ID: 13, Title: "Forrest Gump"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	h.drain()

	if got := len(h.model.watchList.Items()); got != 1 {
		t.Errorf("expected watchlist view to follow the store, got %d items", got)
	}
	if !h.model.movieList.Items()[1].(movieItem).saved {
		t.Error("expected browse list to mark the saved movie")
	}
}

func TestDetails(t *testing.T) {
	h := newHarness(t)

	h.run(h.press("enter"))
	if h.model.view != DetailsView || h.model.details == nil {
		t.Fatalf("expected details view, got %v", h.model.view)
	}
	if h.model.trailer == nil || h.model.trailer.Key != "tr" {
		t.Fatalf("expected the trailer over the teaser, got %+v", h.model.trailer)
	}

	view := h.model.View()
	for _, want := range []string{"Fight Club (1999)", "Mischief", "2h 19m", "youtube.com/watch?v=tr"} {
		if !strings.Contains(view, want) {
			t.Errorf("details view missing %q", want)
		}
	}

	h.press("o")
	if len(h.opened) != 1 || h.opened[0] != "https://www.youtube.com/watch?v=tr" {
		t.Errorf("unexpected opened urls %v", h.opened)
	}

	h.press("a")
	if !h.watchlist.Contains(550) {
		t.Error("a in details should add the movie")
	}

	h.press("esc")
	if h.model.view != BrowseView || h.model.details != nil {
		t.Errorf("esc should return to browse, got %v", h.model.view)
	}
}

func TestDetailsWithoutTrailer(t *testing.T) {
	h := newHarness(t)
	h.catalogue.VideoErrs = map[int]error{13: shared.ErrAPIRequest}

	h.run(h.model.fetchDetails(13))
	if h.model.view != DetailsView || h.model.trailer != nil {
		t.Fatalf("expected details without trailer, got view %v trailer %+v", h.model.view, h.model.trailer)
	}
	if !strings.Contains(h.model.View(), "No trailer available") {
		t.Error("expected missing trailer notice")
	}

	h.press("o")
	if len(h.opened) != 0 {
		t.Error("nothing should be opened without a trailer")
	}
}

func TestDetailsNotFound(t *testing.T) {
	h := newHarness(t)

	h.run(h.model.fetchDetails(4242))
	if h.model.view != BrowseView {
		t.Errorf("expected to stay on browse, got %v", h.model.view)
	}
	if !strings.Contains(h.model.status, "Could not load movie") {
		t.Errorf("unexpected status %q", h.model.status)
	}
}

func TestFeaturedRotation(t *testing.T) {
	h := newHarness(t)

	h.model.Update(featuredTickMsg())
	if h.model.spotlight != 1 {
		t.Errorf("expected spotlight 1, got %d", h.model.spotlight)
	}
	h.model.Update(featuredTickMsg())
	if h.model.spotlight != 0 {
		t.Errorf("expected rotation to wrap, got %d", h.model.spotlight)
	}
	if !strings.Contains(h.model.renderBanner(), "One") {
		t.Error("banner should show the first featured movie")
	}
}

func TestSessionEnded(t *testing.T) {
	h := newHarness(t)

	if err := h.sessions.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	h.drain()

	if !errors.Is(h.model.Err(), shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", h.model.Err())
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	cmd := h.press("q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
