package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
)

// FeaturedInterval is how long each featured movie stays in the banner.
const FeaturedInterval = 30 * time.Second

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	DetailsView
	WatchlistView
)

// SessionStore is the part of the session store the TUI reads.
type SessionStore interface {
	Current() (*models.Session, bool)
	OnChange(fn func(*models.Session)) func()
}

// WatchlistStore is the part of the watchlist store the TUI edits.
type WatchlistStore interface {
	All() []models.WatchlistItem
	Add(item models.WatchlistItem) (bool, error)
	Remove(id int) (bool, error)
	Contains(id int) bool
	OnChange(fn func([]models.WatchlistItem)) func()
}

// Opts configures a [Model].
type Opts struct {
	Catalogue services.Catalogue
	Sessions  SessionStore
	Watchlist WatchlistStore
	Logger    *log.Logger
	// OpenURL opens trailer links; defaults to [shared.OpenBrowser].
	OpenURL func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	prev       ViewState
	catalogue  services.Catalogue
	sessions   SessionStore
	watchlist  WatchlistStore
	logger     *log.Logger
	openURL    func(string) error
	session    *models.Session
	categories []services.Category
	category   int
	featured   []models.Movie
	spotlight  int
	width      int
	height     int
	movieList  list.Model
	watchList  list.Model
	details    *models.MovieDetails
	trailer    *models.Video
	status     string
	events     chan Msg
	unsubs     []func()
	err        error
	help       help.Model
	keys       keyMap
}

// New creates a TUI model for the signed-in user.
//
// Fails with [shared.ErrNotAuthenticated] when no session exists.
func New(ctx context.Context, opts Opts) (*Model, error) {
	if opts.Sessions == nil || opts.Watchlist == nil {
		return nil, fmt.Errorf("%w: session and watchlist stores are required", shared.ErrInvalidArgument)
	}
	if opts.Catalogue == nil {
		return nil, shared.ErrServiceUnavailable
	}
	sess, ok := opts.Sessions.Current()
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	m := &Model{
		ctx:        ctx,
		view:       BrowseView,
		catalogue:  opts.Catalogue,
		sessions:   opts.Sessions,
		watchlist:  opts.Watchlist,
		logger:     opts.Logger,
		openURL:    opts.OpenURL,
		session:    sess,
		categories: services.Categories(),
		events:     make(chan Msg, 16),
		help:       help.New(),
		keys:       newKeyMap(),
	}

	m.movieList = newList(m.categories[0].Label, nil)
	m.watchList = newList("Watch Later", watchlistItems(m.watchlist.All()))

	m.unsubs = append(m.unsubs,
		m.watchlist.OnChange(func(items []models.WatchlistItem) { m.emit(watchlistChangedMsg(items)) }),
		m.sessions.OnChange(func(sess *models.Session) { m.emit(sessionChangedMsg(sess)) }),
	)
	return m, nil
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// emit forwards a store notification without blocking the store.
func (m *Model) emit(msg Msg) {
	select {
	case m.events <- msg:
	default:
		m.logger.Warn("dropping store notification", "kind", msg.kind)
	}
}

// Close releases the store subscriptions.
func (m *Model) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Err returns the error that ended the program, if any.
func (m *Model) Err() error { return m.err }

// Init fetches the banner and the first category, and starts listening for store changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchFeatured(),
		m.fetchMovies(m.currentCategory().Name),
		m.waitForEvent(),
		m.tick(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case DetailsView:
			return m.handleDetailsKeys(msg)
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgFeaturedFetched:
		data := msg.data.(featuredPayload)
		if data.err != nil {
			m.logger.Warn("featured movies unavailable", "error", data.err)
			return m, nil
		}
		m.featured = data.movies
		m.spotlight = 0
		return m, nil

	case MsgMoviesFetched:
		data := msg.data.(moviesPayload)
		if data.category != m.currentCategory().Name {
			return m, nil
		}
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not load %s: %v", m.currentCategory().Label, data.err))
			return m, nil
		}
		m.status = ""
		cmd := m.movieList.SetItems(movieItems(data.page.Results, m.watchlist.Contains))
		m.movieList.ResetSelected()
		return m, cmd

	case MsgDetailsFetched:
		data := msg.data.(detailsPayload)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not load movie: %v", data.err))
			return m, nil
		}
		m.status = ""
		m.details = data.details
		m.trailer = data.trailer
		if m.view != DetailsView {
			m.prev = m.view
		}
		m.view = DetailsView
		return m, nil

	case MsgWatchlistChanged:
		items := msg.data.([]models.WatchlistItem)
		saved := make(map[int]bool, len(items))
		for _, it := range items {
			saved[it.ID] = true
		}
		cmds := []tea.Cmd{m.watchList.SetItems(watchlistItems(items)), m.waitForEvent()}
		current := m.movieList.Items()
		refreshed := make([]list.Item, len(current))
		for i, it := range current {
			mi := it.(movieItem)
			mi.saved = saved[mi.movie.ID]
			refreshed[i] = mi
		}
		cmds = append(cmds, m.movieList.SetItems(refreshed))
		return m, tea.Batch(cmds...)

	case MsgSessionChanged:
		sess, _ := msg.data.(*models.Session)
		if sess == nil {
			m.err = shared.ErrNotAuthenticated
			return m, tea.Quit
		}
		m.session = sess
		return m, m.waitForEvent()

	case MsgFeaturedTick:
		if len(m.featured) > 0 {
			m.spotlight = (m.spotlight + 1) % len(m.featured)
		}
		return m, m.tick()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case DetailsView:
		return m.renderDetails()
	case WatchlistView:
		return m.renderWatchlist()
	default:
		return ""
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.movieList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		return m, m.switchCategory(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.switchCategory(-1)
	case key.Matches(msg, m.keys.watchlist):
		m.view = WatchlistView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if mv, ok := m.selectedMovie(); ok {
			return m, m.fetchDetails(mv.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		if mv, ok := m.selectedMovie(); ok {
			m.add(models.Snapshot(mv))
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if mv, ok := m.selectedMovie(); ok {
			m.remove(mv.ID, mv.Title)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.prev
		m.details = nil
		m.trailer = nil
		m.status = ""
	case key.Matches(msg, m.keys.watchlist):
		m.view = WatchlistView
	case key.Matches(msg, m.keys.add):
		if m.details != nil {
			m.add(models.Snapshot(m.details.Movie))
		}
	case key.Matches(msg, m.keys.remove):
		if m.details != nil {
			m.remove(m.details.ID, m.details.Title)
		}
	case key.Matches(msg, m.keys.trailer):
		m.openTrailer()
	}
	return m, nil
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.watchList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = BrowseView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.watchList.SelectedItem().(watchlistItem); ok {
			return m, m.fetchDetails(it.item.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if it, ok := m.watchList.SelectedItem().(watchlistItem); ok {
			m.remove(it.item.ID, it.item.Title)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrowseView:
		m.movieList, cmd = m.movieList.Update(msg)
	case WatchlistView:
		m.watchList, cmd = m.watchList.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize() {
	w := max(m.width-4, 0)
	m.movieList.SetSize(w, max(m.height-12, 0))
	m.watchList.SetSize(w, max(m.height-4, 0))
	m.help.Width = w
}

func (m *Model) currentCategory() services.Category {
	return m.categories[m.category]
}

func (m *Model) switchCategory(step int) tea.Cmd {
	n := len(m.categories)
	m.category = ((m.category+step)%n + n) % n
	cat := m.currentCategory()
	m.movieList.Title = cat.Label
	m.status = ""
	return m.fetchMovies(cat.Name)
}

func (m *Model) selectedMovie() (models.Movie, bool) {
	it, ok := m.movieList.SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return it.movie, true
}

func (m *Model) add(item models.WatchlistItem) {
	added, err := m.watchlist.Add(item)
	switch {
	case err != nil:
		m.status = styles.err.Render(fmt.Sprintf("Could not save %s: %v", item.Title, err))
	case added:
		m.status = styles.ok.Render(fmt.Sprintf("✓ %s added to your watchlist", item.Title))
	default:
		m.status = styles.warn.Render(fmt.Sprintf("%s is already in your watchlist", item.Title))
	}
}

func (m *Model) remove(id int, title string) {
	removed, err := m.watchlist.Remove(id)
	switch {
	case err != nil:
		m.status = styles.err.Render(fmt.Sprintf("Could not remove %s: %v", title, err))
	case removed:
		m.status = styles.ok.Render(fmt.Sprintf("✓ %s removed from your watchlist", title))
	default:
		m.status = styles.warn.Render(fmt.Sprintf("%s is not in your watchlist", title))
	}
}

func (m *Model) openTrailer() {
	if m.trailer == nil {
		m.status = styles.warn.Render("No trailer available")
		return
	}
	if err := m.openURL(m.trailer.URL()); err != nil {
		m.status = styles.err.Render(fmt.Sprintf("Could not open trailer: %v", err))
		return
	}
	m.status = styles.ok.Render("Opening " + m.trailer.URL())
}

func (m *Model) fetchFeatured() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.catalogue.Featured(m.ctx)
		return featuredFetchedMsg(movies, err)
	}
}

func (m *Model) fetchMovies(category string) tea.Cmd {
	return func() tea.Msg {
		page, err := m.catalogue.Movies(m.ctx, category, 1)
		return moviesFetchedMsg(category, page, err)
	}
}

// fetchDetails loads a movie and its best trailer. A videos failure only hides the trailer.
func (m *Model) fetchDetails(id int) tea.Cmd {
	return func() tea.Msg {
		details, err := m.catalogue.Movie(m.ctx, id)
		if err != nil {
			return detailsFetchedMsg(nil, nil, err)
		}

		videos, err := m.catalogue.Videos(m.ctx, id)
		if err != nil {
			m.logger.Warn("videos unavailable", "movie_id", id, "error", err)
			return detailsFetchedMsg(details, nil, nil)
		}
		if best, ok := services.BestVideo(videos); ok {
			return detailsFetchedMsg(details, &best, nil)
		}
		return detailsFetchedMsg(details, nil, nil)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(FeaturedInterval, func(time.Time) tea.Msg { return featuredTickMsg() })
}

func (m *Model) renderBanner() string {
	if len(m.featured) == 0 {
		return styles.banner.Render(styles.help.Render("Loading featured movies..."))
	}
	mv := m.featured[m.spotlight%len(m.featured)]
	heading := styles.ok.Render("Featured") + " " +
		styles.help.Render(fmt.Sprintf("%d/%d", m.spotlight%len(m.featured)+1, len(m.featured)))
	title := mv.Title
	if year := shared.ReleaseYear(mv.ReleaseDate); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	body := fmt.Sprintf("%s\n%s  %s\n%s",
		heading,
		styles.heading.Render(title),
		styles.rating(mv.VoteAverage, shared.FormatRating(mv.VoteAverage)),
		shared.Truncate(mv.Overview, max(m.width-8, 40)),
	)
	return styles.banner.Render(body)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(m.categories))
	for i, c := range m.categories {
		if i == m.category {
			tabs[i] = styles.active.Render(c.Label)
		} else {
			tabs[i] = styles.tab.Render(c.Label)
		}
	}
	return strings.Join(tabs, "")
}

func (m *Model) renderBrowse() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.next, m.keys.add, m.keys.watchlist, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	user := styles.help.Render("Signed in as " + m.session.Name)
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s  %s", m.renderBanner(), m.renderTabs(), m.movieList.View(), m.status, helpView, user)
}

func (m *Model) renderDetails() string {
	if m.details == nil {
		return styles.help.Render("Loading...")
	}
	d := m.details

	title := d.Title
	if year := shared.ReleaseYear(d.ReleaseDate); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	if d.Tagline != "" {
		b.WriteString(styles.help.Render(d.Tagline) + "\n\n")
	}
	fmt.Fprintf(&b, "%s • %s", styles.rating(d.VoteAverage, shared.FormatRating(d.VoteAverage)), shared.FormatRuntime(d.Runtime))
	if genres := d.GenreNames(); len(genres) > 0 {
		fmt.Fprintf(&b, " • %s", strings.Join(genres, ", "))
	}
	b.WriteString("\n\n")
	if d.Overview != "" {
		b.WriteString(d.Overview + "\n\n")
	}

	if m.trailer != nil {
		fmt.Fprintf(&b, "Trailer: %s (%s)\n", m.trailer.Name, m.trailer.URL())
	} else {
		b.WriteString(styles.help.Render("No trailer available") + "\n")
	}
	if m.watchlist.Contains(d.ID) {
		b.WriteString(styles.ok.Render("★ In your watchlist") + "\n")
	}

	helpKeys := []key.Binding{m.keys.add, m.keys.remove, m.keys.trailer, m.keys.back, m.keys.quit}
	fmt.Fprintf(&b, "\n%s\n%s", m.status, m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderWatchlist() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.remove, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	if len(m.watchList.Items()) == 0 {
		empty := styles.help.Render("Your watchlist is empty. Press esc and use a to add movies.")
		return fmt.Sprintf("%s\n\n%s\n\n%s", styles.title.Render("Watch Later"), empty, helpView)
	}
	return fmt.Sprintf("%s\n%s\n%s", m.watchList.View(), m.status, helpView)
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return m.Err()
}
