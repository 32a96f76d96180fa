// package server contains middleware & handlers for the cinewave local JSON API
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// SessionStore is the session API consumed by the handlers.
type SessionStore interface {
	Authenticate(ctx context.Context, identifier, secret string) (*models.Session, error)
	Current() (*models.Session, bool)
	End() error
	OnChange(fn func(*models.Session)) (cancel func())
}

// WatchlistStore is the watchlist API consumed by the handlers.
type WatchlistStore interface {
	Add(item models.WatchlistItem) (bool, error)
	Remove(id int) (bool, error)
	Contains(id int) bool
	All() []models.WatchlistItem
	OnChange(fn func([]models.WatchlistItem)) (cancel func())
}

// Opts contains the dependencies of a [Server].
type Opts struct {
	Addr      string
	Sessions  SessionStore
	Watchlist WatchlistStore
	Catalogue services.Catalogue
	Logger    *log.Logger
	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// Server serves the local JSON API.
type Server struct {
	opts   Opts
	router *BasicRouter
	logger *log.Logger
}

// New creates a [Server] and registers every route.
func New(opts Opts) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{opts: opts, router: NewBasicRouter(), logger: opts.Logger}
	s.router.Use(RequestID(), RecoverPanic(s.logger), RequestLogger(s.logger))
	s.routes()
	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on opts.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", s.opts.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down api")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}
	return nil
}

func (s *Server) routes() {
	r := s.router
	auth := RequireSession(s.opts.Sessions)

	r.Handle(http.MethodGet, "/health", http.HandlerFunc(s.health))

	r.Handle(http.MethodPost, "/api/session", http.HandlerFunc(s.login))
	r.Handle(http.MethodGet, "/api/session", http.HandlerFunc(s.currentSession))
	r.Handle(http.MethodDelete, "/api/session", http.HandlerFunc(s.logout))

	r.Handle(http.MethodGet, "/api/watchlist", auth(http.HandlerFunc(s.listWatchlist)))
	r.Handle(http.MethodPost, "/api/watchlist", auth(http.HandlerFunc(s.addToWatchlist)))
	r.Handle(http.MethodDelete, "/api/watchlist/{id}", auth(http.HandlerFunc(s.removeFromWatchlist)))

	r.Handle(http.MethodGet, "/api/categories", auth(http.HandlerFunc(s.listCategories)))
	r.Handle(http.MethodGet, "/api/featured", auth(http.HandlerFunc(s.featured)))
	r.Handle(http.MethodGet, "/api/movies", auth(http.HandlerFunc(s.listMovies)))
	r.Handle(http.MethodGet, "/api/movies/{id}", auth(http.HandlerFunc(s.movie)))
	r.Handle(http.MethodGet, "/api/movies/{id}/videos", auth(http.HandlerFunc(s.videos)))
	r.Handle(http.MethodGet, "/api/search", auth(http.HandlerFunc(s.search)))

	r.Handler(NewEventsHandler(s.opts.Sessions, s.opts.Watchlist, s.logger))
}
