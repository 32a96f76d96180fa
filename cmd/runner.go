package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/session"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/storage"
	"github.com/desertthunder/cinewave/internal/tasks"
	"github.com/desertthunder/cinewave/internal/watchlist"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the stores built on it are opened on first use, so setup commands work before a
// config file or database exists.
type Runner struct {
	config       *shared.Config
	configPath   string
	storage      storage.Storage
	closeStorage func() error
	sessions     *session.Store
	watchlist    *watchlist.Store
	catalogue    services.Catalogue
	tmdb         *services.TMDBService
	issuer       session.TokenIssuer
	engine       tasks.Engine
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Storage    storage.Storage
	// Catalogue overrides the TMDB client built from the config.
	Catalogue services.Catalogue
	// Issuer overrides the TMDB token issuer used by `auth login`.
	Issuer     session.TokenIssuer
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		catalogue:  opts.Catalogue,
		issuer:     opts.Issuer,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if r.storage != nil {
		r.closeStorage = func() error { return nil }
	}
	return r
}

// SetLogger replaces the runner's logger, e.g. to keep logs off a TUI screen.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the storage backend.
func (r *Runner) Close() error {
	if r.closeStorage == nil {
		return nil
	}
	err := r.closeStorage()
	r.closeStorage = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, watchlistCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config unless a config was injected.
//
// A missing file means defaults; an unreadable or invalid one is an error.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if cmd.IsSet("config") || r.configPath == "" {
		r.configPath = cmd.String("config")
	}
	if r.config != nil {
		return ctx, nil
	}

	if _, err := os.Stat(r.configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		r.config = shared.DefaultConfig()
		return ctx, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// open builds the storage backend and the session and watchlist stores.
func (r *Runner) open() error {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if r.sessions != nil {
		return nil
	}

	if r.storage == nil {
		st, closeFn, err := storage.Open(r.config, shared.WithLogger(r.logger, "component", "storage"))
		if err != nil {
			return err
		}
		r.storage, r.closeStorage = st, closeFn
		r.logger.Debug("storage opened", "backend", r.config.Storage.Backend)
	}

	issuer := r.issuer
	if issuer == nil {
		if tmdb, err := r.tmdbService(); err == nil {
			issuer = tmdb
		}
	}

	r.sessions = session.NewStore(session.StoreOpts{
		Storage: r.storage,
		Account: session.AccountFromConfig(r.config.Account),
		Issuer:  issuer,
		Logger:  shared.WithLogger(r.logger, "component", "session"),
	})
	r.watchlist = watchlist.NewStore(r.storage, shared.WithLogger(r.logger, "component", "watchlist"))
	return nil
}

// tmdbService returns the configured TMDB client.
func (r *Runner) tmdbService() (*services.TMDBService, error) {
	if r.tmdb != nil {
		return r.tmdb, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	svc, err := services.NewTMDBService(services.TMDBOpts{
		APIKey:     r.config.TMDB.APIKey,
		BaseURL:    r.config.TMDB.BaseURL,
		Language:   r.config.TMDB.Language,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "tmdb"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (run 'cinewave setup tmdb')", err)
	}
	r.tmdb = svc
	return svc, nil
}

// catalogueService returns the injected catalogue or the TMDB client.
func (r *Runner) catalogueService() (services.Catalogue, error) {
	if r.catalogue != nil {
		return r.catalogue, nil
	}
	svc, err := r.tmdbService()
	if err != nil {
		return nil, err
	}
	r.catalogue = svc
	return svc, nil
}

func (r *Runner) taskEngine() (tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	cat, err := r.catalogueService()
	if err != nil {
		return nil, err
	}
	r.engine = tasks.NewCatalogueEngine(cat)
	return r.engine, nil
}

// requireSession opens the stores and fails unless someone is signed in.
func (r *Runner) requireSession() error {
	if err := r.open(); err != nil {
		return err
	}
	if !r.sessions.IsAuthenticated() {
		return fmt.Errorf("%w: run 'cinewave auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) imageBase() string {
	if r.config != nil && r.config.TMDB.ImageBaseURL != "" {
		return r.config.TMDB.ImageBaseURL
	}
	return services.DefaultImageBaseURL
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
