// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cinewave/internal/formatter"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Flags hold parse state, so each command gets fresh instances.

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Result page", Value: 1}
}

// setupCommand handles setup operations for configuration, database and credentials.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "tmdb",
				Usage: "Store the TMDB API read access token in the config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "token",
						Usage: "API read access token",
					},
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from the TMDB API reference",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Check the token against TMDB before saving",
						Value: true,
					},
				},
				Action: r.SetupTMDB,
			},
			{
				Name:      "hash",
				Usage:     "Print a bcrypt hash for account.password_hash",
				ArgsUsage: "<password>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "password"},
				},
				Action: r.SetupHash,
			},
		},
	}
}

// authCommand handles the local session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with the provisioned account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Account email (defaults to account.email)",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("CINEWAVE_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "End the current session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalogue browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalogue",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a category",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"k"},
						Usage:   "One of " + strings.Join(services.CategoryNames(), ", "),
						Value:   services.CategoryPopular,
					},
					pageFlag(), jsonFlag(),
				},
				Action: r.MoviesList,
			},
			{
				Name:   "categories",
				Usage:  "List the browsable categories",
				Action: r.MoviesCategories,
			},
			{
				Name:      "show",
				Usage:     "Show a movie's details",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.MoviesShow,
			},
			{
				Name:      "videos",
				Usage:     "List a movie's trailers and teasers",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.MoviesVideos,
			},
			{
				Name:      "search",
				Usage:     "Search movies by title",
				ArgsUsage: "<query>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: []cli.Flag{
					pageFlag(), jsonFlag(),
					&cli.BoolFlag{
						Name:  "keywords",
						Usage: "Show keyword suggestions instead of movies",
					},
				},
				Action: r.MoviesSearch,
			},
			{
				Name:  "browse",
				Usage: "Show the featured movies and the first page of every category",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Movies shown per category", Value: 5},
				},
				Action: r.MoviesBrowse,
			},
			{
				Name:   "featured",
				Usage:  "List the featured movies",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.MoviesFeatured,
			},
			{
				Name:      "open",
				Usage:     "Open a movie's best trailer in the browser",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MoviesOpen,
			},
		},
	}
}

// watchlistCommand handles the watch later list
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Manage the watch later list",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved movies",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.WatchlistList,
			},
			{
				Name:      "add",
				Usage:     "Save a movie",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WatchlistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a saved movie",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WatchlistRemove,
			},
			{
				Name:  "export",
				Usage: "Export the watchlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "One of " + strings.Join(formatter.Formats, ", "),
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (or directory with --posters)",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Markdown only: download posters next to the export",
					},
				},
				Action: r.WatchlistExport,
			},
			{
				Name:  "trailers",
				Usage: "Find the best trailer of every saved movie",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: fmt.Sprintf("Concurrent lookups (max %d)", tasks.MaxWorkers),
						Value: tasks.DefaultWorkers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: tasks.DefaultRateLimit,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format for --output: json, markdown or txt",
						Value:   formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the digest to a file",
					},
				},
				Action: r.WatchlistTrailers,
			},
		},
	}
}

// apiCommand handles direct TMDB API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct TMDB API calls",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Authenticated GET against the TMDB API, prints raw JSON",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand runs the local JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalogue browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where TUI logs go",
				Value: "./tmp/cinewave-tui.log",
			},
		},
		Action: r.TUI,
	}
}
