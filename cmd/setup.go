package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/session"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the built-in config template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)

	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'cinewave setup tmdb --token <read access token>'\n")
	r.writePlain("2. Run 'cinewave setup hash <password>' and set account.password_hash\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenMigrated(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupTMDB stores the API read access token in the config file.
//
// The token comes from --token or is lifted from the Authorization header of a cURL command.
func (r *Runner) SetupTMDB(ctx context.Context, cmd *cli.Command) error {
	token, err := r.tokenFromFlags(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("verify") {
		svc, err := services.NewTMDBService(services.TMDBOpts{
			APIKey:     token,
			BaseURL:    r.config.TMDB.BaseURL,
			Language:   r.config.TMDB.Language,
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
		if err != nil {
			return err
		}
		if _, err := svc.IssueToken(ctx); err != nil {
			return fmt.Errorf("%w: TMDB rejected the token: %v", shared.ErrInvalidCredentials, err)
		}
		r.logger.Info("token verified")
	}

	r.config.TMDB.APIKey = token
	if err := writeConfig(r.configPath, r.config); err != nil {
		return err
	}
	r.tmdb, r.catalogue = nil, nil

	r.logger.Info("TMDB token saved", "path", r.configPath)
	r.writePlain("✓ TMDB token saved to %s\n", r.configPath)
	r.writePlainln("Run 'cinewave auth login' to sign in.")
	return nil
}

func (r *Runner) tokenFromFlags(cmd *cli.Command) (string, error) {
	token := strings.TrimSpace(cmd.String("token"))
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	set := 0
	for _, v := range []string{token, curlCmd, curlFile} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return "", fmt.Errorf("%w: one of --token, --curl or --curl-file must be provided", shared.ErrMissingArgument)
	case set > 1:
		return "", fmt.Errorf("%w: --token, --curl and --curl-file are mutually exclusive", shared.ErrInvalidArgument)
	case token != "":
		return token, nil
	}

	var headers *shared.CurlHeaders
	var err error
	if curlFile != "" {
		headers, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return "", fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		headers, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return "", fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}
	return headers.BearerToken()
}

// writeConfig encodes config as TOML at path.
func writeConfig(path string, config *shared.Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetupHash prints a bcrypt hash of the given password.
func (r *Runner) SetupHash(ctx context.Context, cmd *cli.Command) error {
	password := cmd.StringArg("password")
	if password == "" {
		return fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}

	hash, err := session.HashSecret(password)
	if err != nil {
		return err
	}
	r.writePlain("%s\n", hash)
	return nil
}
