package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with the provisioned account and stores a fresh session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	email := cmd.String("email")
	if email == "" {
		email = r.config.Account.Email
	}
	password := cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password", shared.ErrMissingArgument)
	}

	r.logger.Info("signing in", "email", email)

	sess, err := r.sessions.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}

	r.logger.Info("authentication successful", "user", sess.Name)
	return r.writePlain("✓ Signed in as %s <%s>\n", sess.Name, sess.Email)
}

// AuthLogout ends the current session. Logging out twice is fine.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	sess, signedIn := r.sessions.Current()
	if err := r.sessions.End(); err != nil {
		return err
	}

	if !signedIn {
		return r.writePlain("Not signed in\n")
	}
	r.logger.Info("session ended", "user", sess.Name)
	return r.writePlain("✓ Signed out %s\n", sess.Name)
}

// AuthStatus reports the current session without revealing its token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	sess, ok := r.sessions.Current()
	if cmd.Bool("json") {
		status := map[string]any{"authenticated": ok}
		if ok {
			status["id"] = sess.ID
			status["email"] = sess.Email
			status["name"] = sess.Name
			status["loginTime"] = sess.LoginTime
		}
		return r.writeJSON(status, true)
	}

	if !ok {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	r.writePlain("User: %s <%s>\n", sess.Name, sess.Email)
	r.writePlain("Since: %s\n", sess.LoginTime.Local().Format("2006-01-02 15:04"))
	return nil
}
