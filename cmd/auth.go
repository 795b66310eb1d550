package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursedeck/internal/catalog"
	"github.com/desertthunder/coursedeck/internal/repositories"
	"github.com/desertthunder/coursedeck/internal/session"
	"github.com/desertthunder/coursedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser OAuth flow and stores the resulting session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	google := config.Credentials.Google
	if google.ClientID == "" || google.ClientSecret == "" {
		return fmt.Errorf("%w: set credentials.google.client_id and client_secret in config", shared.ErrMissingCredentials)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}

	store := repositories.NewSessionRepository(db)
	gateway := r.newGateway()
	spread := config.Spreadsheet

	opts := session.ManagerOpts{
		Config:      config,
		Store:       store,
		Roster:      session.NewRoster(gateway, spread.RosterSheet, spread.RosterRange, r.logger),
		Provisioner: catalog.NewSyncer(gateway, spread.ContentSheet, spread.ContentRange, r.logger),
		Logger:      r.logger,
	}
	if auth, ok := gateway.(session.Authenticator); ok {
		opts.Authenticator = auth
	}

	manager := session.NewManager(opts)

	r.writePlain("→ Opening browser for Google sign-in...\n")
	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	sess, err := manager.SignIn(ctx)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	r.writePlain("✓ Signed in as %s (%s)\n", sess.User().Name, sess.User().Email)
	return nil
}

// AuthLogout discards the active session's stored credential plus the local
// watch and progress state.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openDB()
	if err != nil {
		return err
	}

	store := repositories.NewSessionRepository(db)
	current, err := store.Current()
	if err != nil {
		return err
	}

	manager := session.NewManager(session.ManagerOpts{
		Config:   config,
		Store:    store,
		Watched:  repositories.NewWatchedRepository(db),
		Progress: repositories.NewProgressRepository(db),
		Logger:   r.logger,
	})

	if err := manager.SignOut(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	r.writePlain("✓ Signed out %s\n", current.User().Email)
	return nil
}

// AuthWhoami shows the signed-in user.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	db, err := r.openDB()
	if err != nil {
		return err
	}

	store := repositories.NewSessionRepository(db)
	current, err := store.Current()
	if err != nil {
		return err
	}

	user := current.User()
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("Name:  %s\n", user.Name)
	r.writePlain("Email: %s\n", user.Email)
	if user.Picture != "" {
		r.writePlain("Picture: %s\n", user.Picture)
	}
	r.writePlain("Signed in since: %s\n", current.CreatedAt().Format("2006-01-02 15:04"))

	return nil
}
