package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursedeck/internal/repositories"
	"github.com/desertthunder/coursedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// AccountList shows every locally stored account, or with --remote every
// registered user on the roster sheet.
func (r *Runner) AccountList(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	if cmd.Bool("remote") {
		return r.listRosterUsers(ctx, cmd.Bool("json"))
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}

	store := repositories.NewSessionRepository(db)
	sessions, err := store.List(map[string]any{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		users := make([]any, len(sessions))
		for i, s := range sessions {
			users[i] = s.User()
		}
		return r.writeJSON(users, true)
	}

	if len(sessions) == 0 {
		r.writePlain("No stored accounts. Run 'coursedeck auth login' to sign in.\n")
		return nil
	}

	r.writePlainHeader("Stored Accounts")
	for _, s := range sessions {
		user := s.User()
		r.writePlain("%s (%s)\n", user.Email, user.Name)
	}

	return nil
}

// listRosterUsers prints the roster sheet's registered users.
func (r *Runner) listRosterUsers(ctx context.Context, asJSON bool) error {
	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	users, err := ws.roster.Users(ctx)
	if err != nil {
		return r.dropIfRejected(ws.manager, err)
	}

	if asJSON {
		return r.writeJSON(users, true)
	}

	if len(users) == 0 {
		r.writePlain("No registered users on the roster.\n")
		return nil
	}

	r.writePlainHeader("Registered Users")
	for _, user := range users {
		if user.Name != "" {
			r.writePlain("%s (%s)\n", user.Email, user.Name)
		} else {
			r.writePlain("%s\n", user.Email)
		}
	}

	return nil
}

// AccountRemove deletes the stored session(s) for one email.
func (r *Runner) AccountRemove(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	email := cmd.String("email")

	db, err := r.openDB()
	if err != nil {
		return err
	}

	store := repositories.NewSessionRepository(db)
	sessions, err := store.List(map[string]any{"email": email})
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}

	for _, s := range sessions {
		if err := store.Delete(s.ID()); err != nil {
			return err
		}
	}

	r.writePlain("✓ Removed account %s\n", email)
	return nil
}
