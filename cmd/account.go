package main

import (
	"context"
	"fmt"

	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/shared"
	"github.com/urfave/cli/v3"
)

// AccountSignup creates an account and logs it in.
func (r *Runner) AccountSignup(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	password := cmd.StringArg("password")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	if err := manager.Signup(ctx, username, password); err != nil {
		return err
	}

	r.writePlain("✓ Account created, logged in as %s\n", username)
	return nil
}

// AccountLogin logs in with username and password.
func (r *Runner) AccountLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	password := cmd.StringArg("password")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	if err := manager.Login(ctx, username, password); err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", username)
	return nil
}

// AccountLogout clears the persisted session.
func (r *Runner) AccountLogout(ctx context.Context, cmd *cli.Command) error {
	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	if err := manager.Logout(); err != nil {
		return err
	}

	r.writePlain("✓ Logged out\n")
	return nil
}

// AccountStatus prints the current session identity.
func (r *Runner) AccountStatus(ctx context.Context, cmd *cli.Command) error {
	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	identity, ok := manager.Current()
	if !ok {
		r.writePlain("Not logged in\n")
		return nil
	}

	return r.writeJSON(map[string]any{
		"username":  identity.Username,
		"favorites": identity.Favorites,
	}, cmd.Bool("pretty"))
}

// FavToggle adds or removes a favorite for the logged-in user.
func (r *Runner) FavToggle(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	if _, ok := manager.Current(); !ok {
		return shared.ErrNotAuthenticated
	}

	fields := map[string]any{}
	if name := cmd.String("name"); name != "" {
		fields["name"] = name
	}
	if address := cmd.String("address"); address != "" {
		fields["address"] = address
	}

	entry, err := models.NewFavorite(id, fields)
	if err != nil {
		return err
	}

	applied, err := manager.ToggleFavorite(ctx, entry)
	if err != nil {
		return err
	}

	switch {
	case !applied:
		r.writePlain("Nothing saved: the account record no longer exists\n")
	case manager.IsFavorite(id):
		r.writePlain("✓ Added %s to favorites\n", id)
	default:
		r.writePlain("✓ Removed %s from favorites\n", id)
	}
	return nil
}

// FavList prints the current user's favorites.
func (r *Runner) FavList(ctx context.Context, cmd *cli.Command) error {
	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	identity, ok := manager.Current()
	if !ok {
		return shared.ErrNotAuthenticated
	}

	return r.writeJSON(identity.Favorites, cmd.Bool("pretty"))
}

// FavCheck reports whether an id is in the current user's favorites.
func (r *Runner) FavCheck(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	if manager.IsFavorite(id) {
		r.writePlain("yes\n")
	} else {
		r.writePlain("no\n")
	}
	return nil
}

// UsersList dumps the whole stored collection.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	api, cleanup, err := r.newCollectionAPI(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	collection, err := api.FetchAll(ctx)
	if err != nil {
		return err
	}

	return r.writeJSON(collection.Users, cmd.Bool("pretty"))
}
