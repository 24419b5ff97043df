package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersAdd registers a Spotify identity for tracking.
func (r *Runner) UsersAdd(ctx context.Context, cmd *cli.Command) error {
	displayName := cmd.StringArg("display-name")
	spotifyID := cmd.StringArg("spotify-id")

	if spotifyID == "" {
		return fmt.Errorf("%w: spotify-id", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	user := models.NewTrackedUser(0, spotifyID, displayName)
	if err := repositories.NewUserRepository(db).Create(user); err != nil {
		return fmt.Errorf("failed to track user: %w", err)
	}

	r.logger.Info("user tracked", "spotify_id", spotifyID)
	return r.writePlain("✓ Tracking %s\n", user.NameOrID())
}

// UsersList prints the tracked user registry.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).List(map[string]any{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type userRow struct {
			SpotifyID   string `json:"spotify_id"`
			DisplayName string `json:"display_name,omitempty"`
			Sequence    int    `json:"sequence"`
		}
		rows := make([]userRow, 0, len(users))
		for _, user := range users {
			rows = append(rows, userRow{
				SpotifyID:   user.SpotifyID(),
				DisplayName: user.DisplayName(),
				Sequence:    user.Sequence(),
			})
		}
		return r.writeJSON(rows, true)
	}

	return r.writePlain("%s", formatter.RenderUsers(users))
}

// UsersRemove stops tracking a Spotify identity. The user's events stay
// in the log; they are simply no longer reconciled.
func (r *Runner) UsersRemove(ctx context.Context, cmd *cli.Command) error {
	spotifyID := cmd.StringArg("spotify-id")
	if spotifyID == "" {
		return fmt.Errorf("%w: spotify-id", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewUserRepository(db)
	user, err := repo.GetBySpotifyID(spotifyID)
	if err != nil {
		return err
	}

	if err := repo.Delete(user.ID()); err != nil {
		return err
	}

	r.logger.Info("user untracked", "spotify_id", spotifyID)
	return r.writePlain("✓ Stopped tracking %s\n", user.NameOrID())
}
