package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync reconciles tracked users' playlists, appends the resulting events
// and saves the log.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if r.provider == nil {
		return fmt.Errorf("%w: configure Spotify credentials first (see: spt setup config)", shared.ErrMissingCredentials)
	}

	if err := r.provider.Authenticate(ctx); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	runs := repositories.NewRunRepository(db)

	storePath := r.storePath(cmd.String("store"))
	store, err := r.loadStore(storePath)
	if err != nil {
		return err
	}
	r.logger.Info("event log loaded", "path", storePath, "events", store.Len())

	engine := tasks.NewTrackerEngine(r.provider, store, users, runs, r.logger)

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if cmd.Bool("verbose") {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := r.runSync(ctx, cmd.String("user"), engine, progress, users)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if err := store.Save(storePath); err != nil {
		return fmt.Errorf("failed to save event log: %w", err)
	}
	r.logger.Info("event log saved", "path", storePath, "events", store.Len())

	return r.writePlain("%s", formatter.RenderSyncResult(result))
}

// runSync dispatches to a single-user or full sync based on the flag.
func (r *Runner) runSync(ctx context.Context, spotifyID string, engine *tasks.TrackerEngine, progress chan tasks.ProgressUpdate, users *repositories.UserRepository) (*tasks.SyncResult, error) {
	if spotifyID == "" {
		return engine.SyncAll(ctx, progress)
	}

	user, err := users.GetBySpotifyID(spotifyID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	userResult, err := engine.SyncUser(ctx, progress, user)
	if err != nil {
		return nil, err
	}

	return &tasks.SyncResult{
		Users:          []tasks.UserResult{*userResult},
		EventsAppended: userResult.EventsAppended,
		FailedCount:    userResult.FailedCount,
		StartedAt:      started,
		FinishedAt:     time.Now(),
	}, nil
}
