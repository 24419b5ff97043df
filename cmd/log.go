package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spt/internal/events"
	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// Log renders the event log, optionally filtered by playlist and time window.
func (r *Runner) Log(ctx context.Context, cmd *cli.Command) error {
	store, err := r.loadStore(r.storePath(cmd.String("store")))
	if err != nil {
		return err
	}

	var envelopes []events.Envelope
	if playlistID := cmd.String("playlist"); playlistID != "" {
		envelopes = store.EnvelopesByOrigin(playlistID)
	} else {
		envelopes = store.All()
	}

	envelopes, err = filterWindow(envelopes, cmd.String("since"), cmd.String("until"))
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		data, err := formatter.EventLogToJSON(envelopes)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	case cmd.Bool("csv"):
		data, err := formatter.EventLogToCSV(envelopes)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	default:
		return r.writePlain("%s", formatter.EventLogToText(envelopes))
	}
}

// filterWindow keeps the envelopes whose timestamps fall inside the
// inclusive [since, until] window. Empty bounds are open.
func filterWindow(envelopes []events.Envelope, since, until string) ([]events.Envelope, error) {
	start, err := parseBound(since)
	if err != nil {
		return nil, fmt.Errorf("%w: --since: %v", shared.ErrInvalidArgument, err)
	}
	end, err := parseBound(until)
	if err != nil {
		return nil, fmt.Errorf("%w: --until: %v", shared.ErrInvalidArgument, err)
	}

	if start.IsZero() && end.IsZero() {
		return envelopes, nil
	}

	var filtered []events.Envelope
	for _, env := range envelopes {
		if !start.IsZero() && env.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && env.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, env)
	}
	return filtered, nil
}

func parseBound(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Runs prints recent reconciliation run history.
func (r *Runner) Runs(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if playlistID := cmd.String("playlist"); playlistID != "" {
		criteria["playlist_id"] = playlistID
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}

	return r.writePlain("%s", formatter.RenderRuns(runs))
}
