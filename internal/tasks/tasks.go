package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spt/internal/events"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
)

// PlaylistResult represents the outcome of reconciling a single playlist.
type PlaylistResult struct {
	PlaylistID     string // Origin id of the playlist
	PlaylistName   string // Observed name at sync time
	Created        bool   // True when this cycle first observed the playlist
	Skipped        bool   // True when the aggregate is tombstoned
	EventsAppended int    // Events appended this cycle
	Generation     uint64 // Aggregate generation after the cycle
	Error          error  // Failure, nil on success
}

// UserResult aggregates the playlist outcomes of one tracked user.
type UserResult struct {
	User           *models.TrackedUser
	Playlists      []PlaylistResult
	EventsAppended int // Sum over all playlists
	FailedCount    int // Playlists that ended in error
}

// SyncResult contains all data from a full reconciliation cycle.
type SyncResult struct {
	Users          []UserResult
	EventsAppended int
	FailedCount    int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// UserRegistry lists the tracked users a sync covers.
type UserRegistry interface {
	List(criteria map[string]any) ([]*models.TrackedUser, error)
}

// RunRecorder persists one history row per reconciled playlist.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type RunRecorder interface {
	Create(run *models.SyncRun) error
	Update(run *models.SyncRun) error
}

// TrackerEngine reconciles tracked users' playlists against the event log.
// Contains dependencies on the provider, the event store, and the registry.
type TrackerEngine struct {
	provider services.Provider
	store    *events.Store
	users    UserRegistry
	runs     RunRecorder
	logger   *log.Logger
}

// NewTrackerEngine creates a new TrackerEngine with the provided
// collaborators. The run recorder may be nil to skip history.
func NewTrackerEngine(provider services.Provider, store *events.Store, users UserRegistry, runs RunRecorder, logger *log.Logger) *TrackerEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TrackerEngine{
		provider: provider,
		store:    store,
		users:    users,
		runs:     runs,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TrackerEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// SyncAll reconciles every tracked user in registry order.
func (e *TrackerEngine) SyncAll(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("%w: provider not initialized", shared.ErrServiceUnavailable)
	}

	tracked, err := e.users.List(map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked users: %w", err)
	}

	result := &SyncResult{StartedAt: time.Now()}
	e.sendProgress(progress, listUsersUpdate(len(tracked)))

	for _, user := range tracked {
		userResult, err := e.SyncUser(ctx, progress, user)
		if err != nil {
			return nil, err
		}
		result.Users = append(result.Users, *userResult)
		result.EventsAppended += userResult.EventsAppended
		result.FailedCount += userResult.FailedCount
	}

	result.FinishedAt = time.Now()
	return result, nil
}

// SyncUser reconciles every playlist the given user owns. A failing
// playlist is reported and skipped; only listing failures abort the user.
func (e *TrackerEngine) SyncUser(ctx context.Context, progress chan<- ProgressUpdate, user *models.TrackedUser) (*UserResult, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("%w: provider not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, listPlaylistsUpdate(user.NameOrID()))

	summaries, err := e.provider.ListOwnedPlaylists(ctx, user.SpotifyID())
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists for %s: %w", user.NameOrID(), err)
	}

	result := &UserResult{User: user}
	total := len(summaries)

	for n, summary := range summaries {
		e.sendProgress(progress, reconcileUpdate(n+1, total, summary.Name))

		plResult := e.syncPlaylist(ctx, summary)
		e.recordRun(user, plResult)

		if plResult.Error != nil {
			e.logger.Error("playlist sync failed", "playlist", summary.Name, "error", plResult.Error)
			e.sendProgress(progress, failedUpdate(n+1, total, summary.Name, plResult.Error))
			result.FailedCount++
		} else {
			e.sendProgress(progress, appendedUpdate(n+1, total, summary.Name, plResult.EventsAppended))
		}

		result.Playlists = append(result.Playlists, plResult)
		result.EventsAppended += plResult.EventsAppended
	}

	return result, nil
}

// syncPlaylist replays one playlist's history, diffs it against the
// observed summary, and appends whatever events the diff produces.
func (e *TrackerEngine) syncPlaylist(ctx context.Context, summary models.PlaylistSummary) PlaylistResult {
	result := PlaylistResult{PlaylistID: summary.ID, PlaylistName: summary.Name}

	history, err := e.store.ByOrigin(summary.ID)
	if err != nil {
		result.Error = fmt.Errorf("failed to read history: %w", err)
		return result
	}

	state, err := events.ApplyAll(events.NewState(), history)
	if err != nil {
		result.Error = fmt.Errorf("failed to replay history: %w", err)
		return result
	}

	if state.Deleted {
		result.Skipped = true
		result.Generation = state.Generation
		return result
	}

	result.Created = state.Generation == 0

	fetch := func() (*models.Playlist, error) {
		return e.provider.FetchPlaylist(ctx, summary.ID)
	}

	cmds, err := events.Reconcile(state, summary, fetch)
	if err != nil {
		result.Error = err
		return result
	}

	for _, cmd := range cmds {
		envelopes, err := events.Dispatch(state, cmd, e.store)
		if err != nil {
			result.Error = err
			return result
		}

		for _, env := range envelopes {
			evt, err := env.Event()
			if err != nil {
				result.Error = err
				return result
			}
			if state, err = events.Apply(state, evt); err != nil {
				result.Error = err
				return result
			}
			result.EventsAppended++
		}
	}

	result.Generation = state.Generation
	return result
}

// recordRun persists one history row for the playlist outcome. Failures
// are logged and swallowed so history never disrupts a sync.
func (e *TrackerEngine) recordRun(user *models.TrackedUser, result PlaylistResult) {
	if e.runs == nil || result.Skipped {
		return
	}

	run := models.NewSyncRun(0, user.ID(), result.PlaylistID, result.PlaylistName)
	run.SetEventsAppended(result.EventsAppended)
	if result.Error != nil {
		run.SetErrMessage(result.Error.Error())
	}
	run.SetFinishedAt(time.Now())

	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record run", "playlist", result.PlaylistID, "error", err)
	}
}
