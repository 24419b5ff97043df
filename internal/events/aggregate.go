package events

import (
	"fmt"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// State is the replayed condition of one playlist aggregate. Generation
// counts the events folded in: 0 means the playlist has never been
// observed. Deleted marks the terminal tombstone; no further event may be
// folded once it is set.
//
// State is a value. Apply returns a new State and never mutates its input,
// so callers own whatever they hold and may thread states through the
// pipeline freely.
type State struct {
	Playlist   models.Playlist
	Generation uint64
	Deleted    bool
}

// NewState returns the empty pre-creation state.
func NewState() State {
	return State{Playlist: models.NewPlaylist()}
}

// Apply folds one event into the state and returns the successor state
// with the generation advanced by exactly one. It is total over the event
// vocabulary: the only failure is folding anything after the deletion
// tombstone, which wraps [shared.ErrReplay].
func Apply(state State, evt Event) (State, error) {
	if state.Deleted {
		return State{}, fmt.Errorf("%w: %s applied after playlist deletion", shared.ErrReplay, evt.EventType())
	}

	next := state

	switch evt := evt.(type) {
	case PlaylistCreated:
		// The creation snapshot is taken verbatim, discarding whatever the
		// (normally empty) prior state held.
		next.Playlist = evt.Playlist
	case NameUpdated:
		next.Playlist.Name = evt.Name
	case DescriptionUpdated:
		next.Playlist.Description = evt.Description
	case TracksAdded:
		tracks := make(models.PlaylistItems, 0, len(state.Playlist.Tracks)+len(evt.Items))
		tracks = append(tracks, state.Playlist.Tracks...)
		tracks = append(tracks, evt.Items...)
		next.Playlist.Tracks = tracks
		next.Playlist.SnapshotID = evt.SnapshotID
	case TracksRemoved:
		next.Playlist.Tracks = state.Playlist.Tracks.Difference(evt.Items)
		next.Playlist.SnapshotID = evt.SnapshotID
	case PlaylistDeleted:
		// Terminal transition: the snapshot is retained for inspection but
		// the aggregate accepts no further events.
		next.Deleted = true
	default:
		return State{}, fmt.Errorf("%w: unhandled event type %q", shared.ErrReplay, evt.EventType())
	}

	next.Generation = state.Generation + 1
	return next, nil
}

// ApplyAll folds an ordered event sequence into the state, left to right.
// Each stored event must be folded exactly once; replaying the same
// sequence from the same starting state is deterministic.
func ApplyAll(state State, evts []Event) (State, error) {
	var err error
	for _, evt := range evts {
		if state, err = Apply(state, evt); err != nil {
			return State{}, err
		}
	}
	return state, nil
}

// HandleCommand validates a command against the state and returns the
// events it produces: exactly one per command. Every command except
// [CreatePlaylist] must target the aggregate's own id; a mismatch fails
// with [shared.ErrCommandFailure]. HandleCommand has no side effects and
// never touches a store.
func HandleCommand(state State, cmd Command) ([]Event, error) {
	if _, creating := cmd.(CreatePlaylist); !creating {
		if cmd.TargetID() != state.Playlist.ID {
			return nil, fmt.Errorf("%w: mismatched id: command targets %q but state is %q",
				shared.ErrCommandFailure, cmd.TargetID(), state.Playlist.ID)
		}
		// A tombstoned aggregate accepts no commands; emitting an event
		// here would leave an unreplayable record in the log.
		if state.Deleted {
			return nil, fmt.Errorf("%w: playlist %q is deleted", shared.ErrCommandFailure, state.Playlist.ID)
		}
	}

	switch cmd := cmd.(type) {
	case CreatePlaylist:
		return []Event{PlaylistCreated{ID: cmd.ID, Playlist: cmd.Playlist}}, nil
	case UpdateName:
		return []Event{NameUpdated{ID: cmd.ID, Name: cmd.Name}}, nil
	case UpdateDescription:
		return []Event{DescriptionUpdated{ID: cmd.ID, Description: cmd.Description}}, nil
	case AddTracks:
		return []Event{TracksAdded{ID: cmd.ID, SnapshotID: cmd.SnapshotID, Items: cmd.Items}}, nil
	case RemoveTracks:
		return []Event{TracksRemoved{ID: cmd.ID, SnapshotID: cmd.SnapshotID, Items: cmd.Items}}, nil
	case DeletePlaylist:
		return []Event{PlaylistDeleted{ID: cmd.ID}}, nil
	default:
		return nil, fmt.Errorf("%w: unhandled command %T", shared.ErrCommandFailure, cmd)
	}
}
