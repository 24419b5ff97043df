package events

import (
	"fmt"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// FetchFunc returns the full playlist snapshot including its items. The
// reconciler invokes it at most once per cycle, and for an already-known
// playlist only when the revision marker indicates the content changed.
type FetchFunc func() (*models.Playlist, error)

// Reconcile compares the replayed state of one playlist against its
// freshly observed summary and returns the commands that bring the state
// up to date, in deterministic order: rename, description, additions,
// removals.
//
// A never-seen playlist (generation 0) yields a single [CreatePlaylist]
// carrying the fetched snapshot and nothing else. Reconcile never emits
// [DeletePlaylist]; detecting disappeared playlists is a presence check
// over the whole known-origin set, not a per-playlist diff.
//
// Calling Reconcile with a state/summary pair for different playlists is a
// caller bug and fails with [shared.ErrCommandFailure].
func Reconcile(state State, observed models.PlaylistSummary, fetch FetchFunc) ([]Command, error) {
	if state.Generation == 0 {
		full, err := fetch()
		if err != nil {
			return nil, err
		}
		return []Command{CreatePlaylist{ID: full.ID, Playlist: *full}}, nil
	}

	if state.Playlist.ID != observed.ID {
		return nil, fmt.Errorf("%w: reconciling state for %q against snapshot of %q",
			shared.ErrCommandFailure, state.Playlist.ID, observed.ID)
	}

	var cmds []Command

	if state.Playlist.Name != observed.Name {
		cmds = append(cmds, UpdateName{ID: observed.ID, Name: observed.Name})
	}

	// Unchanged revision marker means the remote content is identical;
	// skip the full item fetch entirely.
	if state.Playlist.SnapshotID == observed.SnapshotID {
		return cmds, nil
	}

	full, err := fetch()
	if err != nil {
		return nil, err
	}

	if !models.DescriptionEqual(state.Playlist.Description, full.Description) {
		cmds = append(cmds, UpdateDescription{ID: full.ID, Description: full.Description})
	}

	added := full.Tracks.Difference(state.Playlist.Tracks)
	removed := state.Playlist.Tracks.Difference(full.Tracks)

	if len(added) > 0 {
		cmds = append(cmds, AddTracks{ID: full.ID, SnapshotID: full.SnapshotID, Items: added})
	}
	if len(removed) > 0 {
		cmds = append(cmds, RemoveTracks{ID: full.ID, SnapshotID: full.SnapshotID, Items: removed})
	}

	return cmds, nil
}
