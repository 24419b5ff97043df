package events

import (
	"github.com/desertthunder/spt/internal/models"
)

// Command is an intent to change a playlist aggregate, validated by
// [HandleCommand] before it becomes an event. Every command except
// [CreatePlaylist] must target the aggregate it is applied to.
type Command interface {
	// TargetID returns the id of the playlist the command targets.
	TargetID() string
}

// CreatePlaylist introduces a new aggregate with its first full snapshot.
type CreatePlaylist struct {
	ID       string
	Playlist models.Playlist
}

func (c CreatePlaylist) TargetID() string { return c.ID }

// UpdateName renames the playlist.
type UpdateName struct {
	ID   string
	Name string
}

func (c UpdateName) TargetID() string { return c.ID }

// UpdateDescription replaces the playlist description.
type UpdateDescription struct {
	ID          string
	Description *string
}

func (c UpdateDescription) TargetID() string { return c.ID }

// AddTracks adds the given items, advancing the revision marker.
type AddTracks struct {
	ID         string
	SnapshotID string
	Items      models.PlaylistItems
}

func (c AddTracks) TargetID() string { return c.ID }

// RemoveTracks removes the given items, advancing the revision marker.
type RemoveTracks struct {
	ID         string
	SnapshotID string
	Items      models.PlaylistItems
}

func (c RemoveTracks) TargetID() string { return c.ID }

// DeletePlaylist marks the playlist as deleted.
type DeletePlaylist struct {
	ID string
}

func (c DeletePlaylist) TargetID() string { return c.ID }
