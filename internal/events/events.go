package events

import (
	"github.com/desertthunder/spt/internal/models"
)

// SchemaVersion is the envelope schema version written with every event.
const SchemaVersion = "1.0"

// Event type names, the tag values of the persisted payload union.
const (
	TypePlaylistCreated    = "playlist.created"
	TypeNameUpdated        = "playlist.name_updated"
	TypeDescriptionUpdated = "playlist.description_updated"
	TypeTracksAdded        = "playlist.tracks_added"
	TypeTracksRemoved      = "playlist.tracks_removed"
	TypePlaylistDeleted    = "playlist.deleted"
)

// Event is a domain event describing an observed change to one playlist.
// The vocabulary is closed: the six implementations in this file are the
// only events the store will ever persist or decode.
type Event interface {
	// OriginID returns the id of the playlist this event belongs to.
	OriginID() string

	// EventType returns the payload tag for this event.
	EventType() string
}

// PlaylistCreated records the first observation of a playlist, carrying
// the full snapshot verbatim.
type PlaylistCreated struct {
	ID       string          `json:"id"`
	Playlist models.Playlist `json:"playlist"`
}

func (e PlaylistCreated) OriginID() string  { return e.ID }
func (e PlaylistCreated) EventType() string { return TypePlaylistCreated }

// NameUpdated records a rename.
type NameUpdated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e NameUpdated) OriginID() string  { return e.ID }
func (e NameUpdated) EventType() string { return TypeNameUpdated }

// DescriptionUpdated records a description change. A nil description is a
// legitimate value: the remote service reports missing descriptions as null.
type DescriptionUpdated struct {
	ID          string  `json:"id"`
	Description *string `json:"description"`
}

func (e DescriptionUpdated) OriginID() string  { return e.ID }
func (e DescriptionUpdated) EventType() string { return TypeDescriptionUpdated }

// TracksAdded records items that appeared in the playlist, together with
// the revision marker of the snapshot they were observed in.
type TracksAdded struct {
	ID         string               `json:"id"`
	SnapshotID string               `json:"snapshot_id"`
	Items      models.PlaylistItems `json:"items"`
}

func (e TracksAdded) OriginID() string  { return e.ID }
func (e TracksAdded) EventType() string { return TypeTracksAdded }

// TracksRemoved records items that disappeared from the playlist.
type TracksRemoved struct {
	ID         string               `json:"id"`
	SnapshotID string               `json:"snapshot_id"`
	Items      models.PlaylistItems `json:"items"`
}

func (e TracksRemoved) OriginID() string  { return e.ID }
func (e TracksRemoved) EventType() string { return TypeTracksRemoved }

// PlaylistDeleted is the terminal tombstone for a playlist.
type PlaylistDeleted struct {
	ID string `json:"id"`
}

func (e PlaylistDeleted) OriginID() string  { return e.ID }
func (e PlaylistDeleted) EventType() string { return TypePlaylistDeleted }
