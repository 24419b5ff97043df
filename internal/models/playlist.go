package models

import (
	"fmt"
	"strings"
	"time"
)

// User identifies a Spotify user (playlist owner or track adder).
type User struct {
	DisplayName *string `json:"display_name"`
	ID          string  `json:"id"`
}

// NameOrID returns the display name when present, the id otherwise.
func (u User) NameOrID() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.ID
}

// Artist is a simplified artist reference.
type Artist struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

// Album is a simplified album reference.
type Album struct {
	Artists []Artist `json:"artists"`
	ID      *string  `json:"id"`
	Name    string   `json:"name"`
}

// Track is a simplified track reference.
type Track struct {
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
	ID      *string  `json:"id"`
	Name    string   `json:"name"`
}

// Episode is a simplified podcast episode reference.
type Episode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayableItem is the closed union of things a playlist can contain.
// Exactly one of Track or Episode is set.
type PlayableItem struct {
	Track   *Track   `json:"track,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
}

// key returns a stable identity string for the playable item.
func (p PlayableItem) key() string {
	switch {
	case p.Track != nil:
		if p.Track.ID != nil {
			return "track:" + *p.Track.ID
		}
		return "track:" + p.Track.Name
	case p.Episode != nil:
		return "episode:" + p.Episode.ID
	default:
		return ""
	}
}

// PlaylistItem is one entry of a playlist with its add-time metadata.
type PlaylistItem struct {
	AddedAt *time.Time    `json:"added_at"`
	AddedBy *User         `json:"added_by"`
	Item    *PlayableItem `json:"item"`
}

// Key returns a deterministic identity for structural comparison, built
// from the playable item identity, the adding user and the add timestamp.
// Items with equal keys are considered the same playlist entry regardless
// of position.
func (i PlaylistItem) Key() string {
	var b strings.Builder
	if i.Item != nil {
		b.WriteString(i.Item.key())
	}
	b.WriteByte('|')
	if i.AddedBy != nil {
		b.WriteString(i.AddedBy.ID)
	}
	b.WriteByte('|')
	if i.AddedAt != nil {
		b.WriteString(i.AddedAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// PlaylistItems is an ordered collection of playlist entries. Membership
// comparison is structural and order-independent via [PlaylistItem.Key].
type PlaylistItems []PlaylistItem

// KeySet returns the item set indexed by structural key.
func (items PlaylistItems) KeySet() map[string]PlaylistItem {
	set := make(map[string]PlaylistItem, len(items))
	for _, item := range items {
		set[item.Key()] = item
	}
	return set
}

// Difference returns the items present in the receiver but absent from
// other, preserving the receiver's order.
func (items PlaylistItems) Difference(other PlaylistItems) PlaylistItems {
	otherSet := other.KeySet()
	var diff PlaylistItems
	for _, item := range items {
		if _, ok := otherSet[item.Key()]; !ok {
			diff = append(diff, item)
		}
	}
	return diff
}

// Playlist is the full observed state of a remote playlist: the snapshot
// the reconciler diffs replayed local state against.
type Playlist struct {
	Collaborative bool          `json:"collaborative"`
	Description   *string       `json:"description"`
	Followers     int           `json:"followers"`
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Owner         User          `json:"owner"`
	Public        *bool         `json:"public"`
	Tracks        PlaylistItems `json:"tracks"`
	SnapshotID    string        `json:"snapshot_id"`
}

// NewPlaylist returns an empty playlist snapshot, the zero value an
// aggregate state starts from before its creation event.
func NewPlaylist() Playlist {
	return Playlist{Tracks: PlaylistItems{}}
}

// PlaylistSummary is the shallow listing form of a playlist: enough to
// detect renames and to gate a full fetch on the revision marker.
type PlaylistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      User   `json:"owner"`
	SnapshotID string `json:"snapshot_id"`
}

// DescriptionEqual compares two optional descriptions, treating nil and
// empty as distinct values the way the remote API reports them.
func DescriptionEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// String implements fmt.Stringer for log output.
func (p Playlist) String() string {
	return fmt.Sprintf("%s ( %s )", p.Name, p.ID)
}
