package events

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// item builds a playlist entry fixture with a stable structural key.
func item(trackID string, addedAt time.Time) models.PlaylistItem {
	return models.PlaylistItem{
		AddedAt: &addedAt,
		AddedBy: &models.User{ID: "adder"},
		Item:    &models.PlayableItem{Track: &models.Track{ID: &trackID, Name: "Track " + trackID}},
	}
}

func playlist(id, name string, items ...models.PlaylistItem) models.Playlist {
	pl := models.NewPlaylist()
	pl.ID = id
	pl.Name = name
	pl.SnapshotID = "rev-1"
	pl.Tracks = append(models.PlaylistItems{}, items...)
	return pl
}

var fixedTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

func TestApply(t *testing.T) {
	t.Run("created takes snapshot verbatim", func(t *testing.T) {
		pl := playlist("p1", "Mix", item("a", fixedTime))

		state, err := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: pl})
		if err != nil {
			t.Fatalf("failed to apply creation: %v", err)
		}

		if state.Generation != 1 {
			t.Errorf("expected generation 1, got %d", state.Generation)
		}
		if !reflect.DeepEqual(state.Playlist, pl) {
			t.Errorf("expected snapshot taken verbatim, got %+v", state.Playlist)
		}
	})

	t.Run("name update carries every other field over", func(t *testing.T) {
		state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix", item("a", fixedTime))})

		next, err := Apply(state, NameUpdated{ID: "p1", Name: "Mix 2"})
		if err != nil {
			t.Fatalf("failed to apply rename: %v", err)
		}

		if next.Playlist.Name != "Mix 2" {
			t.Errorf("expected name %q, got %q", "Mix 2", next.Playlist.Name)
		}
		if next.Generation != 2 {
			t.Errorf("expected generation 2, got %d", next.Generation)
		}
		if len(next.Playlist.Tracks) != 1 || next.Playlist.SnapshotID != "rev-1" {
			t.Error("rename should not touch tracks or revision marker")
		}
	})

	t.Run("description update accepts nil", func(t *testing.T) {
		desc := "old"
		pl := playlist("p1", "Mix")
		pl.Description = &desc
		state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: pl})

		next, err := Apply(state, DescriptionUpdated{ID: "p1", Description: nil})
		if err != nil {
			t.Fatalf("failed to apply description update: %v", err)
		}
		if next.Playlist.Description != nil {
			t.Errorf("expected nil description, got %q", *next.Playlist.Description)
		}
	})

	t.Run("tracks added advances revision marker", func(t *testing.T) {
		state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix", item("a", fixedTime))})

		next, err := Apply(state, TracksAdded{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{item("b", fixedTime)}})
		if err != nil {
			t.Fatalf("failed to apply track addition: %v", err)
		}

		if len(next.Playlist.Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(next.Playlist.Tracks))
		}
		if next.Playlist.SnapshotID != "rev-2" {
			t.Errorf("expected revision marker rev-2, got %q", next.Playlist.SnapshotID)
		}
	})

	t.Run("tracks removed is structural not positional", func(t *testing.T) {
		a, b, c := item("a", fixedTime), item("b", fixedTime), item("c", fixedTime)
		state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix", a, b, c)})

		next, err := Apply(state, TracksRemoved{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{b}})
		if err != nil {
			t.Fatalf("failed to apply track removal: %v", err)
		}

		if len(next.Playlist.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(next.Playlist.Tracks))
		}
		if next.Playlist.Tracks[0].Key() != a.Key() || next.Playlist.Tracks[1].Key() != c.Key() {
			t.Error("removal should preserve the order of surviving tracks")
		}
	})

	t.Run("apply never mutates its input", func(t *testing.T) {
		state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix", item("a", fixedTime))})
		before := state.Playlist.Name
		beforeTracks := len(state.Playlist.Tracks)

		if _, err := Apply(state, NameUpdated{ID: "p1", Name: "changed"}); err != nil {
			t.Fatalf("failed to apply rename: %v", err)
		}
		if _, err := Apply(state, TracksAdded{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{item("b", fixedTime)}}); err != nil {
			t.Fatalf("failed to apply track addition: %v", err)
		}

		if state.Playlist.Name != before || len(state.Playlist.Tracks) != beforeTracks {
			t.Error("input state was mutated")
		}
	})

	// Deletion semantics: the tombstone transition is explicit, not a gap.
	// A deleted aggregate keeps its last snapshot but accepts no further
	// events.
	t.Run("deleted is a terminal tombstone", func(t *testing.T) {
		state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix")})

		dead, err := Apply(state, PlaylistDeleted{ID: "p1"})
		if err != nil {
			t.Fatalf("failed to apply deletion: %v", err)
		}
		if !dead.Deleted {
			t.Error("expected deleted flag set")
		}
		if dead.Generation != 2 {
			t.Errorf("expected generation 2, got %d", dead.Generation)
		}
		if dead.Playlist.ID != "p1" {
			t.Error("tombstone should retain the last snapshot")
		}

		if _, err := Apply(dead, NameUpdated{ID: "p1", Name: "zombie"}); !errors.Is(err, shared.ErrReplay) {
			t.Errorf("expected replay error after deletion, got %v", err)
		}
	})
}

func TestReplayDeterminism(t *testing.T) {
	evts := []Event{
		PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix", item("a", fixedTime))},
		NameUpdated{ID: "p1", Name: "Mix 2"},
		TracksAdded{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{item("b", fixedTime)}},
		TracksRemoved{ID: "p1", SnapshotID: "rev-3", Items: models.PlaylistItems{item("a", fixedTime)}},
	}

	first, err := ApplyAll(NewState(), evts)
	if err != nil {
		t.Fatalf("failed to replay events: %v", err)
	}
	second, err := ApplyAll(NewState(), evts)
	if err != nil {
		t.Fatalf("failed to replay events: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("replaying the same sequence produced different states:\n%+v\n%+v", first, second)
	}
}

func TestGenerationMonotonicity(t *testing.T) {
	state := NewState()
	if state.Generation != 0 {
		t.Fatalf("empty state should have generation 0, got %d", state.Generation)
	}

	evts := []Event{
		PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix")},
		NameUpdated{ID: "p1", Name: "a"},
		NameUpdated{ID: "p1", Name: "b"},
		NameUpdated{ID: "p1", Name: "c"},
	}

	var err error
	for n, evt := range evts {
		state, err = Apply(state, evt)
		if err != nil {
			t.Fatalf("failed to apply event %d: %v", n, err)
		}
		if state.Generation != uint64(n)+1 {
			t.Errorf("after %d events expected generation %d, got %d", n+1, n+1, state.Generation)
		}
	}
}

func TestHandleCommand(t *testing.T) {
	state, _ := Apply(NewState(), PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix")})

	t.Run("one event per command", func(t *testing.T) {
		cmds := []Command{
			UpdateName{ID: "p1", Name: "Mix 2"},
			UpdateDescription{ID: "p1", Description: nil},
			AddTracks{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{item("a", fixedTime)}},
			RemoveTracks{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{item("a", fixedTime)}},
			DeletePlaylist{ID: "p1"},
		}

		for _, cmd := range cmds {
			evts, err := HandleCommand(state, cmd)
			if err != nil {
				t.Fatalf("command %T failed: %v", cmd, err)
			}
			if len(evts) != 1 {
				t.Errorf("command %T produced %d events, expected 1", cmd, len(evts))
			}
			if evts[0].OriginID() != "p1" {
				t.Errorf("command %T produced event for origin %q", cmd, evts[0].OriginID())
			}
		}
	})

	t.Run("creation works from the empty state", func(t *testing.T) {
		evts, err := HandleCommand(NewState(), CreatePlaylist{ID: "p1", Playlist: playlist("p1", "Mix")})
		if err != nil {
			t.Fatalf("creation failed: %v", err)
		}
		if len(evts) != 1 {
			t.Fatalf("expected 1 event, got %d", len(evts))
		}
	})

	t.Run("mismatched id always rejected", func(t *testing.T) {
		cmds := []Command{
			UpdateName{ID: "other", Name: "x"},
			UpdateDescription{ID: "other"},
			AddTracks{ID: "other", SnapshotID: "rev"},
			RemoveTracks{ID: "other", SnapshotID: "rev"},
			DeletePlaylist{ID: "other"},
		}

		for _, cmd := range cmds {
			if _, err := HandleCommand(state, cmd); !errors.Is(err, shared.ErrCommandFailure) {
				t.Errorf("command %T with mismatched id: expected command failure, got %v", cmd, err)
			}
		}
	})

	t.Run("tombstoned aggregate rejects commands", func(t *testing.T) {
		dead, _ := Apply(state, PlaylistDeleted{ID: "p1"})
		if _, err := HandleCommand(dead, UpdateName{ID: "p1", Name: "x"}); !errors.Is(err, shared.ErrCommandFailure) {
			t.Errorf("expected command failure on deleted aggregate, got %v", err)
		}
	})
}
