package events

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

func seedStore(t *testing.T) *Store {
	t.Helper()

	store := New()
	evts := []Event{
		PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix", item("a", fixedTime))},
		NameUpdated{ID: "p1", Name: "Mix 2"},
		PlaylistCreated{ID: "p2", Playlist: playlist("p2", "Other")},
		TracksAdded{ID: "p1", SnapshotID: "rev-2", Items: models.PlaylistItems{item("b", fixedTime)}},
	}
	for _, evt := range evts {
		if _, err := store.Append(evt); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}
	return store
}

func TestStoreAppend(t *testing.T) {
	t.Run("assigns identity metadata", func(t *testing.T) {
		store := New()

		env, err := store.Append(PlaylistCreated{ID: "p1", Playlist: playlist("p1", "Mix")})
		if err != nil {
			t.Fatalf("failed to append: %v", err)
		}

		if env.EventID == "" {
			t.Error("event id should be assigned at append")
		}
		if env.OriginID != "p1" {
			t.Errorf("expected origin p1, got %q", env.OriginID)
		}
		if env.SchemaVersion != SchemaVersion {
			t.Errorf("expected schema version %q, got %q", SchemaVersion, env.SchemaVersion)
		}
		if env.Payload.Type != TypePlaylistCreated {
			t.Errorf("expected payload type %q, got %q", TypePlaylistCreated, env.Payload.Type)
		}
	})

	t.Run("event ids are unique", func(t *testing.T) {
		store := New()
		seen := map[string]bool{}
		for range 50 {
			env, err := store.Append(NameUpdated{ID: "p1", Name: "x"})
			if err != nil {
				t.Fatalf("failed to append: %v", err)
			}
			if seen[env.EventID] {
				t.Fatalf("duplicate event id %s", env.EventID)
			}
			seen[env.EventID] = true
		}
	})

	t.Run("timestamps never decrease within a session", func(t *testing.T) {
		store := seedStore(t)
		envelopes := store.All()
		for i := 1; i < len(envelopes); i++ {
			if envelopes[i].Timestamp.Before(envelopes[i-1].Timestamp) {
				t.Errorf("timestamp at %d precedes its predecessor", i)
			}
		}
	})
}

func TestStorePersistence(t *testing.T) {
	t.Run("round trip preserves envelopes", func(t *testing.T) {
		store := seedStore(t)
		path := filepath.Join(t.TempDir(), "data.json")

		if err := store.Save(path); err != nil {
			t.Fatalf("failed to save store: %v", err)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load store: %v", err)
		}

		if !reflect.DeepEqual(store.All(), loaded.All()) {
			t.Error("loaded envelopes differ from saved envelopes")
		}
	})

	t.Run("load save cycle is byte identical", func(t *testing.T) {
		dir := t.TempDir()
		first := filepath.Join(dir, "first.json")
		second := filepath.Join(dir, "second.json")

		if err := seedStore(t).Save(first); err != nil {
			t.Fatalf("failed to save store: %v", err)
		}
		loaded, err := Load(first)
		if err != nil {
			t.Fatalf("failed to load store: %v", err)
		}
		if err := loaded.Save(second); err != nil {
			t.Fatalf("failed to re-save store: %v", err)
		}

		a, _ := os.ReadFile(first)
		b, _ := os.ReadFile(second)
		if string(a) != string(b) {
			t.Error("re-saving an unchanged log should be byte identical")
		}
	})

	t.Run("missing file is an error for Load", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("missing file degrades to empty for LoadOrCreate", func(t *testing.T) {
		store, err := LoadOrCreate(filepath.Join(t.TempDir(), "missing.json"))
		if err != nil {
			t.Fatalf("first run should start empty: %v", err)
		}
		if store.Len() != 0 {
			t.Errorf("expected empty store, got %d events", store.Len())
		}
	})

	t.Run("malformed record is a parse error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("{not json\n"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		if _, err := Load(path); !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("unknown payload type surfaces on decode not load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		record := `{"schema_version":"1.0","origin_id":"p1","event_id":"x","timestamp":"2023-06-01T12:00:00Z","payload":{"type":"playlist.exploded","data":{}}}` + "\n"
		if err := os.WriteFile(path, []byte(record), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		store, err := Load(path)
		if err != nil {
			t.Fatalf("loading should tolerate unknown payload types: %v", err)
		}
		if _, err := store.ByOrigin("p1"); !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected parse error on decode, got %v", err)
		}
	})
}

func TestStoreQueries(t *testing.T) {
	t.Run("by origin filters and preserves append order", func(t *testing.T) {
		store := seedStore(t)

		evts, err := store.ByOrigin("p1")
		if err != nil {
			t.Fatalf("failed to query by origin: %v", err)
		}

		if len(evts) != 3 {
			t.Fatalf("expected 3 events for p1, got %d", len(evts))
		}
		types := []string{evts[0].EventType(), evts[1].EventType(), evts[2].EventType()}
		want := []string{TypePlaylistCreated, TypeNameUpdated, TypeTracksAdded}
		if !reflect.DeepEqual(types, want) {
			t.Errorf("expected event order %v, got %v", want, types)
		}
	})

	t.Run("range query windows on timestamp", func(t *testing.T) {
		store := seedStore(t)

		all, err := store.ByOriginRange("p1", time.Time{}, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("failed to query range: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected full window to return 3 events, got %d", len(all))
		}

		none, err := store.ByOriginRange("p1", time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
		if err != nil {
			t.Fatalf("failed to query range: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected empty window to return nothing, got %d events", len(none))
		}
	})

	t.Run("origins lists distinct ids in first appearance order", func(t *testing.T) {
		store := seedStore(t)
		origins := store.Origins()
		if !reflect.DeepEqual(origins, []string{"p1", "p2"}) {
			t.Errorf("expected [p1 p2], got %v", origins)
		}
	})
}
