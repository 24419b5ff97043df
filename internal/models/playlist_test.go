package models

import (
	"testing"
	"time"
)

var addedAt = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

func trackItem(id string, at time.Time, addedBy string) PlaylistItem {
	return PlaylistItem{
		AddedAt: &at,
		AddedBy: &User{ID: addedBy},
		Item:    &PlayableItem{Track: &Track{ID: &id, Name: "Track " + id}},
	}
}

func TestPlaylistItemKey(t *testing.T) {
	t.Run("equal fields produce equal keys", func(t *testing.T) {
		a := trackItem("t1", addedAt, "u1")
		b := trackItem("t1", addedAt, "u1")
		if a.Key() != b.Key() {
			t.Errorf("expected equal keys, got %q and %q", a.Key(), b.Key())
		}
	})

	t.Run("key distinguishes item adder and timestamp", func(t *testing.T) {
		base := trackItem("t1", addedAt, "u1")
		variants := []PlaylistItem{
			trackItem("t2", addedAt, "u1"),
			trackItem("t1", addedAt, "u2"),
			trackItem("t1", addedAt.Add(time.Minute), "u1"),
		}
		for _, v := range variants {
			if v.Key() == base.Key() {
				t.Errorf("expected distinct key for %+v", v)
			}
		}
	})

	t.Run("episode and track with same id differ", func(t *testing.T) {
		at := addedAt
		episode := PlaylistItem{
			AddedAt: &at,
			AddedBy: &User{ID: "u1"},
			Item:    &PlayableItem{Episode: &Episode{ID: "t1", Name: "Show"}},
		}
		if episode.Key() == trackItem("t1", addedAt, "u1").Key() {
			t.Error("episode and track keys should not collide")
		}
	})

	t.Run("missing fields do not panic", func(t *testing.T) {
		var empty PlaylistItem
		if empty.Key() != "||" {
			t.Errorf("expected separator-only key, got %q", empty.Key())
		}
	})
}

func TestPlaylistItemsDifference(t *testing.T) {
	a, b, c, d := trackItem("a", addedAt, "u1"), trackItem("b", addedAt, "u1"),
		trackItem("c", addedAt, "u1"), trackItem("d", addedAt, "u1")

	local := PlaylistItems{a, b, c}
	remote := PlaylistItems{b, c, d}

	added := remote.Difference(local)
	if len(added) != 1 || added[0].Key() != d.Key() {
		t.Errorf("expected [d], got %+v", added)
	}

	removed := local.Difference(remote)
	if len(removed) != 1 || removed[0].Key() != a.Key() {
		t.Errorf("expected [a], got %+v", removed)
	}

	t.Run("difference preserves receiver order", func(t *testing.T) {
		diff := PlaylistItems{c, a}.Difference(PlaylistItems{b})
		if len(diff) != 2 || diff[0].Key() != c.Key() || diff[1].Key() != a.Key() {
			t.Errorf("expected [c a], got %+v", diff)
		}
	})

	t.Run("difference with self is empty", func(t *testing.T) {
		if diff := local.Difference(local); len(diff) != 0 {
			t.Errorf("expected empty difference, got %+v", diff)
		}
	})
}

func TestDescriptionEqual(t *testing.T) {
	some := func(s string) *string { return &s }

	cases := []struct {
		name string
		a, b *string
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs empty", nil, some(""), false},
		{"equal values", some("x"), some("x"), true},
		{"different values", some("x"), some("y"), false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescriptionEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("DescriptionEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserNameOrID(t *testing.T) {
	name := "Display"
	if got := (User{ID: "u1", DisplayName: &name}).NameOrID(); got != "Display" {
		t.Errorf("expected display name, got %s", got)
	}
	if got := (User{ID: "u1"}).NameOrID(); got != "u1" {
		t.Errorf("expected id fallback, got %s", got)
	}

	tracked := NewTrackedUser(1, "spotify:abc", "")
	if got := tracked.NameOrID(); got != "spotify:abc" {
		t.Errorf("expected spotify id fallback, got %s", got)
	}
}

func TestModelValidation(t *testing.T) {
	if err := NewTrackedUser(1, "", "name").Validate(); err == nil {
		t.Error("expected validation error for missing spotify id")
	}
	if err := NewTrackedUser(1, "spotify:abc", "").Validate(); err != nil {
		t.Errorf("expected valid user, got %v", err)
	}

	if err := NewSyncRun(1, "", "p1", "Mix").Validate(); err == nil {
		t.Error("expected validation error for missing user id")
	}
	if err := NewSyncRun(1, "u1", "", "Mix").Validate(); err == nil {
		t.Error("expected validation error for missing playlist id")
	}
	if err := NewSyncRun(1, "u1", "p1", "Mix").Validate(); err != nil {
		t.Errorf("expected valid run, got %v", err)
	}
}
