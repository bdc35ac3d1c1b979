package prefs

import (
	"context"
	"testing"

	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/storage"
)

func openMemDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustView(t *testing.T, name string) dashboard.View {
	t.Helper()
	v, err := dashboard.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestOpenSpecs(t *testing.T) {
	db := openMemDB(t)
	for _, target := range []string{"", "sqlite", "memory"} {
		s, err := Open(target, db)
		if err != nil {
			t.Errorf("Open(%q): %v", target, err)
			continue
		}
		s.Close()
	}
	if _, err := Open("etcd://x", db); err == nil {
		t.Error("expected error for unknown store")
	}
	if _, err := Open("sqlite", nil); err == nil {
		t.Error("sqlite store without a database should fail")
	}
	if _, err := Open("redis://localhost:notaport", nil); err == nil {
		t.Error("expected error for malformed redis url")
	}
}

func TestRestorePersist(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqliteStore{db: openMemDB(t)},
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			v := mustView(t, "goaldiff")

			st, err := Restore(ctx, s, v)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if st != v.Codec.Default() {
				t.Errorf("empty store should restore defaults, got %+v", st)
			}

			st.TeamSize = 3
			st.Sort = "spd"
			st.Playlists = filter.PlaylistsOf("r3")
			if err := Persist(ctx, s, v, st); err != nil {
				t.Fatalf("Persist: %v", err)
			}
			got, err := Restore(ctx, s, v)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if got != st {
				t.Errorf("want %+v, got %+v", st, got)
			}

			q, _ := s.Load(ctx, v.Name)
			if len(q) != 3 {
				t.Errorf("only non-default fields should be stored, got %v", q)
			}
			if other, _ := Restore(ctx, s, mustView(t, "scoreline")); other.TeamSize != filter.DefaultTeamSize {
				t.Error("views must not share persisted state")
			}
		})
	}
}

func TestRestoreIgnoresGarbage(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Save(ctx, "games", filter.Query{"ts": "9", "sort": "games", "dir": "asc"})

	v := mustView(t, "games")
	st, err := Restore(ctx, s, v)
	if err != nil {
		t.Fatal(err)
	}
	want := v.Codec.Default()
	want.Dir = "asc"
	if st != want {
		t.Errorf("want %+v, got %+v", want, st)
	}
}

func TestMemoryCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	q := filter.Query{"ts": "1"}
	s.Save(ctx, "games", q)
	q["ts"] = "3"

	got, _ := s.Load(ctx, "games")
	if got["ts"] != "1" {
		t.Errorf("store must not alias the caller's map, got %v", got)
	}
	got["ts"] = "2"
	again, _ := s.Load(ctx, "games")
	if again["ts"] != "1" {
		t.Errorf("Load must return a copy, got %v", again)
	}
}

func TestStateKey(t *testing.T) {
	if k := stateKey("scoreline"); k != "rlstats:state:scoreline" {
		t.Errorf("unexpected key %q", k)
	}
}
