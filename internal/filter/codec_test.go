package filter

import (
	"testing"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/model"
)

var testCodec = Codec{
	DefaultSort: analysis.SortScore,
	DefaultDir:  analysis.Desc,
	SortKeys: []analysis.SortKey{
		analysis.SortScore, analysis.SortGames,
		analysis.StatKey(model.StatBehindBall), analysis.StatKey(model.StatSpeed), analysis.StatKey(model.StatDistance),
	},
}

func TestEncodeDefaultIsEmpty(t *testing.T) {
	q := testCodec.Encode(testCodec.Default())
	if len(q) != 0 {
		t.Errorf("expected empty query for default state, got %v", q)
	}
}

func TestEncodeOnlyNonDefaultTeamSize(t *testing.T) {
	s := testCodec.Default()
	if q := testCodec.Encode(s); q[KeyTeamSize] != "" {
		t.Errorf("team size 2 is the default and must be omitted, got %q", q[KeyTeamSize])
	}
	s.TeamSize = 3
	q := testCodec.Encode(s)
	if q[KeyTeamSize] != "3" {
		t.Errorf("want ts=3, got %v", q)
	}
	if len(q) != 1 {
		t.Errorf("expected only the team size key, got %v", q)
	}
}

// reachableStates enumerates a broad cross-section of valid states.
func reachableStates() []State {
	var out []State
	playlists := []PlaylistSet{0, DefaultPlaylists, PlaylistsOf("r1"), PlaylistsOf("c3", "r1", "c1"), PlaylistsOf("r1", "r2", "r3", "c1", "c2", "c3")}
	for _, ts := range []int{1, 2, 3} {
		for _, ties := range []bool{true, false} {
			for _, short := range []bool{true, false} {
				for _, pl := range playlists {
					for _, all := range []bool{true, false} {
						for _, key := range testCodec.SortKeys {
							for _, dir := range []analysis.SortDir{analysis.Desc, analysis.Asc} {
								out = append(out, State{
									TeamSize: ts, ExcludeTies: ties, ExcludeShort: short,
									Playlists: pl, AllModes: all, Sort: key, Dir: dir,
								})
							}
						}
					}
				}
			}
		}
	}
	return out
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for _, s := range reachableStates() {
		q := testCodec.Encode(s)
		if got := testCodec.Decode(q); got != s {
			t.Fatalf("round trip mismatch:\n  state %+v\n  query %v\n  got   %+v", s, q, got)
		}
		// The query string form must survive too.
		if got := testCodec.Decode(ParseQuery(q.String())); got != s {
			t.Fatalf("string round trip mismatch for %v: got %+v", q, got)
		}
	}
}

func TestPlaylistEncodingSorted(t *testing.T) {
	s := testCodec.Default()
	s.Playlists = PlaylistsOf("r3", "c2", "r1")
	q := testCodec.Encode(s)
	if q[KeyPlaylists] != "c2,r1,r3" {
		t.Errorf("want sorted ids c2,r1,r3, got %q", q[KeyPlaylists])
	}
	s.Playlists = 0
	if q := testCodec.Encode(s); q[KeyPlaylists] != "none" {
		t.Errorf("empty selection: want none, got %q", q[KeyPlaylists])
	}
}

func TestDecodeInvalidFallsBack(t *testing.T) {
	q := Query{
		KeyTeamSize:  "7",
		KeyTies:      "maybe",
		KeyShort:     "",
		KeyPlaylists: "x9,zz",
		KeyAllModes:  "yes please",
		KeySort:      "date", // not offered by this view
		KeyDir:       "sideways",
		"unknown":    "1",
	}
	if got := testCodec.Decode(q); got != testCodec.Default() {
		t.Errorf("invalid tokens should decode to defaults, got %+v", got)
	}
}

func TestDecodeKeepsKnownPlaylistTokens(t *testing.T) {
	got := testCodec.Decode(Query{KeyPlaylists: "r1,future9"})
	if got.Playlists != PlaylistsOf("r1") {
		t.Errorf("want {r1}, got %v", got.Playlists.IDs())
	}
}

func TestNormalize(t *testing.T) {
	q := Query{KeyTeamSize: "2", KeyPlaylists: "r3,r2", KeyDir: "asc", KeyTies: "true"}
	got := testCodec.Normalize(q)
	want := Query{KeyDir: "asc", KeyTies: "1"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: want %q, got %q", k, v, got[k])
		}
	}
}

func TestHasStateKeys(t *testing.T) {
	if HasStateKeys(Query{}) || HasStateKeys(Query{"foo": "1", "expand": "3-0"}) {
		t.Error("unknown keys are not state")
	}
	for _, k := range []string{KeyTeamSize, KeyTies, KeyShort, KeyPlaylists, KeyAllModes, KeySort, KeyDir} {
		if !HasStateKeys(Query{k: "x", "foo": "1"}) {
			t.Errorf("%s should count as state", k)
		}
	}
}

func TestRequest(t *testing.T) {
	s := testCodec.Default()
	r := s.Request()
	if r.TeamSize != 2 || !r.ExcludeTies || r.MinDuration != ShortGameSeconds {
		t.Errorf("unexpected default request: %+v", r)
	}
	if len(r.Playlists) != 2 || r.Playlists[0] != "Ranked Doubles" || r.Playlists[1] != "Ranked Standard" {
		t.Errorf("default playlists: got %v", r.Playlists)
	}

	s.AllModes = true
	s.ExcludeShort = false
	r = s.Request()
	if len(r.Playlists) != 0 {
		t.Errorf("all modes should not filter playlists, got %v", r.Playlists)
	}
	if r.MinDuration != 0 {
		t.Errorf("short games included: want min duration 0, got %d", r.MinDuration)
	}
}

func TestPlaylistSetToggle(t *testing.T) {
	s := DefaultPlaylists.Toggle("r2")
	if s.Has("r2") || !s.Has("r3") {
		t.Errorf("toggle r2: got %v", s.IDs())
	}
	if s.Toggle("bogus") != s {
		t.Error("unknown id should leave the set unchanged")
	}
}
