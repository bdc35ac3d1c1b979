package filter

import (
	"strconv"
	"strings"

	"github.com/pable/rlstats/internal/analysis"
)

// Query keys. A key is only present when its field differs from the default.
const (
	KeyTeamSize  = "ts"
	KeyTies      = "ties"
	KeyShort     = "short"
	KeyPlaylists = "pl"
	KeyAllModes  = "all"
	KeySort      = "sort"
	KeyDir       = "dir"
)

var stateKeys = []string{KeyTeamSize, KeyTies, KeyShort, KeyPlaylists, KeyAllModes, KeySort, KeyDir}

// HasStateKeys reports whether q sets any key the codec understands.
func HasStateKeys(q Query) bool {
	for _, k := range stateKeys {
		if _, ok := q[k]; ok {
			return true
		}
	}
	return false
}

// noPlaylists encodes the empty selection so it survives omit-if-default.
const noPlaylists = "none"

// DefaultTeamSize is the team size a view opens with.
const DefaultTeamSize = 2

var defaultPlaylistsParam = strings.Join(DefaultPlaylists.IDs(), ",")

// Codec maps a view's State to and from its Query. Views differ only in
// their default sort and the sort keys they offer.
type Codec struct {
	DefaultSort analysis.SortKey
	DefaultDir  analysis.SortDir
	SortKeys    []analysis.SortKey
}

// Default returns the state a view opens with.
func (c Codec) Default() State {
	return State{
		TeamSize:     DefaultTeamSize,
		ExcludeTies:  true,
		ExcludeShort: true,
		Playlists:    DefaultPlaylists,
		Sort:         c.DefaultSort,
		Dir:          c.DefaultDir,
	}
}

// ValidSort reports whether key is offered by the view.
func (c Codec) ValidSort(key analysis.SortKey) bool {
	for _, k := range c.SortKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Encode writes only the fields that differ from the defaults.
func (c Codec) Encode(s State) Query {
	d := c.Default()
	q := Query{}
	if s.TeamSize != d.TeamSize {
		q[KeyTeamSize] = strconv.Itoa(s.TeamSize)
	}
	if s.ExcludeTies != d.ExcludeTies {
		q[KeyTies] = boolParam(!s.ExcludeTies)
	}
	if s.ExcludeShort != d.ExcludeShort {
		q[KeyShort] = boolParam(!s.ExcludeShort)
	}
	if pl := playlistsParam(s.Playlists); pl != defaultPlaylistsParam {
		q[KeyPlaylists] = pl
	}
	if s.AllModes != d.AllModes {
		q[KeyAllModes] = boolParam(s.AllModes)
	}
	if s.Sort != d.Sort {
		q[KeySort] = string(s.Sort)
	}
	if s.Dir != d.Dir {
		q[KeyDir] = string(s.Dir)
	}
	return q
}

// Decode reads each field independently; missing or unrecognised values
// leave the field at its default.
func (c Codec) Decode(q Query) State {
	s := c.Default()
	if v, ok := q[KeyTeamSize]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 3 {
			s.TeamSize = n
		}
	}
	if v, ok := q[KeyTies]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.ExcludeTies = !b
		}
	}
	if v, ok := q[KeyShort]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.ExcludeShort = !b
		}
	}
	if v, ok := q[KeyPlaylists]; ok {
		if set, ok := parsePlaylists(v); ok {
			s.Playlists = set
		}
	}
	if v, ok := q[KeyAllModes]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.AllModes = b
		}
	}
	if v, ok := q[KeySort]; ok && c.ValidSort(analysis.SortKey(v)) {
		s.Sort = analysis.SortKey(v)
	}
	if v, ok := q[KeyDir]; ok {
		switch d := analysis.SortDir(v); d {
		case analysis.Asc, analysis.Desc:
			s.Dir = d
		}
	}
	return s
}

// Normalize rewrites q in canonical omit-defaults form.
func (c Codec) Normalize(q Query) Query {
	return c.Encode(c.Decode(q))
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func playlistsParam(s PlaylistSet) string {
	ids := s.IDs()
	if len(ids) == 0 {
		return noPlaylists
	}
	return strings.Join(ids, ",")
}

// parsePlaylists keeps the known ids of a comma list. A list with no known
// id is rejected so the caller falls back to the default.
func parsePlaylists(v string) (PlaylistSet, bool) {
	if v == noPlaylists {
		return 0, true
	}
	var set PlaylistSet
	known := false
	for _, tok := range strings.Split(v, ",") {
		tok = strings.TrimSpace(tok)
		if playlistIndex(tok) < 0 {
			continue
		}
		set = set.With(tok)
		known = true
	}
	return set, known
}
