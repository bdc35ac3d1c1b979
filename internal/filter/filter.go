// Package filter holds the dashboard's filter/sort configuration and its
// compact query representation. Decoding never fails: any token it does not
// understand leaves that field at its default, so old and new links keep
// working.
package filter

import (
	"net/url"
	"sort"
	"strings"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/model"
)

// ShortGameSeconds is the duration below which a game counts as short.
const ShortGameSeconds = 90

// PlaylistSet is a subset of model.Playlists, one bit per catalogue index.
type PlaylistSet uint8

// DefaultPlaylists is the selection used when nothing is persisted.
var DefaultPlaylists = PlaylistsOf(model.DefaultPlaylistIDs...)

// PlaylistsOf builds a set from short ids, ignoring unknown ones.
func PlaylistsOf(ids ...string) PlaylistSet {
	var s PlaylistSet
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

func playlistIndex(id string) int {
	for i, p := range model.Playlists {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Has reports whether id is selected.
func (s PlaylistSet) Has(id string) bool {
	i := playlistIndex(id)
	return i >= 0 && s&(1<<i) != 0
}

// With returns s with id added.
func (s PlaylistSet) With(id string) PlaylistSet {
	if i := playlistIndex(id); i >= 0 {
		return s | 1<<i
	}
	return s
}

// Toggle returns s with id flipped.
func (s PlaylistSet) Toggle(id string) PlaylistSet {
	if i := playlistIndex(id); i >= 0 {
		return s ^ 1<<i
	}
	return s
}

// IDs returns the selected short ids sorted lexicographically.
func (s PlaylistSet) IDs() []string {
	var ids []string
	for i, p := range model.Playlists {
		if s&(1<<i) != 0 {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Names returns the data-service playlist names of the selection.
func (s PlaylistSet) Names() []string {
	var names []string
	for i, p := range model.Playlists {
		if s&(1<<i) != 0 {
			names = append(names, p.Name)
		}
	}
	return names
}

// State is the complete filter and sort configuration of one view.
type State struct {
	TeamSize     int
	ExcludeTies  bool
	ExcludeShort bool
	Playlists    PlaylistSet
	AllModes     bool
	Sort         analysis.SortKey
	Dir          analysis.SortDir
}

// Request is what the data service needs to answer a query.
type Request struct {
	TeamSize    int
	ExcludeTies bool
	MinDuration int
	// Playlists is empty when no playlist filtering applies.
	Playlists []string
}

// Request translates the state into data-service parameters.
func (s State) Request() Request {
	r := Request{TeamSize: s.TeamSize, ExcludeTies: s.ExcludeTies}
	if s.ExcludeShort {
		r.MinDuration = ShortGameSeconds
	}
	if !s.AllModes {
		r.Playlists = s.Playlists.Names()
	}
	return r
}

// Query is the flat string-keyed persisted form of a State.
type Query map[string]string

// ParseQuery reads a URL query string ("ts=3&sort=pbb"). A leading "?" is
// accepted. Malformed input yields whatever pairs could be read.
func ParseQuery(raw string) Query {
	vals, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return FromValues(vals)
}

// FromValues keeps the first value of every key.
func FromValues(vals url.Values) Query {
	q := make(Query, len(vals))
	for k, v := range vals {
		if len(v) > 0 {
			q[k] = v[0]
		}
	}
	return q
}

// Values converts the query to url.Values.
func (q Query) Values() url.Values {
	vals := make(url.Values, len(q))
	for k, v := range q {
		vals.Set(k, v)
	}
	return vals
}

// String renders the query with keys sorted, without a leading "?".
func (q Query) String() string {
	return q.Values().Encode()
}
