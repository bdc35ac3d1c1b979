package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/prefs"
)

// filterFlags are the per-view filter and sort options shared by every
// command that builds a view.
type filterFlags struct {
	teamSize  int
	ties      bool
	short     bool
	playlists string
	allModes  bool
	sort      string
	dir       string
	query     string
}

var filterFlagNames = []string{"team-size", "ties", "short", "playlists", "all-modes", "sort", "dir", "query"}

func (f *filterFlags) register(c *cobra.Command) {
	fs := c.Flags()
	fs.IntVar(&f.teamSize, "team-size", filter.DefaultTeamSize, "team size: 1, 2 or 3")
	fs.BoolVar(&f.ties, "ties", false, "include tied games")
	fs.BoolVar(&f.short, "short", false, "include games shorter than 90 seconds")
	fs.StringVar(&f.playlists, "playlists", "r2,r3", "playlist ids (r1,r2,r3,c1,c2,c3) or none")
	fs.BoolVar(&f.allModes, "all-modes", false, "ignore the playlist selection")
	fs.StringVar(&f.sort, "sort", "", "sort key (score, games, date, pbb, spd, dist)")
	fs.StringVar(&f.dir, "dir", "", "sort direction: asc or desc")
	fs.StringVar(&f.query, "query", "", "encoded state, e.g. 'ts=3&sort=pbb'")
}

func (f *filterFlags) explicit(c *cobra.Command) bool {
	for _, name := range filterFlagNames {
		if c.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// resolve works out the state a command runs with. --query seeds the state
// and individual flags override it; with neither, the view's persisted state
// is restored. The boolean reports whether the state came from flags.
func (f *filterFlags) resolve(ctx context.Context, c *cobra.Command, v dashboard.View, store prefs.Store) (filter.State, bool, error) {
	if !f.explicit(c) {
		st, err := prefs.Restore(ctx, store, v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not restore %s state, using defaults: %v\n", v.Name, err)
		}
		return st, false, nil
	}

	st := v.Codec.Decode(filter.ParseQuery(f.query))
	fs := c.Flags()
	if fs.Changed("team-size") {
		if f.teamSize < 1 || f.teamSize > 3 {
			return st, true, fmt.Errorf("--team-size must be 1, 2 or 3, got %d", f.teamSize)
		}
		st.TeamSize = f.teamSize
	}
	if fs.Changed("ties") {
		st.ExcludeTies = !f.ties
	}
	if fs.Changed("short") {
		st.ExcludeShort = !f.short
	}
	if fs.Changed("playlists") {
		set, err := parsePlaylistFlag(f.playlists)
		if err != nil {
			return st, true, err
		}
		st.Playlists = set
	}
	if fs.Changed("all-modes") {
		st.AllModes = f.allModes
	}
	if fs.Changed("sort") {
		key := analysis.SortKey(f.sort)
		if !v.Codec.ValidSort(key) {
			return st, true, fmt.Errorf("view %s cannot sort by %q (want one of %s)", v.Name, f.sort, sortKeyList(v))
		}
		st.Sort = key
	}
	if fs.Changed("dir") {
		switch d := analysis.SortDir(f.dir); d {
		case analysis.Asc, analysis.Desc:
			st.Dir = d
		default:
			return st, true, fmt.Errorf("--dir must be asc or desc, got %q", f.dir)
		}
	}
	return st, true, nil
}

func parsePlaylistFlag(s string) (filter.PlaylistSet, error) {
	s = strings.TrimSpace(s)
	if s == "none" || s == "" {
		return 0, nil
	}
	var set filter.PlaylistSet
	for _, id := range strings.Split(s, ",") {
		id = strings.TrimSpace(id)
		if !filter.PlaylistsOf(id).Has(id) {
			return 0, fmt.Errorf("unknown playlist %q (want r1, r2, r3, c1, c2, c3)", id)
		}
		set = set.With(id)
	}
	return set, nil
}

func sortKeyList(v dashboard.View) string {
	keys := make([]string, len(v.Codec.SortKeys))
	for i, k := range v.Codec.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}

// describeState prints the active filters in one line.
func describeState(st filter.State) string {
	parts := []string{fmt.Sprintf("%dv%d", st.TeamSize, st.TeamSize)}
	if st.AllModes {
		parts = append(parts, "all modes")
	} else if ids := st.Playlists.IDs(); len(ids) > 0 {
		parts = append(parts, "playlists "+strings.Join(ids, ","))
	} else {
		parts = append(parts, "any playlist")
	}
	if !st.ExcludeTies {
		parts = append(parts, "ties included")
	}
	if !st.ExcludeShort {
		parts = append(parts, "short games included")
	}
	parts = append(parts, fmt.Sprintf("sort %s %s", st.Sort, st.Dir))
	return strings.Join(parts, "  |  ")
}
