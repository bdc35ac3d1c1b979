package analysis

import (
	"sort"
	"strings"

	"github.com/pable/rlstats/internal/model"
)

// SortKey selects the column rows are ordered by.
type SortKey string

const (
	SortScore SortKey = "score"
	SortGames SortKey = "games"
	SortDate  SortKey = "date"
)

// StatKey returns the sort key for a stat column.
func StatKey(s model.Stat) SortKey { return SortKey(s) }

// SortDir is the direction of a sort.
type SortDir string

const (
	Desc SortDir = "desc"
	Asc  SortDir = "asc"
)

// Flip returns the opposite direction.
func (d SortDir) Flip() SortDir {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Toggle applies a header click: selecting the active key flips the
// direction, selecting another key makes it active in descending order.
func Toggle(active SortKey, dir SortDir, selected SortKey) (SortKey, SortDir) {
	if selected == active {
		return active, dir.Flip()
	}
	return selected, Desc
}

// Sort returns a copy of rows ordered by key and dir. Ties on any key other
// than score fall back to score descending.
func Sort[R Row](rows []R, key SortKey, dir SortDir) []R {
	out := make([]R, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return compareRows(out[i], out[j], key, dir) < 0
	})
	return out
}

func compareRows(a, b Row, key SortKey, dir SortDir) int {
	if key == SortScore {
		return compareScore(a, b, dir)
	}

	var c int
	switch key {
	case SortDate:
		c = strings.Compare(a.SortDate(), b.SortDate())
	case SortGames:
		c = cmpInt(a.GameCount(), b.GameCount())
	default:
		stat := model.Stat(key)
		c = cmpFloat(a.MeStats().Get(stat), b.MeStats().Get(stat))
	}
	if c != 0 {
		if dir == Desc {
			return -c
		}
		return c
	}
	return compareScore(a, b, Desc)
}

// compareScore orders by own goals (more first when descending), then by
// opponent goals in the opposite sense so fewer conceded ranks higher.
func compareScore(a, b Row, dir SortDir) int {
	ap, as := a.ScoreKey()
	bp, bs := b.ScoreKey()
	if c := cmpInt(ap, bp); c != 0 {
		if dir == Desc {
			return -c
		}
		return c
	}
	c := cmpInt(as, bs)
	if dir == Desc {
		return c
	}
	return -c
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
