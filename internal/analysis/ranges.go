package analysis

import "github.com/pable/rlstats/internal/model"

// Row is a displayed record: a single game or an aggregate bucket.
type Row interface {
	Roles() []model.RoleValue
	MeStats() model.RoleStats
	ScoreKey() (primary, secondary int)
	SortDate() string
	GameCount() int
}

// Range is the {min, max} of a stat over some scope.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRange is returned when a scope has no usable values.
var DefaultRange = Range{Min: 0, Max: 1}

// Ranges holds one global Range per stat.
type Ranges map[model.Stat]Range

// GlobalRange scans every role of every row and returns the min/max of stat,
// ignoring sentinel zeros.
func GlobalRange[R Row](rows []R, stat model.Stat) Range {
	var r Range
	found := false
	for _, row := range rows {
		for _, rv := range row.Roles() {
			v := rv.Stats.Get(stat)
			if v == 0 {
				continue
			}
			if !found {
				r = Range{Min: v, Max: v}
				found = true
				continue
			}
			if v < r.Min {
				r.Min = v
			}
			if v > r.Max {
				r.Max = v
			}
		}
	}
	if !found {
		return DefaultRange
	}
	return r
}

// GlobalRanges computes GlobalRange for every catalogued stat.
func GlobalRanges[R Row](rows []R) Ranges {
	out := make(Ranges, len(model.Stats))
	for _, info := range model.Stats {
		out[info.Stat] = GlobalRange(rows, info.Stat)
	}
	return out
}

// CellRange returns the literal min/max of the simultaneous role values in
// one row. Zeros are legitimate low values here and are not skipped.
func CellRange(values []float64) Range {
	if len(values) == 0 {
		return DefaultRange
	}
	r := Range{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return r
}
