package analysis

import "github.com/pable/rlstats/internal/model"

// HeightFloor is the minimum bar height (as a fraction of the full height)
// so that near-zero and missing values stay visible.
const HeightFloor = 28.0 / 62.0

// Rank maps v to its comparative position in [0,1] within the row's cell
// range. A degenerate range yields 0.5. Inverted stats flip the result.
func Rank(v float64, cell Range, invert bool) float64 {
	t := 0.5
	if span := cell.Max - cell.Min; span > 0 {
		t = (v - cell.Min) / span
	}
	if invert {
		t = 1 - t
	}
	return t
}

// Magnitude maps v to a bar height in [HeightFloor, 1] against the global
// range. Sentinel zeros go straight to the floor.
func Magnitude(v float64, global Range) float64 {
	if v == 0 {
		return HeightFloor
	}
	norm := 0.5
	if span := global.Max - global.Min; span > 0 {
		norm = (v - global.Min) / span
	}
	if norm < HeightFloor {
		return HeightFloor
	}
	if norm > 1 {
		return 1
	}
	return norm
}

// Bar is the display-ready mapping of one role's value in one cell.
type Bar struct {
	Role      string  `json:"role"`
	Value     float64 `json:"value"`
	Label     string  `json:"label"`
	T         float64 `json:"t"`
	Intensity float64 `json:"intensity"`
	Height    float64 `json:"height"`
	NoData    bool    `json:"no_data"`
}

// Cell groups the bars for one stat of one row.
type Cell struct {
	Stat model.Stat `json:"stat"`
	Bars []Bar      `json:"bars"`
}

// RankCell computes the bars for every role of row for the given stat.
func RankCell(row Row, info model.StatInfo, global Range) Cell {
	roles := row.Roles()
	vals := make([]float64, len(roles))
	for i, rv := range roles {
		vals[i] = rv.Stats.Get(info.Stat)
	}
	cell := CellRange(vals)

	out := Cell{Stat: info.Stat, Bars: make([]Bar, len(roles))}
	for i, rv := range roles {
		v := vals[i]
		b := Bar{
			Role:      rv.Role.Short(),
			Value:     v,
			T:         Rank(v, cell, info.Invert),
			Intensity: info.Intensity,
			Height:    Magnitude(v, global),
			NoData:    v == 0,
		}
		if b.NoData {
			b.Label = model.NoData
		} else {
			b.Label = info.Format(v)
		}
		out.Bars[i] = b
	}
	return out
}

// RankRow computes one Cell per catalogued stat.
func RankRow(row Row, ranges Ranges) []Cell {
	cells := make([]Cell, 0, len(model.Stats))
	for _, info := range model.Stats {
		g, ok := ranges[info.Stat]
		if !ok {
			g = DefaultRange
		}
		cells = append(cells, RankCell(row, info, g))
	}
	return cells
}
