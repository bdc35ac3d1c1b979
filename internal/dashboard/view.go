// Package dashboard assembles the three analysis views (scoreline, goal
// differential and per-game) from fetched games and a filter state, and
// keeps the per-view session that guards refreshes against stale results.
package dashboard

import (
	"fmt"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/model"
)

// View describes one dashboard page.
type View struct {
	Name     string
	Title    string
	KeyLabel string
	Codec    filter.Codec
	// Key groups games into buckets; nil for the per-game view.
	Key     analysis.KeyFunc
	KeyKind analysis.KeyKind
}

func aggregateSortKeys() []analysis.SortKey {
	keys := []analysis.SortKey{analysis.SortScore, analysis.SortGames}
	for _, info := range model.Stats {
		keys = append(keys, analysis.StatKey(info.Stat))
	}
	return keys
}

func gameSortKeys() []analysis.SortKey {
	keys := []analysis.SortKey{analysis.SortDate, analysis.SortScore}
	for _, info := range model.Stats {
		keys = append(keys, analysis.StatKey(info.Stat))
	}
	return keys
}

// Views lists the dashboard pages in menu order.
var Views = []View{
	{
		Name:     "scoreline",
		Title:    "Stats by Scoreline",
		KeyLabel: "SCORE",
		Codec:    filter.Codec{DefaultSort: analysis.SortScore, DefaultDir: analysis.Desc, SortKeys: aggregateSortKeys()},
		Key:      analysis.ByScoreline,
		KeyKind:  analysis.KeyScoreline,
	},
	{
		Name:     "goaldiff",
		Title:    "Stats by Goal Differential",
		KeyLabel: "DIFF",
		Codec:    filter.Codec{DefaultSort: analysis.SortScore, DefaultDir: analysis.Desc, SortKeys: aggregateSortKeys()},
		Key:      analysis.ByGoalDiff,
		KeyKind:  analysis.KeyGoalDiff,
	},
	{
		Name:     "games",
		Title:    "Game History",
		KeyLabel: "DATE",
		Codec:    filter.Codec{DefaultSort: analysis.SortDate, DefaultDir: analysis.Desc, SortKeys: gameSortKeys()},
	},
}

// Lookup finds a view by name.
func Lookup(name string) (View, error) {
	for _, v := range Views {
		if v.Name == name {
			return v, nil
		}
	}
	return View{}, fmt.Errorf("unknown view %q (want scoreline, goaldiff or games)", name)
}

// Aggregated reports whether the view groups games into buckets.
func (v View) Aggregated() bool { return v.Key != nil }

// ExpandKey canonicalises a bucket key typed by a user ("3", " 3", "+3") to
// the label Build matches against.
func (v View) ExpandKey(key string) (string, error) {
	if !v.Aggregated() {
		return "", fmt.Errorf("view %s has no drill-down", v.Name)
	}
	k, err := analysis.ParseBucketKey(v.KeyKind, key)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

// Expanded is the set of bucket keys whose games are shown beneath them.
type Expanded map[string]bool

// Toggle flips key and reports whether it is now expanded.
func (e Expanded) Toggle(key string) bool {
	if e[key] {
		delete(e, key)
		return false
	}
	e[key] = true
	return true
}

// Column is one sortable header of a table.
type Column struct {
	Key    analysis.SortKey `json:"key"`
	Label  string           `json:"label"`
	Active bool             `json:"active"`
	Dir    analysis.SortDir `json:"dir,omitempty"`
}

// Row is one displayed line: a bucket or a single game.
type Row struct {
	Key      string          `json:"key"`
	Date     string          `json:"date,omitempty"`
	Score    string          `json:"score"`
	Games    int             `json:"games"`
	Outcome  string          `json:"outcome"`
	Playlist string          `json:"playlist,omitempty"`
	Map      string          `json:"map,omitempty"`
	Expanded bool            `json:"expanded,omitempty"`
	Cells    []analysis.Cell `json:"cells"`
	Sub      []Row           `json:"sub,omitempty"`
}

// Table is the fully built view ready for rendering or serialising.
type Table struct {
	View    string   `json:"view"`
	Title   string   `json:"title"`
	Query   string   `json:"query"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
	Total   int      `json:"total_games"`
}

// Columns returns the header for state, marking the active sort column.
func (v View) Columns(state filter.State) []Column {
	cols := make([]Column, 0, len(v.Codec.SortKeys))
	for _, k := range v.Codec.SortKeys {
		c := Column{Key: k, Label: columnLabel(v, k)}
		if k == state.Sort {
			c.Active = true
			c.Dir = state.Dir
		}
		cols = append(cols, c)
	}
	return cols
}

func columnLabel(v View, k analysis.SortKey) string {
	switch k {
	case analysis.SortScore:
		if v.KeyKind == analysis.KeyGoalDiff && v.Aggregated() {
			return "DIFF"
		}
		return "SCORE"
	case analysis.SortGames:
		return "GAMES"
	case analysis.SortDate:
		return "DATE"
	}
	if info, ok := model.LookupStat(model.Stat(k)); ok {
		return info.Label
	}
	return string(k)
}

// Build runs the full pipeline over games for state. Keys in expanded that
// match a bucket get that bucket's games as sub-rows.
func (v View) Build(games []model.GameRecord, state filter.State, expanded Expanded) Table {
	t := Table{
		View:    v.Name,
		Title:   v.Title,
		Query:   v.Codec.Encode(state).String(),
		Columns: v.Columns(state),
		Total:   len(games),
	}
	if !v.Aggregated() {
		t.Rows = gameRows(analysis.Sort(games, state.Sort, state.Dir), analysis.GlobalRanges(games))
		return t
	}

	buckets := analysis.Aggregate(games, v.Key)
	ranges := analysis.GlobalRanges(buckets)
	var gameRanges analysis.Ranges
	for _, b := range analysis.Sort(buckets, state.Sort, state.Dir) {
		row := Row{
			Key:     b.Label,
			Score:   b.Label,
			Games:   b.Games,
			Outcome: model.OutcomeOf(b.Key.Diff()).String(),
			Cells:   analysis.RankRow(b, ranges),
		}
		if expanded[b.Label] {
			if gameRanges == nil {
				gameRanges = analysis.GlobalRanges(games)
			}
			row.Expanded = true
			row.Sub = gameRows(analysis.GamesFor(games, v.Key, b.Key), gameRanges)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func gameRows(games []model.GameRecord, ranges analysis.Ranges) []Row {
	rows := make([]Row, 0, len(games))
	for _, g := range games {
		rows = append(rows, Row{
			Key:      g.ID,
			Date:     g.Date,
			Score:    g.Score(),
			Games:    1,
			Outcome:  model.OutcomeOf(g.Diff()).String(),
			Playlist: g.Playlist,
			Map:      g.MapName,
			Cells:    analysis.RankRow(g, ranges),
		})
	}
	return rows
}
