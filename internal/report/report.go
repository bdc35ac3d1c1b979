// Package report renders dashboard tables and game records as terminal
// tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/model"
)

// Options controls table rendering.
type Options struct {
	// Color paints each bar with its rank shade.
	Color bool
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintTable renders a built view. Bucket rows come first with their
// drill-down games indented beneath them.
func PrintTable(w io.Writer, t dashboard.Table, opts Options) {
	fmt.Fprintf(w, "\n%s  |  %d games", t.Title, t.Total)
	if t.Query != "" {
		fmt.Fprintf(w, "  |  ?%s", t.Query)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "No games match the current filters.")
		return
	}

	aggregated := true
	if v, err := dashboard.Lookup(t.View); err == nil {
		aggregated = v.Aggregated()
	}
	table := newTable(w)
	table.Header(headerCells(t, aggregated)...)
	for _, r := range t.Rows {
		table.Append(rowCells(r, aggregated, "", opts)...)
		for _, s := range r.Sub {
			table.Append(rowCells(s, false, "  └ ", opts)...)
		}
	}
	table.Render()
}

func headerCells(t dashboard.Table, aggregated bool) []any {
	labels := []string{" ", "SCORE", "GAMES"}
	if !aggregated {
		labels = []string{"DATE", "SCORE", "PLAYLIST"}
	}
	for _, c := range t.Columns {
		switch c.Key {
		case analysis.SortScore, analysis.SortGames, analysis.SortDate:
			continue
		}
		labels = append(labels, c.Label)
	}

	cells := make([]any, len(labels))
	for i, l := range labels {
		for _, c := range t.Columns {
			if c.Active && l == columnTitle(c) {
				l += sortArrow(c.Dir)
			}
		}
		cells[i] = l
	}
	return cells
}

func columnTitle(c dashboard.Column) string {
	switch c.Key {
	case analysis.SortScore:
		return "SCORE"
	case analysis.SortGames:
		return "GAMES"
	case analysis.SortDate:
		return "DATE"
	}
	return c.Label
}

func sortArrow(d analysis.SortDir) string {
	if d == analysis.Asc {
		return " ▲"
	}
	return " ▼"
}

func rowCells(r dashboard.Row, aggregated bool, indent string, opts Options) []any {
	var cells []any
	if aggregated {
		cells = append(cells, outcomeMark(r.Outcome), r.Score, strconv.Itoa(r.Games))
	} else {
		date := r.Date
		if len(date) >= 10 {
			date = date[:10]
		}
		cells = append(cells, indent+date, r.Score, r.Playlist)
	}
	for _, c := range r.Cells {
		cells = append(cells, FormatCell(c, opts))
	}
	return cells
}

func outcomeMark(outcome string) string {
	switch outcome {
	case model.Win.String():
		return "W"
	case model.Loss.String():
		return "L"
	}
	return "D"
}

// FormatCell renders every bar of a cell as "<role> <glyph><label>".
func FormatCell(c analysis.Cell, opts Options) string {
	parts := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		s := fmt.Sprintf("%s %s%s", b.Role, Glyph(b.Height), b.Label)
		if opts.Color && !b.NoData {
			s = paint(s, Shade(b.T, b.Intensity))
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

// PrintGameList prints one line per game, newest first.
func PrintGameList(w io.Writer, games []model.GameRecord) {
	table := newTable(w)
	table.Header("ID", "DATE", "SCORE", "OT", "SIZE", "PLAYLIST", "MAP", "DURATION")
	for _, g := range games {
		id := g.ID
		if len(id) > 12 {
			id = id[:12]
		}
		ot := ""
		if g.Overtime {
			ot = "OT"
		}
		table.Append(
			id,
			g.Date,
			g.Score(),
			ot,
			fmt.Sprintf("%dv%d", g.TeamSize, g.TeamSize),
			g.Playlist,
			g.MapName,
			formatDuration(g.Duration),
		)
	}
	table.Render()
}

// PrintGame prints one game's header and its per-role stats.
func PrintGame(w io.Writer, g model.GameRecord) {
	ot := ""
	if g.Overtime {
		ot = " (OT)"
	}
	fmt.Fprintf(w, "\nGame: %s  |  Date: %s  |  Score: %s%s  |  %s  |  %s  |  %s\n\n",
		g.ID, g.Date, g.Score(), ot, g.Playlist, g.MapName, formatDuration(g.Duration))
	printRoles(w, g.Roles())
}

// PrintAverages prints one line per role of an overall bucket.
func PrintAverages(w io.Writer, b analysis.Bucket) {
	fmt.Fprintf(w, "%d games\n\n", b.Games)
	printRoles(w, b.Roles())
}

func printRoles(w io.Writer, roles []model.RoleValue) {
	table := newTable(w)
	header := []any{"ROLE"}
	for _, info := range model.Stats {
		header = append(header, info.Label)
	}
	table.Header(header...)
	for _, rv := range roles {
		row := []any{rv.Role.String()}
		for _, info := range model.Stats {
			row = append(row, info.Format(rv.Stats.Get(info.Stat)))
		}
		table.Append(row...)
	}
	table.Render()
}

func formatDuration(sec int) string {
	if sec <= 0 {
		return model.NoData
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
