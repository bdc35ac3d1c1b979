package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/report"
	"github.com/pable/rlstats/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all games stored in the database:
total game count, date range, the win/loss split per team size and per
playlist, and career per-role averages for each team size.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalGames == 0 {
		fmt.Fprintln(os.Stdout, "No games stored yet. Run 'rlstats import <file.json>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Games stored  : %d\n", ov.TotalGames)
	fmt.Fprintf(os.Stdout, "  Date range    : %s → %s\n", ov.EarliestGame, ov.LatestGame)
	fmt.Fprintf(os.Stdout, "  Playlists     : %d\n", ov.Playlists)

	sizes, err := db.GetTeamSizeCounts()
	if err != nil {
		return fmt.Errorf("get team sizes: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Team Sizes ---\n\n")
	printGroupCounts("MODE", sizes)

	playlists, err := db.GetPlaylistCounts()
	if err != nil {
		return fmt.Errorf("get playlists: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Playlists ---\n\n")
	printGroupCounts("PLAYLIST", playlists)

	for ts := 1; ts <= 3; ts++ {
		games, err := db.Games(cmd.Context(), filter.Request{TeamSize: ts})
		if err != nil {
			return fmt.Errorf("load %dv%d games: %w", ts, ts, err)
		}
		b, ok := analysis.Overall(games)
		if !ok {
			continue
		}
		fmt.Fprintf(os.Stdout, "\n--- Career Averages %dv%d ---\n\n", ts, ts)
		report.PrintAverages(os.Stdout, b)
	}
	return nil
}

func printGroupCounts(label string, counts []storage.GroupCount) {
	t := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	t.Header(label, "GAMES", "W", "L", "D", "WIN%")
	for _, c := range counts {
		group := c.Group
		if group == "" {
			group = "(unknown)"
		}
		winPct := 0.0
		if decided := c.Wins + c.Losses; decided > 0 {
			winPct = 100.0 * float64(c.Wins) / float64(decided)
		}
		t.Append(
			group,
			fmt.Sprintf("%d", c.Games),
			fmt.Sprintf("%d", c.Wins),
			fmt.Sprintf("%d", c.Losses),
			fmt.Sprintf("%d", c.Draws),
			fmt.Sprintf("%.0f%%", winPct),
		)
	}
	t.Render()
}
