package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/prefs"
	"github.com/pable/rlstats/internal/report"
)

// viewCmds builds one command per dashboard view.
func viewCmds() []*cobra.Command {
	out := make([]*cobra.Command, 0, len(dashboard.Views))
	for _, v := range dashboard.Views {
		out = append(out, newViewCmd(v))
	}
	return out
}

func newViewCmd(v dashboard.View) *cobra.Command {
	var (
		flags   filterFlags
		expand  []string
		asJSON  bool
		noColor bool
		noSave  bool
	)
	c := &cobra.Command{
		Use:   v.Name,
		Short: v.Title,
		Long: v.Title + `.

Without filter flags the view opens with its saved state. Any filter flag (or
--query) replaces it, and the result is saved for next time unless --no-save
is given.`,
		Args: cobra.NoArgs,
	}
	flags.register(c)
	if v.Aggregated() {
		c.Flags().StringSliceVar(&expand, "expand", nil, "bucket keys to drill into (e.g. 3-0 or +2)")
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the built table as JSON")
	c.Flags().BoolVar(&noColor, "no-color", false, "disable rank shading")
	c.Flags().BoolVar(&noSave, "no-save", false, "do not persist the filter state")

	c.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, store, closeAll, err := openStores()
		if err != nil {
			return err
		}
		defer closeAll()

		st, explicit, err := flags.resolve(ctx, cmd, v, store)
		if err != nil {
			return err
		}
		if explicit && !noSave {
			if err := prefs.Persist(ctx, store, v, st); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save %s state: %v\n", v.Name, err)
			}
		}

		s := dashboard.NewSession(v, st)
		for _, k := range expand {
			if _, err := s.ToggleExpand(k); err != nil {
				return err
			}
		}
		if _, err := s.Refresh(ctx, db); err != nil {
			return err
		}
		tbl := s.Table()

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tbl)
		}
		fmt.Fprintln(os.Stdout, describeState(st))
		report.PrintTable(os.Stdout, tbl, report.Options{Color: !noColor && !color.NoColor})
		return nil
	}
	return c
}
