package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/report"
	"github.com/pable/rlstats/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show one stored game by id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return showGame(db, args[0])
}

func showGame(db *storage.DB, prefix string) error {
	g, err := db.GetGameByPrefix(prefix)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No game found with id prefix %q\n", prefix)
		return nil
	}
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}
	report.PrintGame(os.Stdout, *g)
	return nil
}
