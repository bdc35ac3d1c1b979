package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json> [<file.json>...]",
	Short: "Import game history exported by the data service",
	Long: `Import one or more JSON exports. Each file is either an array of game objects
or an object with a "games" array. Games already stored are replaced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var total, added int
	for _, path := range args {
		games, err := ingest.ParseFile(path)
		if err != nil {
			return err
		}
		n, err := db.InsertGames(games)
		if err != nil {
			return fmt.Errorf("store %s: %w", path, err)
		}
		fmt.Fprintf(os.Stdout, "%s: %d games (%d new)\n", path, len(games), n)
		total += len(games)
		added += n
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stdout, "total: %d games (%d new)\n", total, added)
	}
	return nil
}
