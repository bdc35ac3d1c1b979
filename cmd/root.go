package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/prefs"
	"github.com/pable/rlstats/internal/storage"
)

var (
	dbPath    string
	stateSpec string
)

var rootCmd = &cobra.Command{
	Use:   "rlstats",
	Short: "Rocket League game history analysis",
	Long: `Import per-game positioning stats exported by the data service and explore
them by scoreline, goal differential or game, with filter and sort state that
persists per view and can be shared as a compact query string.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".rlstats", "games.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&stateSpec, "state", "sqlite", "where view state persists: sqlite, memory or a redis:// URL")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	for _, c := range viewCmds() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// openDB opens the database, creating its directory on first use.
func openDB() (*storage.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// openStores opens the database and the view state store. Closing the
// returned function releases both.
func openStores() (*storage.DB, prefs.Store, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := prefs.Open(stateSpec, db)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("open state store: %w", err)
	}
	return db, store, func() {
		store.Close()
		db.Close()
	}, nil
}
