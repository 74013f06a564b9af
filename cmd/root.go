package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/store"
	"github.com/abhisek/quizgen/internal/store/pgstore"
)

var rootCmd = &cobra.Command{
	Use:          "quizgen",
	Short:        "AI quiz generator",
	Long:         "quizgen turns study material into multiple-choice questions and exports them as JSON, CSV, Moodle XML or GIFT.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZGEN_DB env var)")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (overrides QUIZGEN_DATABASE_URL; takes precedence over --db)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZGEN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openBackend opens PostgreSQL when a database URL is configured and the
// SQLite file otherwise.
func openBackend(cmd *cobra.Command) (store.Backend, error) {
	url, _ := cmd.Flags().GetString("database-url")
	if url == "" {
		url = os.Getenv("QUIZGEN_DATABASE_URL")
	}
	if url != "" {
		s, err := pgstore.Open(url)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
