package cmd

import (
	"github.com/spf13/cobra"

	"lectio/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lectio",
	Short: "Classroom discourse analyzer",
	Long: "Lectio classifies teacher utterances from lesson transcripts along three\n" +
		"instructional dimensions and aggregates them into a complexity profile.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LECTIO_DB env var)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then LECTIO_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
