package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/llm"
	"lectio/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.Events().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-24s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 110))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-24s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 24),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		stats, err := s.Events().Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No model usage recorded yet.")
			return nil
		}

		fmt.Println("Usage by Provider/Model")
		fmt.Println(strings.Repeat("─", 96))
		fmt.Printf("%-12s  %-28s  %6s  %5s  %10s  %10s  %8s  %9s\n",
			"Provider", "Model", "Calls", "Fail", "Input", "Output", "Avg Ms", "Cost")
		fmt.Println(strings.Repeat("─", 96))

		var totalCost float64
		var unknownModels []string
		for _, st := range stats {
			costCol := "?"
			if cost := llm.LookupCost(st.Model); cost != nil {
				c := cost.Cost(int(st.InputTokens), int(st.OutputTokens))
				totalCost += c
				costCol = formatCost(c)
			} else {
				unknownModels = append(unknownModels, st.Model)
			}
			fmt.Printf("%-12s  %-28s  %6d  %5d  %10d  %10d  %8d  %9s\n",
				st.Provider, truncate(st.Model, 28), st.Calls, st.Failures,
				st.InputTokens, st.OutputTokens, st.MeanLatency.Milliseconds(), costCol)
		}

		fmt.Println(strings.Repeat("─", 96))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-12s  %79s\n", label, formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. classify:stage, classify:level)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
