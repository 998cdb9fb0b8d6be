package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/checklist"
	"lectio/internal/taxonomy"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Inspect the classification criteria",
}

var checklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every dimension/label checklist",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadChecklists(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("%-10s  %-14s  %s\n", "Dimension", "Label", "Criteria")
		fmt.Println(strings.Repeat("─", 40))
		for _, dim := range taxonomy.Dimensions() {
			for _, label := range repo.Labels(dim) {
				c, err := repo.Get(dim, label)
				if err != nil {
					return err
				}
				fmt.Printf("%-10s  %-14s  %d\n", dim, label, len(c.Items))
			}
		}
		return nil
	},
}

var checklistShowCmd = &cobra.Command{
	Use:   "show <dimension> [label]",
	Short: "Show the criteria for a dimension, or one of its labels",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dim, ok := taxonomy.ParseDimension(args[0])
		if !ok {
			return fmt.Errorf("unknown dimension %q", args[0])
		}

		repo, err := loadChecklists(cmd)
		if err != nil {
			return err
		}

		labels := repo.Labels(dim)
		if len(args) == 2 {
			labels = []string{args[1]}
		}

		for i, label := range labels {
			c, err := repo.Get(dim, label)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Println()
			}
			printChecklist(c)
		}
		return nil
	},
}

func printChecklist(c *checklist.Checklist) {
	fmt.Printf("%s / %s\n", c.Dimension, c.Label)
	fmt.Println(strings.Repeat("─", 60))
	for _, item := range c.Items {
		fmt.Printf("\n[%s] %s\n", item.ID, item.Question)
		for _, ex := range item.PositiveExamples {
			fmt.Printf("  matches:        %s\n", ex)
		}
		for _, ex := range item.NegativeExamples {
			fmt.Printf("  does not match: %s\n", ex)
		}
	}
}

func loadChecklists(cmd *cobra.Command) (*checklist.Repository, error) {
	dir, _ := cmd.Flags().GetString("checklist-dir")

	repo := checklist.NewRepository()
	if dir != "" {
		if err := repo.LoadDir(dir); err != nil {
			return nil, fmt.Errorf("load checklists: %w", err)
		}
	}
	if err := repo.Validate(); err != nil {
		return nil, fmt.Errorf("validate checklists: %w", err)
	}
	return repo, nil
}

func init() {
	checklistCmd.PersistentFlags().String("checklist-dir", "", "Directory of YAML checklist overrides")

	checklistCmd.AddCommand(checklistListCmd)
	checklistCmd.AddCommand(checklistShowCmd)
}
