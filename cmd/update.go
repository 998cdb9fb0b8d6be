package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lectio/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update lectio to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkOnly, _ := cmd.Flags().GetBool("check")

		checker := selfupdate.NewChecker(selfupdate.WithTimeout(2 * time.Minute))
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		current := resolvedVersion()

		if checkOnly {
			return runUpdateCheck(ctx, checker, current)
		}

		err := checker.Update(ctx, &selfupdate.UpdateInput{CurrentVersion: current},
			func(p selfupdate.UpdateProgress) { fmt.Println(p.Message) })
		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Println("Already running the latest version.")
			return nil
		case os.IsPermission(err):
			return fmt.Errorf("%w\n\nTry running: sudo lectio update", err)
		default:
			return err
		}
	},
}

// runUpdateCheck reports whether a newer release exists without
// touching the installed binary.
func runUpdateCheck(ctx context.Context, checker *selfupdate.Checker, current string) error {
	result, err := checker.Check(ctx, &selfupdate.CheckInput{Version: current})
	if errors.Is(err, selfupdate.ErrDevBuild) {
		fmt.Println("Development build; release checks are skipped.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}
	if !result.UpdateAvailable {
		fmt.Printf("Already running the latest version (%s).\n", result.CurrentVersion)
		return nil
	}
	fmt.Printf("Update available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
	if result.ReleaseURL != "" {
		fmt.Println("Release notes:", result.ReleaseURL)
	}
	fmt.Println("Run 'lectio update' to install it.")
	return nil
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only check whether a newer release exists")
}
