package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// triggersCmd represents the triggers command
var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Check intraday re-evaluation triggers",
	Long: `Check whether any re-evaluation trigger fired for a date:
a large line-up move, a premium move beyond two standard deviations,
an active logistics restriction or a sharp reference price move.

Example:
  go run ./cmd/basismind triggers
  go run ./cmd/basismind triggers --date 2026-04-15 --logistics`,
	RunE: runTriggers,
}

var (
	triggersDate      string
	triggersLogistics bool
)

func init() {
	rootCmd.AddCommand(triggersCmd)

	triggersCmd.Flags().StringVar(&triggersDate, "date", "", "reference date (YYYY-MM-DD, default today)")
	triggersCmd.Flags().BoolVar(&triggersLogistics, "logistics", false, "a logistics restriction is currently active")
}

func runTriggers(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(triggersDate)
	if err != nil {
		return err
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	check, err := d.orchestrator.CheckTriggers(context.Background(), date, triggersLogistics)
	if err != nil {
		return fmt.Errorf("trigger check failed: %w", err)
	}

	if !check.Any() {
		fmt.Printf("No triggers fired for %s\n", date.Format("2006-01-02"))
		return nil
	}

	fmt.Printf("Triggers fired for %s:\n", date.Format("2006-01-02"))
	for _, reason := range check.Reasons() {
		fmt.Printf("  - %s\n", reason)
	}
	return nil
}
