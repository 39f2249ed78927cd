package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/basismind/basismind/internal/brain"
)

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Run the decision pipeline for a date",
	Long: `Run the full decision pipeline for one reference date and print
the resulting report as JSON.

The pipeline reads the stored market data, normalizes it into signals,
scores the market, applies the hard rules and the position book, and
persists the report.

Operator inputs without a data feed are passed as flags.

Example:
  go run ./cmd/basismind decide --date 2026-04-15
  go run ./cmd/basismind decide --date 2026-04-15 --wait-days 12 --wait-weeks-above 2
  go run ./cmd/basismind decide --narrative --event "china demand confirmed"`,
	RunE: runDecide,
}

var (
	decideDate     string
	waitTimeDays   float64
	waitWeeksAbove int
	loadingRate    float64
	manualEvent    string
	narrativeEvent bool
)

func init() {
	rootCmd.AddCommand(decideCmd)

	decideCmd.Flags().StringVar(&decideDate, "date", "", "reference date (YYYY-MM-DD, default today)")
	decideCmd.Flags().Float64Var(&waitTimeDays, "wait-days", 0, "port waiting time in days")
	decideCmd.Flags().IntVar(&waitWeeksAbove, "wait-weeks-above", 0, "consecutive weeks above the waiting threshold")
	decideCmd.Flags().Float64Var(&loadingRate, "loading-rate", 0, "observed loading rate vs normal (0-1)")
	decideCmd.Flags().StringVar(&manualEvent, "event", "", "manually flagged logistics event")
	decideCmd.Flags().BoolVar(&narrativeEvent, "narrative", false, "fundamental narrative confirmed by the desk")
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

func runDecide(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(decideDate)
	if err != nil {
		return err
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	inputs := brain.OperatorInputs{
		WaitTimeWeeksAbove: waitWeeksAbove,
		ManualEvent:        manualEvent,
		NarrativeConfirmed: narrativeEvent,
	}
	if cmd.Flags().Changed("wait-days") {
		inputs.WaitTimeDays = &waitTimeDays
	}
	if cmd.Flags().Changed("loading-rate") {
		inputs.LoadingRate = &loadingRate
	}

	report, err := d.orchestrator.Decide(context.Background(), date, inputs)
	if err != nil {
		return fmt.Errorf("decision failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
