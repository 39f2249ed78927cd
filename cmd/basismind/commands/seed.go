package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/internal/store"
	"github.com/basismind/basismind/internal/synthetic"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with synthetic market data",
	Long: `Generate synthetic market data and load it into the database.

Two modes:
- history: several years of plausible data, enough for the percentile
  and z-score baselines
- scenario: a shorter window biased toward a market regime
  (normal, crisis, opportunity, logistics_crisis)

Generation is seeded, so the same flags always produce the same data.

Example:
  go run ./cmd/basismind seed --years 3
  go run ./cmd/basismind seed --scenario crisis --days 90
  go run ./cmd/basismind seed --scenario opportunity --days 60 --seed 7`,
	RunE: runSeed,
}

var (
	seedScenario string
	seedYears    int
	seedDays     int
	seedSeed     int64
	seedEnd      string
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedScenario, "scenario", "", "market scenario (normal|crisis|opportunity|logistics_crisis)")
	seedCmd.Flags().IntVar(&seedYears, "years", 3, "years of history (history mode)")
	seedCmd.Flags().IntVar(&seedDays, "days", 90, "days to generate (scenario mode)")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 42, "random seed")
	seedCmd.Flags().StringVar(&seedEnd, "end", "", "last date to generate (YYYY-MM-DD, default today)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	end, err := parseDateFlag(seedEnd)
	if err != nil {
		return err
	}

	var rows []contracts.MarketDataRow
	switch {
	case seedScenario == "":
		rows = synthetic.GenerateHistory(end, seedYears, seedSeed)
	default:
		scenario := synthetic.Scenario(seedScenario)
		switch scenario {
		case synthetic.ScenarioNormal, synthetic.ScenarioCrisis,
			synthetic.ScenarioOpportunity, synthetic.ScenarioLogisticsCrisis:
		default:
			return fmt.Errorf("unknown scenario %q", seedScenario)
		}
		rows = synthetic.GenerateScenario(scenario, end, seedDays, seedSeed)
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx, d.db.Pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	start := time.Now()
	for i := range rows {
		if err := d.market.Upsert(ctx, &rows[i]); err != nil {
			return fmt.Errorf("failed to persist row %s: %w", rows[i].Date.Format("2006-01-02"), err)
		}
	}

	fmt.Printf("Seeded %d rows in %s\n", len(rows), time.Since(start).Round(time.Millisecond))
	return nil
}
