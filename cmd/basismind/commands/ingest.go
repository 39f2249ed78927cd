package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/basismind/basismind/internal/ingest"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion pipeline",
	Long: `Fetch, validate and persist market data for one date or a range.

Sources are tried in order until one has the date; secondary sources
then fill the columns the primary left empty. Every run is recorded in
the quality audit trail.

Example:
  go run ./cmd/basismind ingest --date 2026-04-15
  go run ./cmd/basismind ingest --from 2026-04-01 --to 2026-04-15`,
	RunE: runIngest,
}

var (
	ingestDate string
	ingestFrom string
	ingestTo   string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "single date (YYYY-MM-DD, default today)")
	ingestCmd.Flags().StringVar(&ingestFrom, "from", "", "range start (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&ingestTo, "to", "", "range end (YYYY-MM-DD)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	dates, err := ingestDates()
	if err != nil {
		return err
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if d.pipeline == nil {
		return errors.New("no ingestion sources configured, set SOURCE_CSV_PATH")
	}

	results := d.pipeline.RunBatch(context.Background(), dates)

	failed := 0
	for _, result := range results {
		if result.Status == ingest.StatusFailed {
			failed++
		}
		fmt.Printf("%s  %s\n", result.Date.Format("2006-01-02"), result.Status)
	}

	fmt.Printf("\n%d dates processed, %d failed\n", len(results), failed)
	if failed == len(results) {
		return errors.New("all ingestion runs failed")
	}
	return nil
}

// ingestDates resolves the date flags into the list of dates to process.
func ingestDates() ([]time.Time, error) {
	if ingestFrom == "" && ingestTo == "" {
		date, err := parseDateFlag(ingestDate)
		if err != nil {
			return nil, err
		}
		return []time.Time{date}, nil
	}

	if ingestFrom == "" || ingestTo == "" {
		return nil, errors.New("both --from and --to are required for a range")
	}

	from, err := time.Parse("2006-01-02", ingestFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q", ingestFrom)
	}
	to, err := time.Parse("2006-01-02", ingestTo)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q", ingestTo)
	}
	if to.Before(from) {
		return nil, errors.New("--to must not be before --from")
	}

	var dates []time.Time
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date)
	}
	return dates, nil
}
