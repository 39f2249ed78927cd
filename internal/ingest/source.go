// Package ingest collects daily market data from configured sources,
// validates it and persists it with a quality audit trail.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/basismind/basismind/internal/contracts"
)

// ErrNotFound is returned by a source that has no data for the requested
// date. The pipeline treats it as a signal to try the next source.
var ErrNotFound = errors.New("no data for date")

// DataSource supplies one day of raw market data.
type DataSource interface {
	Fetch(ctx context.Context, date time.Time) (*contracts.MarketDataRow, error)
	Name() string
}

// ManualSource serves a fixed row regardless of date. Used for operator
// entry and tests.
type ManualSource struct {
	row contracts.MarketDataRow
}

// NewManualSource wraps a fixed row as a data source.
func NewManualSource(row contracts.MarketDataRow) *ManualSource {
	return &ManualSource{row: row}
}

func (s *ManualSource) Fetch(_ context.Context, date time.Time) (*contracts.MarketDataRow, error) {
	row := s.row
	row.Date = date
	return &row, nil
}

func (s *ManualSource) Name() string { return "manual" }

// CSVSource reads daily rows from a CSV file keyed by the date column. The
// whole file is loaded once at construction.
type CSVSource struct {
	path string
	rows map[string]contracts.MarketDataRow
}

// NewCSVSource loads the file and indexes its rows by date.
func NewCSVSource(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV source: %w", err)
	}
	defer f.Close()

	source := &CSVSource{path: path, rows: make(map[string]contracts.MarketDataRow)}
	if err := source.load(f); err != nil {
		return nil, fmt.Errorf("failed to parse CSV source %s: %w", path, err)
	}
	return source, nil
}

func (s *CSVSource) load(r io.Reader) error {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return err
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	if _, ok := idx["date"]; !ok {
		return errors.New("missing required column: date")
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		date, err := time.Parse("2006-01-02", field(record, "date"))
		if err != nil {
			return fmt.Errorf("bad date %q: %w", field(record, "date"), err)
		}

		row := contracts.MarketDataRow{Date: date}
		if row.PremiumParanagua, err = parseFloat(field(record, "premium_paranagua")); err != nil {
			return err
		}
		if row.ChicagoFront, err = parseFloat(field(record, "chicago_front")); err != nil {
			return err
		}
		if row.USDBRL, err = parseFloat(field(record, "usd_brl")); err != nil {
			return err
		}
		if row.FOBParanagua, err = parseFloat(field(record, "fob_paranagua")); err != nil {
			return err
		}
		if row.FOBUSGulf, err = parseFloat(field(record, "fob_us_gulf")); err != nil {
			return err
		}
		if row.LineupGross, err = parseInt(field(record, "lineup_gross")); err != nil {
			return err
		}
		if row.LineupNet, err = parseInt(field(record, "lineup_net")); err != nil {
			return err
		}
		if row.Cancellations7D, err = parseInt(field(record, "cancellations_7d")); err != nil {
			return err
		}
		if row.ExportsWeeklyTons, err = parseFloat(field(record, "exports_weekly_tons")); err != nil {
			return err
		}

		s.rows[date.Format("2006-01-02")] = row
	}
	return nil
}

func (s *CSVSource) Fetch(_ context.Context, date time.Time) (*contracts.MarketDataRow, error) {
	row, ok := s.rows[date.Format("2006-01-02")]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, date.Format("2006-01-02"), s.path)
	}
	return &row, nil
}

func (s *CSVSource) Name() string { return "csv:" + s.path }

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("bad numeric value %q: %w", s, err)
	}
	return &v, nil
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("bad integer value %q: %w", s, err)
	}
	return &v, nil
}
