package contracts

import (
	"context"
	"time"
)

// MarketDataRow is one daily row of raw market indicators as ingested.
// Nullable columns are nil pointers.
type MarketDataRow struct {
	Date              time.Time
	PremiumParanagua  *float64
	ChicagoFront      *float64
	USDBRL            *float64
	FOBParanagua      *float64
	FOBUSGulf         *float64
	LineupGross       *int
	LineupNet         *int
	Cancellations7D   *int
	ExportsWeeklyTons *float64
}

// MarketDataRepository persists and queries raw market data.
type MarketDataRepository interface {
	Upsert(ctx context.Context, row *MarketDataRow) error
	GetByDate(ctx context.Context, date time.Time) (*MarketDataRow, error)
	// GetValueDaysAgo returns a single numeric column exactly N calendar days
	// before the reference date, or nil when absent.
	GetValueDaysAgo(ctx context.Context, column string, reference time.Time, days int) (*float64, error)
}

// HistoryProvider supplies ordered numeric series for percentile and z-score
// computation. Implemented by the store; collaborator interface per the
// pipeline, which never touches storage itself.
type HistoryProvider interface {
	// Series returns up to limit most-recent non-null values of a column.
	Series(ctx context.Context, column string, limit int) ([]float64, error)
	// SeriesByRegime returns values of a column restricted to the given
	// calendar months, over a trailing number of years before the reference.
	SeriesByRegime(ctx context.Context, column string, months []time.Month, years int, before time.Time) ([]float64, error)
	// ExportsSameWeek returns weekly export volumes for the reference date's
	// ISO week over the trailing years.
	ExportsSameWeek(ctx context.Context, reference time.Time, years int) ([]float64, error)
}

// ReportRepository persists decision reports for the audit trail.
type ReportRepository interface {
	Save(ctx context.Context, report *DecisionReport) error
	GetLatest(ctx context.Context) (*DecisionReport, error)
	GetByDate(ctx context.Context, date time.Time) (*DecisionReport, error)
	List(ctx context.Context, from, to time.Time) ([]*DecisionReport, error)
}
