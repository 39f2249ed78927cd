package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basismind/basismind/internal/contracts"
)

// marketColumns whitelists the numeric columns a caller may query by name.
// The column name is interpolated into SQL, so only these pass.
var marketColumns = map[string]bool{
	"premium_paranagua":   true,
	"chicago_front":       true,
	"usd_brl":             true,
	"fob_paranagua":       true,
	"fob_us_gulf":         true,
	"exports_weekly_tons": true,
}

// ErrUnknownColumn is returned when a by-name query names a column outside
// the whitelist.
var ErrUnknownColumn = errors.New("unknown market data column")

// MarketRepository implements contracts.MarketDataRepository and
// contracts.HistoryProvider on PostgreSQL.
type MarketRepository struct {
	pool *pgxpool.Pool
}

// NewMarketRepository creates a new market data repository.
func NewMarketRepository(pool *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

// Upsert inserts or replaces the row for its date.
func (r *MarketRepository) Upsert(ctx context.Context, row *contracts.MarketDataRow) error {
	query := `
		INSERT INTO market_data (
			date, premium_paranagua, chicago_front, usd_brl, fob_paranagua,
			fob_us_gulf, lineup_gross, lineup_net, cancellations_7d, exports_weekly_tons
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date) DO UPDATE SET
			premium_paranagua = EXCLUDED.premium_paranagua,
			chicago_front = EXCLUDED.chicago_front,
			usd_brl = EXCLUDED.usd_brl,
			fob_paranagua = EXCLUDED.fob_paranagua,
			fob_us_gulf = EXCLUDED.fob_us_gulf,
			lineup_gross = EXCLUDED.lineup_gross,
			lineup_net = EXCLUDED.lineup_net,
			cancellations_7d = EXCLUDED.cancellations_7d,
			exports_weekly_tons = EXCLUDED.exports_weekly_tons,
			updated_at = now()
	`

	_, err := r.pool.Exec(ctx, query,
		row.Date, row.PremiumParanagua, row.ChicagoFront, row.USDBRL,
		row.FOBParanagua, row.FOBUSGulf, row.LineupGross, row.LineupNet,
		row.Cancellations7D, row.ExportsWeeklyTons,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert market data for %s: %w",
			row.Date.Format("2006-01-02"), err)
	}
	return nil
}

// GetByDate retrieves the row for a date, or nil when absent.
func (r *MarketRepository) GetByDate(ctx context.Context, date time.Time) (*contracts.MarketDataRow, error) {
	query := `
		SELECT date, premium_paranagua, chicago_front, usd_brl, fob_paranagua,
			fob_us_gulf, lineup_gross, lineup_net, cancellations_7d, exports_weekly_tons
		FROM market_data
		WHERE date = $1
	`

	var row contracts.MarketDataRow
	err := r.pool.QueryRow(ctx, query, date).Scan(
		&row.Date, &row.PremiumParanagua, &row.ChicagoFront, &row.USDBRL,
		&row.FOBParanagua, &row.FOBUSGulf, &row.LineupGross, &row.LineupNet,
		&row.Cancellations7D, &row.ExportsWeeklyTons,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market data: %w", err)
	}
	return &row, nil
}

// GetValueDaysAgo returns one column's value exactly N calendar days before
// the reference date, or nil when no row or null value exists there.
func (r *MarketRepository) GetValueDaysAgo(ctx context.Context, column string, reference time.Time, days int) (*float64, error) {
	if !marketColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM market_data
		WHERE date = $1::date - $2::int
	`, column)

	var value *float64
	err := r.pool.QueryRow(ctx, query, reference, days).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %dd before %s: %w",
			column, days, reference.Format("2006-01-02"), err)
	}
	return value, nil
}

// Series returns up to limit most-recent non-null values of a column, newest
// first.
func (r *MarketRepository) Series(ctx context.Context, column string, limit int) ([]float64, error) {
	if !marketColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM market_data
		WHERE %s IS NOT NULL
		ORDER BY date DESC
		LIMIT $1
	`, column, column)

	return r.queryFloats(ctx, query, limit)
}

// SeriesByRegime returns a column's values restricted to the given calendar
// months over the trailing years before the reference date.
func (r *MarketRepository) SeriesByRegime(ctx context.Context, column string, months []time.Month, years int, before time.Time) ([]float64, error) {
	if !marketColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	monthNums := make([]int, len(months))
	for i, m := range months {
		monthNums[i] = int(m)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM market_data
		WHERE %s IS NOT NULL
		  AND EXTRACT(MONTH FROM date)::int = ANY($1)
		  AND date >= $2::date - ($3::int * INTERVAL '1 year')
		  AND date < $2::date
		ORDER BY date DESC
	`, column, column)

	return r.queryFloats(ctx, query, monthNums, before, years)
}

// ExportsSameWeek returns weekly export volumes for the reference date's ISO
// week over the trailing years.
func (r *MarketRepository) ExportsSameWeek(ctx context.Context, reference time.Time, years int) ([]float64, error) {
	_, week := reference.ISOWeek()

	query := `
		SELECT exports_weekly_tons FROM market_data
		WHERE exports_weekly_tons IS NOT NULL
		  AND EXTRACT(WEEK FROM date)::int = $1
		  AND date >= $2::date - ($3::int * INTERVAL '1 year')
		  AND date < $2::date
		ORDER BY date DESC
	`

	return r.queryFloats(ctx, query, week, reference, years)
}

func (r *MarketRepository) queryFloats(ctx context.Context, query string, args ...interface{}) ([]float64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan series value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
