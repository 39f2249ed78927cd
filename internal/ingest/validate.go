package ingest

import (
	"fmt"
	"math"

	"github.com/basismind/basismind/internal/contracts"
)

// Quality thresholds.
const (
	AnomalyStdThreshold = 4.0
	MaxMissingRate      = 0.05
	anomalyMinSamples   = 30
)

// Issue severities.
const (
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Issue types.
const (
	IssueMissing         = "missing"
	IssueOutOfRange      = "out_of_range"
	IssueAnomaly         = "anomaly"
	IssueValidationError = "validation_error"
)

// ColumnSpec bounds one market data column.
type ColumnSpec struct {
	Name string
	Min  float64
	Max  float64
}

// MarketColumnSpecs are the plausibility ranges for every numeric column.
var MarketColumnSpecs = []ColumnSpec{
	{Name: "premium_paranagua", Min: -200, Max: 500},
	{Name: "chicago_front", Min: 500, Max: 2500},
	{Name: "usd_brl", Min: 3.0, Max: 10.0},
	{Name: "fob_paranagua", Min: 500, Max: 2500},
	{Name: "fob_us_gulf", Min: 500, Max: 2500},
	{Name: "lineup_gross", Min: 0, Max: 500},
	{Name: "lineup_net", Min: 0, Max: 500},
	{Name: "cancellations_7d", Min: 0, Max: 100},
	{Name: "exports_weekly_tons", Min: 0, Max: 10_000_000},
}

// anomalyColumns are the price series checked against their own history.
var anomalyColumns = []string{"premium_paranagua", "chicago_front", "usd_brl", "fob_us_gulf"}

// ValidationIssue is one finding against a row.
type ValidationIssue struct {
	Column        string
	IssueType     string
	Message       string
	ValueFound    string
	ExpectedRange string
	Severity      string
}

// columnValue returns the named column as a float pointer, nil when absent.
func columnValue(row *contracts.MarketDataRow, name string) *float64 {
	intVal := func(v *int) *float64 {
		if v == nil {
			return nil
		}
		f := float64(*v)
		return &f
	}
	switch name {
	case "premium_paranagua":
		return row.PremiumParanagua
	case "chicago_front":
		return row.ChicagoFront
	case "usd_brl":
		return row.USDBRL
	case "fob_paranagua":
		return row.FOBParanagua
	case "fob_us_gulf":
		return row.FOBUSGulf
	case "lineup_gross":
		return intVal(row.LineupGross)
	case "lineup_net":
		return intVal(row.LineupNet)
	case "cancellations_7d":
		return intVal(row.Cancellations7D)
	case "exports_weekly_tons":
		return row.ExportsWeeklyTons
	default:
		return nil
	}
}

// ValidateRange checks a value against its column spec. Nil values pass:
// every column is nullable.
func ValidateRange(value *float64, spec ColumnSpec) *ValidationIssue {
	if value == nil {
		return nil
	}
	if *value < spec.Min {
		return &ValidationIssue{
			Column:        spec.Name,
			IssueType:     IssueOutOfRange,
			Message:       fmt.Sprintf("%s=%g < min=%g", spec.Name, *value, spec.Min),
			ValueFound:    fmt.Sprintf("%g", *value),
			ExpectedRange: fmt.Sprintf("[%g, %g]", spec.Min, spec.Max),
			Severity:      SeverityWarning,
		}
	}
	if *value > spec.Max {
		return &ValidationIssue{
			Column:        spec.Name,
			IssueType:     IssueOutOfRange,
			Message:       fmt.Sprintf("%s=%g > max=%g", spec.Name, *value, spec.Max),
			ValueFound:    fmt.Sprintf("%g", *value),
			ExpectedRange: fmt.Sprintf("[%g, %g]", spec.Min, spec.Max),
			Severity:      SeverityWarning,
		}
	}
	return nil
}

// DetectAnomaly flags a value more than AnomalyStdThreshold standard
// deviations from its historical mean. Short or degenerate histories never
// flag.
func DetectAnomaly(column string, value float64, history []float64) *ValidationIssue {
	if len(history) < anomalyMinSamples {
		return nil
	}

	var sum float64
	for _, v := range history {
		sum += v
	}
	mean := sum / float64(len(history))

	var sq float64
	for _, v := range history {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(history)-1))
	if std == 0 {
		return nil
	}

	z := math.Abs(value-mean) / std
	if z <= AnomalyStdThreshold {
		return nil
	}

	return &ValidationIssue{
		Column:        column,
		IssueType:     IssueAnomaly,
		Message:       fmt.Sprintf("%s=%.2f (z=%.1f, mean=%.2f, std=%.2f)", column, value, z, mean, std),
		ValueFound:    fmt.Sprintf("%.2f", value),
		ExpectedRange: fmt.Sprintf("%gσ", AnomalyStdThreshold),
		Severity:      SeverityWarning,
	}
}

// ValidateLineupConsistency rejects a net line-up above the gross.
func ValidateLineupConsistency(gross, net *int) *ValidationIssue {
	if gross == nil || net == nil {
		return nil
	}
	if *net <= *gross {
		return nil
	}
	return &ValidationIssue{
		Column:        "lineup",
		IssueType:     IssueValidationError,
		Message:       fmt.Sprintf("lineup_net (%d) > lineup_gross (%d)", *net, *gross),
		ValueFound:    fmt.Sprintf("gross=%d, net=%d", *gross, *net),
		ExpectedRange: "net <= gross",
		Severity:      SeverityError,
	}
}

// ValidateCancellationRate rejects more cancellations than vessels.
func ValidateCancellationRate(cancellations, gross *int) *ValidationIssue {
	if cancellations == nil || gross == nil {
		return nil
	}
	if *gross == 0 {
		if *cancellations > 0 {
			return &ValidationIssue{
				Column:        "cancellations_7d",
				IssueType:     IssueValidationError,
				Message:       "positive cancellations with lineup_gross=0",
				ValueFound:    fmt.Sprintf("%d", *cancellations),
				ExpectedRange: "0-100%",
				Severity:      SeverityError,
			}
		}
		return nil
	}

	rate := float64(*cancellations) / float64(*gross)
	if rate <= 1.0 {
		return nil
	}
	return &ValidationIssue{
		Column:        "cancellations_7d",
		IssueType:     IssueOutOfRange,
		Message:       fmt.Sprintf("cancellation rate %.0f%% > 100%%", rate*100),
		ValueFound:    fmt.Sprintf("%d", *cancellations),
		ExpectedRange: "0-100%",
		Severity:      SeverityError,
	}
}

// ValidateRow runs every structural check against one row. An anomaly
// history lookup is supplied by the caller; a nil lookup skips anomaly
// detection.
func ValidateRow(row *contracts.MarketDataRow, history func(column string) []float64) []ValidationIssue {
	var issues []ValidationIssue

	for _, spec := range MarketColumnSpecs {
		if issue := ValidateRange(columnValue(row, spec.Name), spec); issue != nil {
			issues = append(issues, *issue)
		}
	}

	if issue := ValidateLineupConsistency(row.LineupGross, row.LineupNet); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := ValidateCancellationRate(row.Cancellations7D, row.LineupGross); issue != nil {
		issues = append(issues, *issue)
	}

	if history != nil {
		for _, column := range anomalyColumns {
			value := columnValue(row, column)
			if value == nil {
				continue
			}
			if issue := DetectAnomaly(column, *value, history(column)); issue != nil {
				issues = append(issues, *issue)
			}
		}
	}
	return issues
}

// MissingRate is the fraction of nil cells across the checked columns.
func MissingRate(row *contracts.MarketDataRow) float64 {
	total, missing := 0, 0
	for _, spec := range MarketColumnSpecs {
		total++
		if columnValue(row, spec.Name) == nil {
			missing++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(missing) / float64(total)
}

// HasBlockingIssue reports whether any issue severity blocks persistence.
func HasBlockingIssue(issues []ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
