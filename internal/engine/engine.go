// Package engine runs the full decision pipeline for one market day:
// scoring, override evaluation, book modulation and report assembly. The
// pipeline is a pure function of the observation and the book state; the same
// pair always produces the same report.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/basismind/basismind/internal/book"
	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/internal/overrides"
	"github.com/basismind/basismind/internal/scoring"
	"github.com/basismind/basismind/pkg/logger"
)

// Default book limits used when the caller supplies none.
const (
	DefaultLongLimitPct  = 80.0
	DefaultShortLimitPct = -50.0
	DefaultHedgeMetaPct  = 60.0
)

// DefaultBook returns a flat book with the default limits.
func DefaultBook() contracts.BookState {
	return contracts.BookState{
		ExposurePct:   0,
		LongLimitPct:  DefaultLongLimitPct,
		ShortLimitPct: DefaultShortLimitPct,
		HedgePct:      0,
		HedgeMetaPct:  DefaultHedgeMetaPct,
	}
}

// Run executes the pipeline: score the observation, apply the hard rules,
// modulate against the book and assemble the report.
func Run(obs contracts.MarketObservation, state contracts.BookState) contracts.DecisionReport {
	scored := scoring.Compute(obs)
	eval := overrides.Evaluate(obs, scored.Physical, scored.Hedge)
	modulated := book.Modulate(eval.FinalPhysical, eval.FinalHedge, state)
	effectiveSizing := book.EffectiveSizing(modulated.Physical.SizingPct, state)

	physical := modulated.Physical
	physical.SizingPct = contracts.Round1(effectiveSizing)
	hedge := modulated.Hedge
	hedge.DeltaPP = contracts.Round1(hedge.DeltaPP)

	report := contracts.DecisionReport{
		ReferenceDate:  obs.ReferenceDate,
		Score:          contracts.Round1(scored.Score),
		Classification: scored.Classification,
		Physical:       physical,
		Hedge:          hedge,
		Components: contracts.ReportComponents{
			Lineup: contracts.LineupComponent{
				Score:        contracts.Round1(scored.Components.Lineup),
				VarWeeklyPct: contracts.Round1(deref(obs.LineupWeeklyChangePct)),
			},
			Premium: contracts.PremiumComponent{
				Score:      contracts.Round1(scored.Components.Premium),
				Percentile: contracts.Round1(obs.PremiumPercentile),
			},
			Competitiveness: contracts.CompetitivenessComponent{
				Score:          contracts.Round1(scored.Components.Competitiveness),
				SpreadAdjusted: contracts.Round1(obs.SpreadAdjusted),
			},
			Demand: contracts.DemandComponent{
				Score: contracts.Round1(scored.Components.Demand),
				ZPace: contracts.Round1(deref(obs.DemandZPace)),
			},
			FX: contracts.FXComponent{
				Score:    contracts.Round1(scored.Components.FX),
				Var5DPct: contracts.Round1(deref(obs.FXChange5DPct)),
			},
		},
		ActiveOverrides:   eval.ActiveKinds(),
		ModulationApplied: modulated.Modulated(),
		ModulationReason:  modulated.Reason,
		Justification:     buildJustification(scored, eval, modulated),
	}

	if eval.Dominant != nil {
		kind := eval.Dominant.Kind
		report.DominantOverride = &kind
	}
	return report
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// buildJustification renders the one-line audit trail: score band, the two
// primary score drivers furthest from neutral, the override outcome when one
// fired, the modulation trail and the final action pair.
func buildJustification(
	scored contracts.ScoringResult,
	eval contracts.OverrideEvaluation,
	modulated book.ModulatedResult,
) string {
	parts := []string{
		fmt.Sprintf("physical %s (score %.0f)", scored.Classification, scored.Score),
	}

	type driver struct {
		name  string
		score float64
	}
	drivers := []driver{
		{"lineup", scored.Components.Lineup},
		{"premium", scored.Components.Premium},
		{"competitiveness", scored.Components.Competitiveness},
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		di := drivers[i].score - 50
		dj := drivers[j].score - 50
		if di < 0 {
			di = -di
		}
		if dj < 0 {
			dj = -dj
		}
		return di > dj
	})

	labels := make([]string, 0, 2)
	for _, d := range drivers[:2] {
		direction := "neutral"
		if d.score > 65 {
			direction = "strong"
		} else if d.score < 35 {
			direction = "weak"
		}
		labels = append(labels, d.name+" "+direction)
	}
	parts = append(parts, "drivers: "+strings.Join(labels, ", "))

	if eval.HasOverride() {
		parts = append(parts, overrides.Justification(eval))
	}
	if modulated.Reason != nil {
		parts = append(parts, "modulation: "+*modulated.Reason)
	}

	parts = append(parts, fmt.Sprintf("recommendation: %s (physical), %s (hedge)",
		modulated.Physical.Action, modulated.Hedge.Action))

	return strings.Join(parts, " | ")
}

// Engine wraps the pipeline with a mutable book and a record of the last run.
// Safe for concurrent use.
type Engine struct {
	mu         sync.RWMutex
	book       contracts.BookState
	lastReport *contracts.DecisionReport
	log        *logger.Logger
}

// New creates an engine over the given book.
func New(state contracts.BookState, log *logger.Logger) *Engine {
	return &Engine{book: state, log: log}
}

// Book returns the current book state.
func (e *Engine) Book() contracts.BookState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book
}

// UpdateBook replaces the book state used by subsequent runs.
func (e *Engine) UpdateBook(state contracts.BookState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.book = state
}

// LastReport returns the most recent report, or nil before the first run.
func (e *Engine) LastReport() *contracts.DecisionReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastReport
}

// Run executes the pipeline against the engine's book and records the result.
func (e *Engine) Run(obs contracts.MarketObservation) contracts.DecisionReport {
	e.mu.Lock()
	state := e.book
	e.mu.Unlock()

	report := Run(obs, state)

	e.mu.Lock()
	e.lastReport = &report
	e.mu.Unlock()

	e.log.WithFields(map[string]interface{}{
		"date":     report.ReferenceDate.String(),
		"score":    report.Score,
		"physical": string(report.Physical.Action),
		"hedge":    string(report.Hedge.Action),
	}).Info("Decision pipeline run complete")

	return report
}
