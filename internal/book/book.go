// Package book applies position-limit guards to the post-override
// recommendations. Modulation can only pull a recommendation back to hold;
// it never amplifies one.
package book

import (
	"fmt"
	"strings"

	"github.com/basismind/basismind/internal/contracts"
)

// ModulatedResult is the outcome of checking the recommendations against the
// book: the possibly-downgraded recommendations plus an audit trail of which
// guards fired.
type ModulatedResult struct {
	Physical          contracts.PhysicalRecommendation
	Hedge             contracts.HedgeRecommendation
	PhysicalModulated bool
	HedgeModulated    bool
	Reason            *string
}

// Modulated reports whether any guard fired.
func (m ModulatedResult) Modulated() bool {
	return m.PhysicalModulated || m.HedgeModulated
}

// Modulate applies the three limit guards: an increase at the long limit and
// a decrease at the short limit both collapse to hold, as does a hedge
// increase when the hedge already exceeds target plus tolerance.
func Modulate(
	physical contracts.PhysicalRecommendation,
	hedge contracts.HedgeRecommendation,
	state contracts.BookState,
) ModulatedResult {
	result := ModulatedResult{Physical: physical, Hedge: hedge}
	var reasons []string

	if physical.Action.IsIncrease() && state.AtLongLimit() {
		result.Physical = contracts.HoldPhysical()
		result.PhysicalModulated = true
		reasons = append(reasons, fmt.Sprintf("exposure at long limit (%g%%)", state.LongLimitPct))
	}

	if physical.Action.IsDecrease() && state.AtShortLimit() {
		result.Physical = contracts.HoldPhysical()
		result.PhysicalModulated = true
		reasons = append(reasons, fmt.Sprintf("exposure at short limit (%g%%)", state.ShortLimitPct))
	}

	if hedge.Action.IsIncrease() && state.Overhedged() {
		result.Hedge = contracts.HoldHedge()
		result.HedgeModulated = true
		reasons = append(reasons, fmt.Sprintf("hedge above target plus tolerance (%g%% vs target %g%%)",
			state.HedgePct, state.HedgeMetaPct))
	}

	if len(reasons) > 0 {
		reason := strings.Join(reasons, " | ")
		result.Reason = &reason
	}
	return result
}

// EffectiveSizing clamps a requested physical sizing to the headroom the
// book actually has in that direction.
func EffectiveSizing(sizingPct float64, state contracts.BookState) float64 {
	switch {
	case sizingPct > 0:
		if headroom := state.LongHeadroom(); sizingPct > headroom {
			return headroom
		}
	case sizingPct < 0:
		if headroom := state.ShortHeadroom(); sizingPct < -headroom {
			return -headroom
		}
	}
	return sizingPct
}
