// Package synthetic generates seeded mock market data for development,
// demos and backtest seeding. Series are mean-reverting random walks with a
// harvest seasonal shape and occasional discrete events.
package synthetic

import (
	"math"
	"math/rand"
	"time"

	"github.com/basismind/basismind/internal/contracts"
)

// Base levels the walks revert around.
const (
	BasePremium      = 80.0
	BaseChicago      = 1200.0
	BaseUSDBRL       = 5.20
	BaseFOBParanagua = 480.0
	BaseFOBUSGulf    = 450.0
	BaseLineup       = 80
	BaseExports      = 2_500_000.0
)

// Generator produces daily market rows from a seeded RNG. The same seed and
// date range always produce the same series.
type Generator struct {
	rng   *rand.Rand
	state map[string]float64
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		state: make(map[string]float64),
	}
}

// SetState pre-biases one walk, shifting the whole series. Used by the
// scenario constructors.
func (g *Generator) SetState(key string, value float64) {
	g.state[key] = value
}

func (g *Generator) seasonalFactor(date time.Time) float64 {
	month := int(date.Month())
	if month >= 3 && month <= 7 {
		return 1.0 + 0.15*math.Sin(float64(month-3)*math.Pi/4)
	}
	return 0.85 + 0.1*math.Sin(float64(month-8)*math.Pi/6)
}

func (g *Generator) trendFactor(dayIndex int) float64 {
	cycle := 2 * math.Pi * float64(dayIndex) / (365 * 2)
	return 1.0 + 0.1*math.Sin(cycle)
}

func (g *Generator) randomWalk(key string, volatility float64) float64 {
	current := g.state[key]
	shock := g.rng.NormFloat64() * volatility
	next := current + shock - 0.1*current
	g.state[key] = next
	return next
}

func (g *Generator) event(prob float64) float64 {
	if g.rng.Float64() >= prob {
		return 0
	}
	direction := 1.0
	if g.rng.Intn(2) == 0 {
		direction = -1.0
	}
	return direction * (0.1 + g.rng.Float64()*0.15)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

// GenerateDay produces one row for the given date.
func (g *Generator) GenerateDay(date time.Time, dayIndex int) contracts.MarketDataRow {
	seasonal := g.seasonalFactor(date)
	trend := g.trendFactor(dayIndex)

	premiumWalk := g.randomWalk("premium", 0.03)
	premium := round(clamp(BasePremium*seasonal*trend*(1+premiumWalk+g.event(0.03)), 20, 200), 2)

	chicagoWalk := g.randomWalk("chicago", 0.015)
	chicago := round(clamp(BaseChicago*trend*(1+chicagoWalk+premiumWalk*0.3), 900, 1600), 2)

	usdWalk := g.randomWalk("usd_brl", 0.008)
	usdBRL := round(clamp(BaseUSDBRL*(1+usdWalk+g.event(0.02)), 4.5, 6.5), 4)

	// FOB tracks Chicago plus premium, cents/bu to USD/ton.
	fobParanagua := (chicago/100 + premium/100) * 36.74
	fobParanagua = round(clamp(fobParanagua*(1+g.randomWalk("fob_pnq", 0.01)), 350, 650), 2)

	spreadBase := 10.0
	if m := int(date.Month()); m >= 3 && m <= 7 {
		spreadBase = -15.0
	}
	fobGulf := round(clamp(fobParanagua+spreadBase+g.rng.NormFloat64()*5, 350, 650), 2)

	lineupWalk := g.randomWalk("lineup", 0.05)
	lineupSeasonal := 0.7
	if m := int(date.Month()); m >= 3 && m <= 6 {
		lineupSeasonal = seasonal * 1.2
	}
	gross := int(clamp(float64(BaseLineup)*lineupSeasonal*(1+lineupWalk), 30, 150))

	cancelRate := 0.05 + g.rng.Float64()*0.1
	cancellations := int(float64(gross) * cancelRate * (0.5 + g.rng.Float64()))
	if cancellations > 20 {
		cancellations = 20
	}
	net := gross - cancellations - g.rng.Intn(6)
	if net < 20 {
		net = 20
	}

	exportsWalk := g.randomWalk("exports", 0.08)
	exports := round(clamp(BaseExports*seasonal*(1+exportsWalk), 500_000, 5_000_000), 2)

	return contracts.MarketDataRow{
		Date:              date,
		PremiumParanagua:  &premium,
		ChicagoFront:      &chicago,
		USDBRL:            &usdBRL,
		FOBParanagua:      &fobParanagua,
		FOBUSGulf:         &fobGulf,
		LineupGross:       &gross,
		LineupNet:         &net,
		Cancellations7D:   &cancellations,
		ExportsWeeklyTons: &exports,
	}
}

// GenerateSeries produces rows for every weekday in [start, end].
func (g *Generator) GenerateSeries(start, end time.Time) []contracts.MarketDataRow {
	var series []contracts.MarketDataRow
	dayIndex := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			series = append(series, g.GenerateDay(current, dayIndex))
		}
		dayIndex++
	}
	return series
}

// Scenario identifies a pre-biased generation profile.
type Scenario string

const (
	ScenarioNormal          Scenario = "normal"
	ScenarioCrisis          Scenario = "crisis"
	ScenarioOpportunity     Scenario = "opportunity"
	ScenarioLogisticsCrisis Scenario = "logistics_crisis"
)

// GenerateScenario produces a series ending at end with the scenario's bias
// applied to the walks.
func GenerateScenario(scenario Scenario, end time.Time, days int, seed int64) []contracts.MarketDataRow {
	gen := NewGenerator(seed)
	switch scenario {
	case ScenarioCrisis:
		gen.SetState("lineup", -0.3)
		gen.SetState("premium", -0.2)
	case ScenarioOpportunity:
		gen.SetState("lineup", 0.25)
		gen.SetState("premium", 0.3)
	case ScenarioLogisticsCrisis:
		gen.SetState("lineup", 0.4)
		gen.SetState("exports", -0.4)
	}
	start := end.AddDate(0, 0, -days)
	return gen.GenerateSeries(start, end)
}

// GenerateHistory produces a multi-year weekday series ending at end, enough
// to back percentile and z-score windows.
func GenerateHistory(end time.Time, years int, seed int64) []contracts.MarketDataRow {
	gen := NewGenerator(seed)
	start := end.AddDate(-years, 0, 0)
	return gen.GenerateSeries(start, end)
}
