package solver

import (
	"math"
	"time"

	"routesolver/internal/core"
)

// Termination decides between generations whether the run stops. Composite
// criteria are evaluated with OR semantics; absent criteria never fire.
type Termination interface {
	IsTermination(ctx *core.RefinementContext) bool
}

type maxTime struct {
	limit time.Duration
	start time.Time
}

// MaxTime stops the run once the wall-clock budget is spent, measured from
// the first termination check.
func MaxTime(limit time.Duration) Termination {
	return &maxTime{limit: limit}
}

func (t *maxTime) IsTermination(_ *core.RefinementContext) bool {
	if t.start.IsZero() {
		t.start = time.Now()
	}
	return time.Since(t.start) >= t.limit
}

type maxGenerations struct{ limit int }

// MaxGenerations stops the run after the given number of generations.
func MaxGenerations(limit int) Termination {
	return maxGenerations{limit: limit}
}

func (t maxGenerations) IsTermination(ctx *core.RefinementContext) bool {
	return ctx.Generation >= t.limit
}

type costVariation struct {
	sample int
	cv     float64
}

// CostVariation stops when the coefficient of variation (stddev/mean) of the
// best cost over the last sample generations drops to cv or below — the
// search has converged.
func CostVariation(sample int, cv float64) Termination {
	return costVariation{sample: sample, cv: cv}
}

func (t costVariation) IsTermination(ctx *core.RefinementContext) bool {
	window := ctx.BestWindow(t.sample)
	if len(window) < t.sample {
		return false
	}
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))
	if mean == 0 {
		return true
	}
	variance := 0.0
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(window))
	// tolerate summation rounding so cv=0 fires on a flat window whose mean
	// is not exactly representable
	return math.Sqrt(variance)/mean <= t.cv+1e-12
}

type composite struct{ criteria []Termination }

// CompositeTermination stops when any sub-criterion stops.
func CompositeTermination(criteria ...Termination) Termination {
	return composite{criteria: criteria}
}

func (t composite) IsTermination(ctx *core.RefinementContext) bool {
	for _, c := range t.criteria {
		if c.IsTermination(ctx) {
			return true
		}
	}
	return false
}
