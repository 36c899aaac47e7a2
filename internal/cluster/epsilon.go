// Package cluster groups jobs by cost proximity using density-based
// expansion, with an automatic epsilon estimator so callers never hand-tune
// the neighborhood radius.
package cluster

import (
	"math"
	"sort"
)

// EstimateEpsilon estimates the DBSCAN epsilon from per-point kth-neighbor
// distances. The distances are sorted ascending into a k-distance curve and
// the knee is the point with maximum perpendicular distance from the chord
// between the curve's first and last points. Deterministic; returns 0 for an
// empty input.
func EstimateEpsilon(distances []float64) float64 {
	if len(distances) == 0 {
		return 0
	}
	curve := append([]float64(nil), distances...)
	sort.Float64s(curve)
	first := point{0, curve[0]}
	last := point{float64(len(curve) - 1), curve[len(curve)-1]}
	best, bestDist := curve[0], math.Inf(-1)
	for i, y := range curve {
		d := point{float64(i), y}.distanceToLine(first, last)
		if d > bestDist {
			best, bestDist = y, d
		}
	}
	return best
}

type point struct{ x, y float64 }

// distanceToLine is the perpendicular distance from p to the line through a
// and b; falls back to point distance when a == b.
func (p point) distanceToLine(a, b point) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm == 0 {
		return math.Sqrt((p.x-a.x)*(p.x-a.x) + (p.y-a.y)*(p.y-a.y))
	}
	return math.Abs(dy*p.x-dx*p.y+b.x*a.y-b.y*a.x) / norm
}
