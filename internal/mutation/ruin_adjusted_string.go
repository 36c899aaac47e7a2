package mutation

import (
	"math"

	"routesolver/internal/core"
)

// AdjustedStringRemoval removes contiguous route segments ("strings") around
// a seed job and its neighbors, following the slack-induction string removal
// procedure: string length is capped by Lmax and by average route
// cardinality, the string count is derived from Cavg, and Alpha controls how
// often a substring in the middle of a string is preserved ("split string").
type AdjustedStringRemoval struct {
	Lmax  int     // max string cardinality
	Cavg  int     // average number of removed customers
	Alpha float64 // split-string preservation factor
}

func NewAdjustedStringRemoval() AdjustedStringRemoval {
	return AdjustedStringRemoval{Lmax: 10, Cavg: 10, Alpha: 0.01}
}

func (r AdjustedStringRemoval) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	assigned := s.AssignedJobs()
	if len(assigned) == 0 {
		return s
	}
	routes := 0
	for _, rt := range s.Routes {
		if len(rt.Jobs) > 0 {
			routes++
		}
	}
	avgCard := float64(len(assigned)) / float64(routes)
	lsMax := math.Min(float64(r.Lmax), avgCard)
	ksMax := 4*float64(r.Cavg)/(1+lsMax) - 1
	if ksMax < 1 {
		ksMax = 1
	}
	ks := int(math.Floor(ctx.Random.Float(1, ksMax+1)))

	seed := assigned[ctx.Random.Int(0, len(assigned)-1)]
	profile := ctx.Random.Int(0, len(ctx.Problem.Profiles)-1)

	ruined := map[int]bool{} // route index -> already had a string removed
	var victims []int
	tryRuin := func(job int) {
		ri, pi := s.RouteOf(job)
		if ri < 0 || ruined[ri] {
			return
		}
		ruined[ri] = true
		victims = append(victims, r.selectString(ctx, s.Routes[ri].Jobs, pi, int(lsMax))...)
	}
	tryRuin(seed)
	for _, nb := range ctx.Problem.Neighbors(profile, seed) {
		if len(ruined) >= ks {
			break
		}
		tryRuin(nb.Job)
	}
	s.Remove(victims)
	return s
}

// selectString picks a contiguous run of jobs around pos. With probability
// derived from Alpha it removes a split string instead, preserving a random
// substring in the middle.
func (r AdjustedStringRemoval) selectString(ctx *core.RefinementContext, route []int, pos, lsMax int) []int {
	l := ctx.Random.Int(1, min(lsMax, len(route)))
	start := pos - ctx.Random.Int(0, l-1)
	if start < 0 {
		start = 0
	}
	if start+l > len(route) {
		start = len(route) - l
	}
	str := route[start : start+l]
	if l <= 2 || !ctx.Random.Bool(0.5) {
		return append([]int(nil), str...)
	}
	// split string: preserve a substring whose length grows geometrically
	// (Alpha is the per-step stop probability), remove the rest
	keep := 1
	for keep < l-1 && !ctx.Random.Bool(r.Alpha) {
		keep++
	}
	keepAt := ctx.Random.Int(0, l-keep)
	out := make([]int, 0, l-keep)
	out = append(out, str[:keepAt]...)
	out = append(out, str[keepAt+keep:]...)
	return out
}
