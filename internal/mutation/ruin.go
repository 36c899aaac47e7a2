package mutation

import (
	"sort"

	"routesolver/internal/core"
)

// RandomJobRemoval removes a uniform random subset of assigned jobs sized by
// the removal limit.
type RandomJobRemoval struct {
	Limit core.RemovalLimit
}

func (r RandomJobRemoval) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	assigned := s.AssignedJobs()
	n := r.Limit.Count(len(assigned))
	if n == 0 {
		return s
	}
	ctx.Random.Shuffle(len(assigned), func(i, j int) { assigned[i], assigned[j] = assigned[j], assigned[i] })
	s.Remove(assigned[:n])
	return s
}

// NeighbourRemoval removes a seed job and its nearest neighbors by cost
// under a random fleet profile.
type NeighbourRemoval struct {
	Limit core.RemovalLimit
}

func (r NeighbourRemoval) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	assigned := s.AssignedJobs()
	n := r.Limit.Count(len(assigned))
	if n == 0 {
		return s
	}
	seed := assigned[ctx.Random.Int(0, len(assigned)-1)]
	profile := ctx.Random.Int(0, len(ctx.Problem.Profiles)-1)
	inSolution := map[int]bool{}
	for _, j := range assigned {
		inSolution[j] = true
	}
	victims := []int{seed}
	for _, nb := range ctx.Problem.Neighbors(profile, seed) {
		if len(victims) >= n {
			break
		}
		if inSolution[nb.Job] {
			victims = append(victims, nb.Job)
		}
	}
	s.Remove(victims)
	return s
}

// WorstJobRemoval ranks assigned jobs by the cost saved when removed and
// removes from the top, skipping a random number of the worst entries so the
// same outliers are not re-removed every pass.
type WorstJobRemoval struct {
	Skip  int
	Limit core.RemovalLimit
}

func (r WorstJobRemoval) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	type ranked struct {
		job  int
		gain float64
	}
	var all []ranked
	for ri, route := range s.Routes {
		for pi, j := range route.Jobs {
			all = append(all, ranked{job: j, gain: core.RemovalGain(ctx.Problem, s, ri, pi)})
		}
	}
	n := r.Limit.Count(len(all))
	if n == 0 {
		return s
	}
	sort.Slice(all, func(a, b int) bool { return all[a].gain > all[b].gain })
	skip := 0
	if r.Skip > 0 {
		skip = ctx.Random.Int(0, r.Skip)
	}
	if skip > len(all)-n {
		skip = len(all) - n
	}
	if skip < 0 {
		skip = 0
	}
	victims := make([]int, 0, n)
	for _, e := range all[skip:] {
		if len(victims) >= n {
			break
		}
		victims = append(victims, e.job)
	}
	s.Remove(victims)
	return s
}

// RandomRouteRemoval clears all work from a random subset of non-empty
// routes; its limit counts routes, not jobs.
type RandomRouteRemoval struct {
	Limit core.RemovalLimit
}

func (r RandomRouteRemoval) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	var nonEmpty []int
	for ri := range s.Routes {
		if len(s.Routes[ri].Jobs) > 0 {
			nonEmpty = append(nonEmpty, ri)
		}
	}
	n := r.Limit.Count(len(nonEmpty))
	if n == 0 {
		return s
	}
	ctx.Random.Shuffle(len(nonEmpty), func(i, j int) { nonEmpty[i], nonEmpty[j] = nonEmpty[j], nonEmpty[i] })
	var victims []int
	for _, ri := range nonEmpty[:n] {
		victims = append(victims, s.Routes[ri].Jobs...)
	}
	s.Remove(victims)
	return s
}
