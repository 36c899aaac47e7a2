package mutation

import (
	"math"

	"routesolver/internal/core"
)

type position struct {
	route int
	pos   int
	cost  float64
}

// evaluatePositions collects feasible insertion positions for a job, sorted
// is not required: callers track what they need. blink is the probability of
// skipping a position entirely (0 disables blinking).
func evaluatePositions(ctx *core.RefinementContext, s *core.Solution, job int, blink float64, visit func(position)) {
	for ri := range s.Routes {
		for pos := 0; pos <= len(s.Routes[ri].Jobs); pos++ {
			if blink > 0 && ctx.Random.Bool(blink) {
				continue
			}
			if !core.FeasibleAt(ctx.Problem, s, ri, pos, job) {
				continue
			}
			visit(position{route: ri, pos: pos, cost: core.InsertionCost(ctx.Problem, s, ri, pos, job)})
		}
	}
}

func bestPosition(ctx *core.RefinementContext, s *core.Solution, job int, blink float64) (position, bool) {
	best := position{cost: math.MaxFloat64}
	found := false
	evaluatePositions(ctx, s, job, blink, func(p position) {
		if p.cost < best.cost {
			best = p
			found = true
		}
	})
	return best, found
}

// insertAllCheapest repeatedly inserts the globally cheapest (job, position)
// pair. Jobs with no feasible position stay unassigned.
func insertAllCheapest(ctx *core.RefinementContext, s *core.Solution, blink float64) *core.Solution {
	for {
		bestJob := -1
		best := position{cost: math.MaxFloat64}
		for _, job := range s.Unassigned {
			if p, ok := bestPosition(ctx, s, job, blink); ok && p.cost < best.cost {
				best = p
				bestJob = job
			}
		}
		if bestJob < 0 {
			break
		}
		s.InsertAt(best.route, best.pos, bestJob)
	}
	core.Evaluate(ctx.Problem, s)
	return s
}

// CheapestRecreate inserts every unassigned job at its globally cheapest
// feasible position, cheapest pair first.
type CheapestRecreate struct{}

func (CheapestRecreate) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	return insertAllCheapest(ctx, s, 0)
}

// BlinksRecreate is cheapest insertion that skips each candidate position
// with a small probability, trading optimality for diversity.
type BlinksRecreate struct {
	Blink float64
}

func (r BlinksRecreate) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	blink := r.Blink
	if blink <= 0 {
		blink = 0.01
	}
	return insertAllCheapest(ctx, s, blink)
}

// RegretRecreate inserts jobs in descending regret order: the cost gap
// between a job's best and kth-best position, k drawn from [Start, End] per
// call.
type RegretRecreate struct {
	Start, End int
}

func (r RegretRecreate) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	k := r.Start
	if r.End > r.Start {
		k = ctx.Random.Int(r.Start, r.End)
	}
	if k < 2 {
		k = 2
	}
	for {
		bestJob := -1
		bestRegret := -1.0
		var bestPos position
		for _, job := range s.Unassigned {
			costs := make([]float64, 0, k)
			best := position{cost: math.MaxFloat64}
			found := false
			evaluatePositions(ctx, s, job, 0, func(p position) {
				costs = insertSorted(costs, p.cost, k)
				if p.cost < best.cost {
					best = p
					found = true
				}
			})
			if !found {
				continue
			}
			regret := 0.0
			if len(costs) == k {
				regret = costs[k-1] - costs[0]
			} else {
				// fewer than k feasible positions: maximal urgency
				regret = math.MaxFloat64 / 2
			}
			if regret > bestRegret {
				bestRegret = regret
				bestJob = job
				bestPos = best
			}
		}
		if bestJob < 0 {
			break
		}
		s.InsertAt(bestPos.route, bestPos.pos, bestJob)
	}
	core.Evaluate(ctx.Problem, s)
	return s
}

// insertSorted keeps the k smallest costs in ascending order.
func insertSorted(costs []float64, c float64, k int) []float64 {
	i := len(costs)
	for i > 0 && costs[i-1] > c {
		i--
	}
	if len(costs) < k {
		costs = append(costs, 0)
	} else if i == len(costs) {
		return costs
	}
	copy(costs[i+1:], costs[i:])
	costs[i] = c
	return costs
}

// GapsRecreate prefers insertion positions that leave at least MinGap
// seconds of slack before the job's window closes, falling back to the full
// search when no position qualifies.
type GapsRecreate struct {
	MinGap float64
}

func (r GapsRecreate) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	for {
		bestJob := -1
		best := position{cost: math.MaxFloat64}
		gapOnly := true
		for pass := 0; pass < 2 && bestJob < 0; pass++ {
			gapOnly = pass == 0
			for _, job := range s.Unassigned {
				evaluatePositions(ctx, s, job, 0, func(p position) {
					if gapOnly && slackAt(ctx.Problem, s, p.route, p.pos, job) < r.MinGap {
						return
					}
					if p.cost < best.cost {
						best = p
						bestJob = job
					}
				})
			}
		}
		if bestJob < 0 {
			break
		}
		s.InsertAt(best.route, best.pos, bestJob)
	}
	core.Evaluate(ctx.Problem, s)
	return s
}

// slackAt returns the seconds between arrival at a prospective position and
// the job's window end; unbounded when the job carries no window.
func slackAt(p *core.Problem, s *core.Solution, route, pos, job int) float64 {
	if p.Jobs[job].TW == nil {
		return math.MaxFloat64
	}
	r := s.Routes[route]
	tmp := core.Route{Vehicle: r.Vehicle, Jobs: append(append([]int(nil), r.Jobs[:pos]...), job)}
	sched, _ := core.ScheduleRoute(p, tmp)
	arrival := sched.Drive // waiting folded into Drive is close enough for a bias
	return p.Jobs[job].TW.End - arrival
}

// NearestRecreate inserts each unassigned job next to its geometrically
// nearest assigned job, falling back to the cheapest feasible position.
type NearestRecreate struct{}

func (NearestRecreate) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	pending := append([]int(nil), s.Unassigned...)
	for _, job := range pending {
		ri, pi := nearestAssigned(ctx.Problem, s, job)
		inserted := false
		if ri >= 0 {
			for _, pos := range []int{pi + 1, pi} {
				if core.FeasibleAt(ctx.Problem, s, ri, pos, job) {
					s.InsertAt(ri, pos, job)
					inserted = true
					break
				}
			}
		}
		if !inserted {
			if p, ok := bestPosition(ctx, s, job, 0); ok {
				s.InsertAt(p.route, p.pos, job)
			}
		}
	}
	core.Evaluate(ctx.Problem, s)
	return s
}

func nearestAssigned(p *core.Problem, s *core.Solution, job int) (int, int) {
	bestR, bestP := -1, -1
	best := math.MaxFloat64
	for ri, r := range s.Routes {
		for pi, j := range r.Jobs {
			if d := p.Distance(job, j); d < best {
				best = d
				bestR, bestP = ri, pi
			}
		}
	}
	return bestR, bestP
}
