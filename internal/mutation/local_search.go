package mutation

import (
	"routesolver/internal/core"
)

// LocalSearch is a mutation that refines a candidate in place with 2-opt
// segment reversals and or-opt single-job relocations, repeated a random
// number of times drawn from [MinRepeat, MaxRepeat].
type LocalSearch struct {
	MinRepeat int
	MaxRepeat int
}

func (ls LocalSearch) Run(ctx *core.RefinementContext, parent *core.Solution) (*core.Solution, error) {
	s := parent.Copy()
	before := s.JobCount()
	reps := ls.MinRepeat
	if reps < 1 {
		reps = 1
	}
	if ls.MaxRepeat > reps {
		reps = ctx.Random.Int(reps, ls.MaxRepeat)
	}
	for i := 0; i < reps; i++ {
		improved := twoOptPass(ctx.Problem, s)
		improved = orOptPass(ctx.Problem, s) || improved
		if !improved {
			break
		}
	}
	core.Evaluate(ctx.Problem, s)
	if s.JobCount() != before {
		return nil, ErrInvariantViolation
	}
	return s, nil
}

// twoOptPass reverses intra-route segments that shorten the schedule while
// staying feasible. Returns whether any route improved.
func twoOptPass(p *core.Problem, s *core.Solution) bool {
	improvedAny := false
	for ri := range s.Routes {
		r := s.Routes[ri]
		n := len(r.Jobs)
		improved := true
		for improved {
			improved = false
			for i := 0; i < n-1; i++ {
				for k := i + 1; k < n; k++ {
					cand := core.Route{Vehicle: r.Vehicle, Jobs: append([]int(nil), r.Jobs...)}
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand.Jobs[a], cand.Jobs[b] = cand.Jobs[b], cand.Jobs[a]
					}
					after, ok := core.ScheduleRoute(p, cand)
					if !ok {
						continue
					}
					beforeSched, _ := core.ScheduleRoute(p, r)
					if after.Drive+1e-6 < beforeSched.Drive {
						r = cand
						improved = true
						improvedAny = true
					}
				}
			}
		}
		s.Routes[ri] = r
	}
	return improvedAny
}

// orOptPass relocates single jobs within their route when it reduces drive
// time and keeps the schedule feasible.
func orOptPass(p *core.Problem, s *core.Solution) bool {
	improvedAny := false
	for ri := range s.Routes {
		r := s.Routes[ri]
		improved := true
		for improved {
			improved = false
			base, _ := core.ScheduleRoute(p, r)
			for i := 0; i < len(r.Jobs); i++ {
				for j := 0; j <= len(r.Jobs); j++ {
					if j == i || j == i+1 {
						continue
					}
					cand := core.Route{Vehicle: r.Vehicle, Jobs: append([]int(nil), r.Jobs...)}
					job := cand.Jobs[i]
					cand.Jobs = append(cand.Jobs[:i], cand.Jobs[i+1:]...)
					at := j
					if at > i {
						at--
					}
					cand.Jobs = append(cand.Jobs[:at], append([]int{job}, cand.Jobs[at:]...)...)
					sched, ok := core.ScheduleRoute(p, cand)
					if !ok {
						continue
					}
					if sched.Drive+1e-6 < base.Drive {
						r = cand
						base = sched
						improved = true
						improvedAny = true
					}
				}
			}
		}
		s.Routes[ri] = r
	}
	return improvedAny
}
