package core

// Route is one vehicle's ordered job sequence. Entries index into Problem.Jobs.
type Route struct {
	Vehicle int
	Jobs    []int
}

// Solution is one candidate: per-vehicle routes plus the set of unassigned
// jobs. A solution is owned by exactly one holder at a time; Copy before
// mutating a population entry.
type Solution struct {
	Routes     []Route
	Unassigned []int
	Locked     map[int]bool // pinned jobs ruin strategies must not remove
	Cost       float64
}

// NewSolution returns an empty candidate with every job unassigned.
func NewSolution(p *Problem) *Solution {
	s := &Solution{Routes: make([]Route, len(p.Vehicles))}
	for i := range s.Routes {
		s.Routes[i] = Route{Vehicle: i}
	}
	for j := range p.Jobs {
		s.Unassigned = append(s.Unassigned, j)
	}
	return s
}

func (s *Solution) Copy() *Solution {
	out := &Solution{
		Routes:     make([]Route, len(s.Routes)),
		Unassigned: append([]int(nil), s.Unassigned...),
		Cost:       s.Cost,
	}
	for i, r := range s.Routes {
		out.Routes[i] = Route{Vehicle: r.Vehicle, Jobs: append([]int(nil), r.Jobs...)}
	}
	if s.Locked != nil {
		out.Locked = make(map[int]bool, len(s.Locked))
		for k, v := range s.Locked {
			out.Locked[k] = v
		}
	}
	return out
}

// AssignedJobs returns all assigned job indices in route order.
func (s *Solution) AssignedJobs() []int {
	var out []int
	for _, r := range s.Routes {
		out = append(out, r.Jobs...)
	}
	return out
}

func (s *Solution) AssignedCount() int {
	n := 0
	for _, r := range s.Routes {
		n += len(r.Jobs)
	}
	return n
}

// JobCount is assigned plus unassigned; constant for a valid candidate.
func (s *Solution) JobCount() int {
	return s.AssignedCount() + len(s.Unassigned)
}

// RouteOf returns the route and position holding a job, or (-1, -1).
func (s *Solution) RouteOf(job int) (int, int) {
	for ri, r := range s.Routes {
		for pi, j := range r.Jobs {
			if j == job {
				return ri, pi
			}
		}
	}
	return -1, -1
}

// Remove moves the given jobs from routes to the unassigned set. Locked jobs
// are skipped. Returns how many jobs were actually removed.
func (s *Solution) Remove(jobs []int) int {
	rm := map[int]bool{}
	for _, j := range jobs {
		if !s.Locked[j] {
			rm[j] = true
		}
	}
	if len(rm) == 0 {
		return 0
	}
	removed := 0
	for ri := range s.Routes {
		kept := s.Routes[ri].Jobs[:0]
		for _, j := range s.Routes[ri].Jobs {
			if rm[j] {
				s.Unassigned = append(s.Unassigned, j)
				removed++
			} else {
				kept = append(kept, j)
			}
		}
		s.Routes[ri].Jobs = kept
	}
	return removed
}

// InsertAt places an unassigned job into a route at the given position.
func (s *Solution) InsertAt(route, pos, job int) {
	for i, u := range s.Unassigned {
		if u == job {
			s.Unassigned = append(s.Unassigned[:i], s.Unassigned[i+1:]...)
			break
		}
	}
	r := &s.Routes[route]
	if pos >= len(r.Jobs) {
		r.Jobs = append(r.Jobs, job)
		return
	}
	r.Jobs = append(r.Jobs[:pos+1], r.Jobs[pos:]...)
	r.Jobs[pos] = job
}
