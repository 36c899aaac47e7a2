package core

// Schedule aggregates the cost components of one route.
type Schedule struct {
	Drive float64 // seconds
	Dist  float64 // meters
	Late  float64 // seconds past time window ends
}

// Evaluate computes and stores the weighted cost of a candidate. Unassigned
// jobs carry a heavy penalty so that recreate failures surface in fitness
// instead of errors.
func Evaluate(p *Problem, s *Solution) float64 {
	wDrive := p.Objectives["driveTime"]
	if wDrive == 0 {
		wDrive = 1
	}
	wDist := p.Objectives["distance"]
	wLate := p.Objectives["lateness"]
	if wLate == 0 {
		wLate = 1
	}
	wUnassigned := p.Objectives["unassigned"]
	if wUnassigned == 0 {
		wUnassigned = 1
	}
	total := 0.0
	for _, r := range s.Routes {
		sched, _ := ScheduleRoute(p, r)
		total += wDrive*sched.Drive + wDist*sched.Dist + wLate*sched.Late
	}
	total += wUnassigned * float64(len(s.Unassigned)) * 3600 // one lost hour per dropped job
	s.Cost = total
	return total
}

// ScheduleRoute propagates arrival times along a route. Arrivals before a
// window start wait; arrivals after a window end mark the route infeasible
// and accumulate lateness.
func ScheduleRoute(p *Problem, r Route) (Schedule, bool) {
	v := p.Vehicles[r.Vehicle]
	var out Schedule
	feasible := true
	t := 0.0
	prev := -1
	speed := p.Profiles[v.Profile].SpeedKph / 3.6
	var curLat, curLng float64
	if v.Start != nil {
		curLat, curLng = v.Start.Lat, v.Start.Lng
	} else if len(r.Jobs) > 0 {
		loc := p.Jobs[r.Jobs[0]].Location
		curLat, curLng = loc.Lat, loc.Lng
	}
	for _, j := range r.Jobs {
		nd := p.Jobs[j]
		var d, drive float64
		if prev >= 0 {
			d = p.Distance(prev, j)
			drive = p.Cost(v.Profile, prev, j)
		} else {
			d = Haversine(curLat, curLng, nd.Location.Lat, nd.Location.Lng)
			drive = d / speed
		}
		t += drive
		out.Drive += drive
		out.Dist += d
		if nd.TW != nil {
			if t < nd.TW.Start {
				t = nd.TW.Start
			}
			if t > nd.TW.End {
				out.Late += t - nd.TW.End
				feasible = false
			}
		}
		t += nd.ServiceSec
		prev = j
	}
	if v.End != nil && prev >= 0 {
		loc := p.Jobs[prev].Location
		d := Haversine(loc.Lat, loc.Lng, v.End.Lat, v.End.Lng)
		out.Drive += d / speed
		out.Dist += d
	}
	return out, feasible
}

// FeasibleAt reports whether a job can be inserted into a route at pos under
// hard constraints: capacity, skills and time window propagation.
func FeasibleAt(p *Problem, s *Solution, route, pos, job int) bool {
	r := s.Routes[route]
	if pos < 0 || pos > len(r.Jobs) {
		return false
	}
	v := p.Vehicles[r.Vehicle]
	w, vol := p.Jobs[job].Demand.Weight, p.Jobs[job].Demand.Volume
	for _, j := range r.Jobs {
		w += p.Jobs[j].Demand.Weight
		vol += p.Jobs[j].Demand.Volume
	}
	if v.CapWeight > 0 && w > v.CapWeight {
		return false
	}
	if v.CapVolume > 0 && vol > v.CapVolume {
		return false
	}
	if len(p.Jobs[job].Skills) > 0 {
		have := map[string]bool{}
		for _, sk := range v.Skills {
			have[sk] = true
		}
		for _, sk := range p.Jobs[job].Skills {
			if !have[sk] {
				return false
			}
		}
	}
	tmp := Route{Vehicle: r.Vehicle, Jobs: make([]int, 0, len(r.Jobs)+1)}
	tmp.Jobs = append(tmp.Jobs, r.Jobs[:pos]...)
	tmp.Jobs = append(tmp.Jobs, job)
	tmp.Jobs = append(tmp.Jobs, r.Jobs[pos:]...)
	_, ok := ScheduleRoute(p, tmp)
	return ok
}

// InsertionCost approximates the marginal cost of inserting a job at a route
// position: prev->new + new->next - prev->next plus service time.
func InsertionCost(p *Problem, s *Solution, route, pos, job int) float64 {
	r := s.Routes[route]
	v := p.Vehicles[r.Vehicle]
	nd := p.Jobs[job]
	var prevCost func(to int) float64
	if pos > 0 {
		prev := r.Jobs[pos-1]
		prevCost = func(to int) float64 { return p.Cost(v.Profile, prev, to) }
	} else if v.Start != nil {
		speed := p.Profiles[v.Profile].SpeedKph / 3.6
		st := *v.Start
		prevCost = func(to int) float64 {
			loc := p.Jobs[to].Location
			return Haversine(st.Lat, st.Lng, loc.Lat, loc.Lng) / speed
		}
	} else {
		prevCost = func(int) float64 { return 0 }
	}
	add := prevCost(job)
	if pos < len(r.Jobs) {
		next := r.Jobs[pos]
		add += p.Cost(v.Profile, job, next) - prevCost(next)
	}
	return add + nd.ServiceSec
}

// RemovalGain is the cost saved by removing the job at pos from a route: the
// inverse of InsertionCost against the neighboring stops.
func RemovalGain(p *Problem, s *Solution, route, pos int) float64 {
	r := s.Routes[route]
	v := p.Vehicles[r.Vehicle]
	job := r.Jobs[pos]
	gain := p.Jobs[job].ServiceSec
	if pos > 0 {
		gain += p.Cost(v.Profile, r.Jobs[pos-1], job)
	}
	if pos < len(r.Jobs)-1 {
		gain += p.Cost(v.Profile, job, r.Jobs[pos+1])
	}
	if pos > 0 && pos < len(r.Jobs)-1 {
		gain -= p.Cost(v.Profile, r.Jobs[pos-1], r.Jobs[pos+1])
	}
	return gain
}
