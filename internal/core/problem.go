package core

import (
	"errors"
	"math"
	"sort"
)

// TimeWindow bounds service start in seconds from the planning horizon start.
type TimeWindow struct{ Start, End float64 }

type Demand struct{ Weight, Volume float64 }

type Location struct{ Lat, Lng float64 }

type Job struct {
	ID         string
	Location   Location
	Demand     Demand
	ServiceSec float64
	TW         *TimeWindow
	Skills     []string
}

type Vehicle struct {
	ID        string
	CapWeight float64
	CapVolume float64
	Skills    []string
	Start     *Location // optional depot
	End       *Location
	Profile   int // index into Problem.Profiles
}

// Profile is a fleet cost profile. Travel cost between two jobs under a
// profile is travel time in seconds at the profile speed.
type Profile struct {
	Name     string
	SpeedKph float64
}

type Neighbor struct {
	Job  int
	Cost float64
}

// Problem is the immutable problem model shared by all search paths. It is
// never mutated after NewProblem returns; matrices and neighbor lists are
// precomputed once.
type Problem struct {
	Jobs       []Job
	Vehicles   []Vehicle
	Profiles   []Profile
	Objectives map[string]float64 // weights: driveTime, distance, lateness, unassigned

	matrices  [][]float64  // per profile: n*n travel seconds
	neighbors [][][]Neighbor // per profile, per job: sorted ascending by cost
}

var ErrEmptyProblem = errors.New("problem has no jobs or no vehicles")

func NewProblem(jobs []Job, vehicles []Vehicle, profiles []Profile, objectives map[string]float64) (*Problem, error) {
	if len(jobs) == 0 || len(vehicles) == 0 {
		return nil, ErrEmptyProblem
	}
	if len(profiles) == 0 {
		profiles = []Profile{{Name: "car", SpeedKph: 50}}
	}
	for i := range profiles {
		if profiles[i].SpeedKph <= 0 {
			profiles[i].SpeedKph = 50
		}
	}
	for _, v := range vehicles {
		if v.Profile < 0 || v.Profile >= len(profiles) {
			return nil, errors.New("vehicle " + v.ID + " references unknown profile")
		}
	}
	if objectives == nil {
		objectives = map[string]float64{}
	}
	p := &Problem{Jobs: jobs, Vehicles: vehicles, Profiles: profiles, Objectives: objectives}
	p.buildMatrices()
	p.buildNeighbors()
	return p, nil
}

func (p *Problem) buildMatrices() {
	n := len(p.Jobs)
	p.matrices = make([][]float64, len(p.Profiles))
	for pi, prof := range p.Profiles {
		speed := prof.SpeedKph / 3.6
		m := make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := p.Jobs[i].Location, p.Jobs[j].Location
				c := Haversine(a.Lat, a.Lng, b.Lat, b.Lng) / speed
				m[i*n+j] = c
				m[j*n+i] = c
			}
		}
		p.matrices[pi] = m
	}
}

func (p *Problem) buildNeighbors() {
	n := len(p.Jobs)
	p.neighbors = make([][][]Neighbor, len(p.Profiles))
	for pi := range p.Profiles {
		per := make([][]Neighbor, n)
		for i := 0; i < n; i++ {
			ns := make([]Neighbor, 0, n-1)
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				ns = append(ns, Neighbor{Job: j, Cost: p.matrices[pi][i*n+j]})
			}
			sort.Slice(ns, func(a, b int) bool { return ns[a].Cost < ns[b].Cost })
			per[i] = ns
		}
		p.neighbors[pi] = per
	}
}

// Cost returns travel cost between two jobs under a profile.
func (p *Problem) Cost(profile, from, to int) float64 {
	return p.matrices[profile][from*len(p.Jobs)+to]
}

// Neighbors returns all other jobs sorted ascending by cost from the given job.
func (p *Problem) Neighbors(profile, job int) []Neighbor {
	return p.neighbors[profile][job]
}

// Distance returns travel distance in meters between two job locations.
func (p *Problem) Distance(from, to int) float64 {
	a, b := p.Jobs[from].Location, p.Jobs[to].Location
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
