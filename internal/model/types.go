package model

// API types for solve runs.

type SolveRequest struct {
	Jobs       []JobIn            `json:"jobs"`
	Vehicles   []VehicleIn        `json:"vehicles"`
	Profiles   []ProfileIn        `json:"profiles,omitempty"`
	Objectives map[string]float64 `json:"objectives,omitempty"`
	// Config is a YAML solve-config document selecting population, mutation
	// and termination settings; empty means solver defaults.
	Config string `json:"config,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

type JobIn struct {
	ID             string      `json:"id"`
	Location       GeoPoint    `json:"location"`
	DemandWeight   float64     `json:"demandWeight,omitempty"`
	DemandVolume   float64     `json:"demandVolume,omitempty"`
	ServiceTimeSec float64     `json:"serviceTimeSec,omitempty"`
	TimeWindow     *TimeWindow `json:"timeWindow,omitempty"`
	RequiredSkills []string    `json:"requiredSkills,omitempty"`
}

type VehicleIn struct {
	ID        string    `json:"id"`
	CapWeight float64   `json:"capWeight,omitempty"`
	CapVolume float64   `json:"capVolume,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	Start     *GeoPoint `json:"start,omitempty"`
	End       *GeoPoint `json:"end,omitempty"`
	Profile   string    `json:"profile,omitempty"`
}

type ProfileIn struct {
	Name     string  `json:"name"`
	SpeedKph float64 `json:"speedKph"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TimeWindow bounds are seconds from the planning horizon start.
type TimeWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Run is a solve run's externally visible state.
type Run struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"` // pending | running | done | failed
	CreatedAt string       `json:"createdAt"`
	Error     string       `json:"error,omitempty"`
	Stats     *RunStats    `json:"stats,omitempty"`
	Solution  *SolutionOut `json:"solution,omitempty"`
}

type RunStats struct {
	Generations  int     `json:"generations"`
	Improvements int     `json:"improvements"`
	ElapsedSec   float64 `json:"elapsedSec"`
	InitialCost  float64 `json:"initialCost"`
	BestCost     float64 `json:"bestCost"`
}

type SolutionOut struct {
	Routes     []RouteOut `json:"routes"`
	Unassigned []string   `json:"unassigned,omitempty"`
	Cost       float64    `json:"cost"`
}

type RouteOut struct {
	VehicleID string   `json:"vehicleId"`
	JobIDs    []string `json:"jobIds"`
}
