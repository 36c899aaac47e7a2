package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"routesolver/internal/config"
	"routesolver/internal/core"
	"routesolver/internal/metrics"
	"routesolver/internal/model"
	"routesolver/internal/solver"
)

// StartRun launches the solve in the background. Terminal state always lands
// in the store, success or not.
func (s *Server) StartRun(id string) {
	go func() {
		if err := s.runSolve(context.Background(), id); err != nil {
			_ = s.Store.SetRunStatus(context.Background(), id, "failed", err.Error())
			metrics.SolveRuns.WithLabelValues("failed").Inc()
			s.Broker.Publish(id, Event{Type: "failed", Data: map[string]any{"runId": id, "error": err.Error()}})
		}
	}()
}

func (s *Server) runSolve(ctx context.Context, id string) error {
	req, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	problem, jobIDs, vehIDs, err := buildProblem(req)
	if err != nil {
		return err
	}
	if err := s.Store.SetRunStatus(ctx, id, "running", ""); err != nil {
		return err
	}
	s.Broker.Publish(id, Event{Type: "started", Data: map[string]any{"runId": id}})

	b := solver.NewBuilder(problem).
		WithSeed(req.Seed).
		WithLogger(func(msg string) {
			s.Broker.Publish(id, Event{Type: "progress", Data: map[string]any{"runId": id, "message": msg}})
		})
	if req.Config != "" {
		cfg, err := config.Parse([]byte(req.Config))
		if err != nil {
			return err
		}
		if b, err = config.Apply(b, cfg, problem, core.NewRandom(req.Seed)); err != nil {
			return err
		}
	}
	sv, err := b.Build()
	if err != nil {
		return err
	}

	start := time.Now()
	best, stats, err := sv.Run(ctx)
	if err != nil {
		return err
	}
	sol := toSolutionOut(best, jobIDs, vehIDs)
	rs := model.RunStats{
		Generations:  stats.Generations,
		Improvements: stats.Improvements,
		ElapsedSec:   stats.Elapsed,
		InitialCost:  stats.InitialCost,
		BestCost:     stats.BestCost,
	}
	if err := s.Store.SaveResult(ctx, id, sol, rs); err != nil {
		return err
	}
	metrics.SolveRuns.WithLabelValues("done").Inc()
	metrics.SolveGenerations.Add(float64(stats.Generations))
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	if stats.InitialCost > 0 {
		metrics.SolveImprovement.Observe((stats.InitialCost - stats.BestCost) / stats.InitialCost)
	}
	s.Broker.Publish(id, Event{Type: "done", Data: map[string]any{
		"runId":       id,
		"bestCost":    stats.BestCost,
		"generations": stats.Generations,
		"unassigned":  len(sol.Unassigned),
	}})
	return nil
}

// buildProblem converts the wire request into the immutable search model and
// returns the id tables needed to translate the result back.
func buildProblem(req model.SolveRequest) (*core.Problem, []string, []string, error) {
	if len(req.Jobs) == 0 || len(req.Vehicles) == 0 {
		return nil, nil, nil, errors.New("jobs and vehicles are required")
	}
	profiles := make([]core.Profile, 0, len(req.Profiles))
	profIdx := map[string]int{}
	for i, p := range req.Profiles {
		if p.Name == "" {
			return nil, nil, nil, errors.New("profile name is required")
		}
		if _, dup := profIdx[p.Name]; dup {
			return nil, nil, nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		profiles = append(profiles, core.Profile{Name: p.Name, SpeedKph: p.SpeedKph})
		profIdx[p.Name] = i
	}

	jobs := make([]core.Job, len(req.Jobs))
	jobIDs := make([]string, len(req.Jobs))
	seen := map[string]bool{}
	for i, j := range req.Jobs {
		if j.ID == "" {
			return nil, nil, nil, fmt.Errorf("job %d has no id", i)
		}
		if seen[j.ID] {
			return nil, nil, nil, fmt.Errorf("duplicate job id %q", j.ID)
		}
		seen[j.ID] = true
		job := core.Job{
			ID:         j.ID,
			Location:   core.Location{Lat: j.Location.Lat, Lng: j.Location.Lng},
			Demand:     core.Demand{Weight: j.DemandWeight, Volume: j.DemandVolume},
			ServiceSec: j.ServiceTimeSec,
			Skills:     j.RequiredSkills,
		}
		if j.TimeWindow != nil {
			job.TW = &core.TimeWindow{Start: j.TimeWindow.Start, End: j.TimeWindow.End}
		}
		jobs[i] = job
		jobIDs[i] = j.ID
	}

	vehicles := make([]core.Vehicle, len(req.Vehicles))
	vehIDs := make([]string, len(req.Vehicles))
	for i, v := range req.Vehicles {
		if v.ID == "" {
			return nil, nil, nil, fmt.Errorf("vehicle %d has no id", i)
		}
		pi := 0
		if v.Profile != "" {
			idx, ok := profIdx[v.Profile]
			if !ok {
				return nil, nil, nil, fmt.Errorf("vehicle %q references unknown profile %q", v.ID, v.Profile)
			}
			pi = idx
		}
		veh := core.Vehicle{
			ID:        v.ID,
			CapWeight: v.CapWeight,
			CapVolume: v.CapVolume,
			Skills:    v.Skills,
			Profile:   pi,
		}
		if v.Start != nil {
			veh.Start = &core.Location{Lat: v.Start.Lat, Lng: v.Start.Lng}
		}
		if v.End != nil {
			veh.End = &core.Location{Lat: v.End.Lat, Lng: v.End.Lng}
		}
		vehicles[i] = veh
		vehIDs[i] = v.ID
	}

	p, err := core.NewProblem(jobs, vehicles, profiles, req.Objectives)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, jobIDs, vehIDs, nil
}

func toSolutionOut(sol *core.Solution, jobIDs, vehIDs []string) model.SolutionOut {
	out := model.SolutionOut{Cost: sol.Cost}
	for _, r := range sol.Routes {
		if len(r.Jobs) == 0 {
			continue
		}
		ro := model.RouteOut{VehicleID: vehIDs[r.Vehicle], JobIDs: make([]string, len(r.Jobs))}
		for i, j := range r.Jobs {
			ro.JobIDs[i] = jobIDs[j]
		}
		out.Routes = append(out.Routes, ro)
	}
	for _, j := range sol.Unassigned {
		out.Unassigned = append(out.Unassigned, jobIDs[j])
	}
	return out
}
