package mutation

import (
	"fmt"
	"testing"

	"routesolver/internal/core"
)

func newTestContext(t *testing.T, jobs int, seed int64) *core.RefinementContext {
	t.Helper()
	js := make([]core.Job, jobs)
	for i := range js {
		js[i] = core.Job{
			ID:       fmt.Sprintf("job-%d", i),
			Location: core.Location{Lat: 40.0 + float64(i%5)*0.01, Lng: -74.0 + float64(i/5)*0.01},
		}
	}
	vehicles := []core.Vehicle{{ID: "v1"}, {ID: "v2"}, {ID: "v3"}}
	p, err := core.NewProblem(js, vehicles, nil, nil)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return core.NewRefinementContext(p, nil, core.NewRandom(seed), 0)
}

// fullSolution assigns every job round-robin across routes.
func fullSolution(ctx *core.RefinementContext) *core.Solution {
	s := core.NewSolution(ctx.Problem)
	for j := range ctx.Problem.Jobs {
		r := j % len(s.Routes)
		s.InsertAt(r, len(s.Routes[r].Jobs), j)
	}
	core.Evaluate(ctx.Problem, s)
	return s
}

func allRuins(ctx *core.RefinementContext) map[string]Ruin {
	limit := core.RemovalLimit{Min: 2, Max: 6, Threshold: 0.3}
	return map[string]Ruin{
		"random-job":      RandomJobRemoval{Limit: limit},
		"neighbour":       NeighbourRemoval{Limit: limit},
		"worst-job":       WorstJobRemoval{Skip: 2, Limit: limit},
		"random-route":    RandomRouteRemoval{Limit: core.RemovalLimit{Min: 1, Max: 2, Threshold: 0.5}},
		"adjusted-string": NewAdjustedStringRemoval(),
		"cluster":         NewClusterRemoval(ctx.Problem, 3, 8, limit),
	}
}

func TestRuinConservesJobs(t *testing.T) {
	for name, ruin := range allRuins(newTestContext(t, 20, 1)) {
		t.Run(name, func(t *testing.T) {
			ctx := newTestContext(t, 20, 1)
			s := fullSolution(ctx)
			total := s.JobCount()
			got := ruin.Run(ctx, s)
			if got.JobCount() != total {
				t.Fatalf("job count changed: %d -> %d", total, got.JobCount())
			}
			if got.AssignedCount() == total {
				t.Fatal("ruin removed nothing")
			}
		})
	}
}

func TestRuinRespectsLocks(t *testing.T) {
	for name, ruin := range allRuins(newTestContext(t, 20, 2)) {
		t.Run(name, func(t *testing.T) {
			ctx := newTestContext(t, 20, 2)
			s := fullSolution(ctx)
			s.Locked = map[int]bool{}
			for j := 0; j < 20; j++ {
				s.Locked[j] = true
			}
			got := ruin.Run(ctx, s)
			if len(got.Unassigned) != 0 {
				t.Fatalf("%d locked jobs removed", len(got.Unassigned))
			}
		})
	}
}

func TestRuinOnSparseSolution(t *testing.T) {
	// fewer assigned jobs than the limit minimum: remove all, never error
	for name, ruin := range allRuins(newTestContext(t, 20, 3)) {
		t.Run(name, func(t *testing.T) {
			ctx := newTestContext(t, 20, 3)
			s := core.NewSolution(ctx.Problem)
			s.InsertAt(0, 0, 0)
			got := ruin.Run(ctx, s)
			if got.JobCount() != 20 {
				t.Fatalf("job count changed: %d", got.JobCount())
			}
		})
	}
}

func allRecreates() map[string]Recreate {
	return map[string]Recreate{
		"cheapest": CheapestRecreate{},
		"regret":   RegretRecreate{Start: 2, End: 3},
		"blinks":   BlinksRecreate{},
		"gaps":     GapsRecreate{MinGap: 30},
		"nearest":  NearestRecreate{},
	}
}

func TestRecreateIsTotal(t *testing.T) {
	for name, rec := range allRecreates() {
		t.Run(name, func(t *testing.T) {
			ctx := newTestContext(t, 15, 4)
			s := core.NewSolution(ctx.Problem)
			before := len(s.Unassigned)
			got := rec.Run(ctx, s)
			if len(got.Unassigned) > before {
				t.Fatalf("unassigned grew: %d -> %d", before, len(got.Unassigned))
			}
			if len(got.Unassigned) != 0 {
				t.Fatalf("feasible problem left %d unassigned", len(got.Unassigned))
			}
			if got.JobCount() != 15 {
				t.Fatalf("job count changed: %d", got.JobCount())
			}
		})
	}
}

func TestRecreateLeavesInfeasibleUnassigned(t *testing.T) {
	js := []core.Job{
		{ID: "a", Location: core.Location{Lat: 40, Lng: -74}},
		{ID: "heavy", Location: core.Location{Lat: 40.01, Lng: -74}, Demand: core.Demand{Weight: 100}},
	}
	p, err := core.NewProblem(js, []core.Vehicle{{ID: "v", CapWeight: 10}}, nil, nil)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	ctx := core.NewRefinementContext(p, nil, core.NewRandom(5), 0)
	for name, rec := range allRecreates() {
		t.Run(name, func(t *testing.T) {
			got := rec.Run(ctx, core.NewSolution(p))
			if len(got.Unassigned) != 1 {
				t.Fatalf("want exactly the overweight job unassigned, got %d", len(got.Unassigned))
			}
		})
	}
}

func TestRuinRecreateRoundTrip(t *testing.T) {
	ctx := newTestContext(t, 20, 6)
	s := fullSolution(ctx)
	m := RuinRecreate{
		Ruin:     RandomJobRemoval{Limit: core.RemovalLimit{Min: 2, Max: 5, Threshold: 0.5}},
		Recreate: CheapestRecreate{},
	}
	for i := 0; i < 20; i++ {
		child, err := m.Run(ctx, s)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if child.JobCount() != 20 {
			t.Fatalf("iteration %d: job count %d", i, child.JobCount())
		}
		if len(child.Unassigned) != 0 {
			t.Fatalf("iteration %d: %d unassigned", i, len(child.Unassigned))
		}
		s = child
	}
}

// dropRuin deliberately loses a job to prove the conservation check fires.
type dropRuin struct{}

func (dropRuin) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	s.Routes[0].Jobs = s.Routes[0].Jobs[1:]
	return s
}

func TestRuinRecreateDetectsLostJob(t *testing.T) {
	ctx := newTestContext(t, 9, 7)
	s := fullSolution(ctx)
	m := RuinRecreate{Ruin: dropRuin{}, Recreate: CheapestRecreate{}}
	if _, err := m.Run(ctx, s); err == nil {
		t.Fatal("lost job not detected")
	}
}

func TestCompositeRuinZeroWeightGroupNeverRuns(t *testing.T) {
	ctx := newTestContext(t, 12, 8)
	comp := CompositeRuin{Groups: []RuinGroup{
		{Methods: []WeightedRuin{{Ruin: RandomJobRemoval{Limit: core.RemovalLimit{Min: 1, Max: 3, Threshold: 0.2}}, Probability: 1}}, Weight: 1},
		{Methods: []WeightedRuin{{Ruin: dropRuin{}, Probability: 1}}, Weight: 0},
	}}
	for i := 0; i < 30; i++ {
		s := fullSolution(ctx)
		got := comp.Run(ctx, s)
		if got.JobCount() != 12 {
			t.Fatal("zero-weight group was selected")
		}
	}
}

func TestLocalSearchKeepsFeasibilityAndJobs(t *testing.T) {
	ctx := newTestContext(t, 18, 9)
	s := CheapestRecreate{}.Run(ctx, core.NewSolution(ctx.Problem))
	before := s.Cost
	got, err := LocalSearch{MinRepeat: 1, MaxRepeat: 3}.Run(ctx, s)
	if err != nil {
		t.Fatalf("LocalSearch: %v", err)
	}
	if got.JobCount() != 18 {
		t.Fatalf("job count changed: %d", got.JobCount())
	}
	if got.Cost > before+1e-6 {
		t.Fatalf("local search worsened cost: %f -> %f", before, got.Cost)
	}
}

func TestClusterRemovalStaysWithinLimit(t *testing.T) {
	ctx := newTestContext(t, 25, 10)
	limit := core.RemovalLimit{Min: 2, Max: 7, Threshold: 0.4}
	ruin := NewClusterRemoval(ctx.Problem, 3, 9, limit)
	for i := 0; i < 10; i++ {
		s := fullSolution(ctx)
		got := ruin.Run(ctx, s)
		if n := len(got.Unassigned); n > 7 {
			t.Fatalf("removed %d jobs, limit max is 7", n)
		}
	}
}
