// Package solver drives the evolutionary ruin-and-recreate search: it builds
// an initial population, then repeats select-mutate-admit generations until a
// termination criterion fires.
package solver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"routesolver/internal/core"
	"routesolver/internal/mutation"
)

// Statistics summarizes one run for external reporting.
type Statistics struct {
	Generations  int       `json:"generations"`
	Improvements int       `json:"improvements"`
	Elapsed      float64   `json:"elapsedSec"`
	InitialCost  float64   `json:"initialCost"`
	BestCost     float64   `json:"bestCost"`
	History      []float64 `json:"history,omitempty"` // best cost per generation
}

// Solver is an immutable, builder-configured run orchestrator.
type Solver struct {
	problem     *core.Problem
	pop         core.Population
	random      core.Random
	initial     []mutation.WeightedRecreate
	initialSize int
	mutations   []mutation.WeightedMutation
	termination Termination
	logger      func(string)
	offspring   int
	window      int
}

// Run executes the generation loop until termination or context
// cancellation. Cancellation takes effect at the next generation boundary.
// The returned error is either a pre-loop structural failure or a
// job-conservation violation, which is a defect and aborts immediately.
func (s *Solver) Run(ctx context.Context) (*core.Solution, Statistics, error) {
	start := time.Now()
	rctx := core.NewRefinementContext(s.problem, s.pop, s.random, s.window)

	weights := make([]float64, len(s.initial))
	for i, m := range s.initial {
		weights[i] = m.Weight
	}
	for i := 0; i < s.initialSize; i++ {
		method := s.initial[core.WeightedIndex(weights, s.random)].Recreate
		s.pop.Add(method.Run(rctx, core.NewSolution(s.problem)))
	}
	best := s.pop.Best()
	if best == nil {
		return nil, Statistics{}, fmt.Errorf("initial population is empty")
	}
	stats := Statistics{InitialCost: best.Cost, BestCost: best.Cost}
	s.logger(fmt.Sprintf("initial population size=%d best=%.2f", s.pop.Size(), best.Cost))

	for ctx.Err() == nil && !s.termination.IsTermination(rctx) {
		rctx.Generation++
		parents := s.pop.Select()
		if len(parents) == 0 {
			break
		}
		children, err := s.evolve(rctx, parents)
		if err != nil {
			return nil, stats, err
		}
		// single-writer admission: eviction depends on full archive state
		for _, c := range children {
			s.pop.Add(c)
		}
		gbest := s.pop.Best()
		rctx.RecordBest(gbest.Cost)
		stats.Generations = rctx.Generation
		stats.History = append(stats.History, gbest.Cost)
		if gbest.Cost < stats.BestCost-1e-9 {
			stats.Improvements++
			stats.BestCost = gbest.Cost
			s.logger(fmt.Sprintf("generation %d: best=%.2f unassigned=%d", rctx.Generation, gbest.Cost, len(gbest.Unassigned)))
		}
	}
	stats.Elapsed = time.Since(start).Seconds()
	final := s.pop.Best()
	stats.BestCost = final.Cost
	s.logger(fmt.Sprintf("finished after %d generations in %.2fs: best=%.2f", stats.Generations, stats.Elapsed, final.Cost))
	return final, stats, nil
}

// evolve produces offspring in parallel. All candidates mutate copies of
// parents from the same population snapshot; no partial results are visible
// before every worker finishes.
func (s *Solver) evolve(rctx *core.RefinementContext, parents []*core.Solution) ([]*core.Solution, error) {
	n := s.offspring
	children := make([]*core.Solution, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			parent := parents[i%len(parents)]
			m := mutation.SelectMutation(s.mutations, s.random)
			children[i], errs[i] = m.Run(rctx, parent)
		}(i)
	}
	wg.Wait()
	out := make([]*core.Solution, 0, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, children[i])
	}
	return out, nil
}
