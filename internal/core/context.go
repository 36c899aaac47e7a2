package core

// Population is the diversity archive contract. Add admits a candidate (it
// may be evicted immediately), Select returns parents for the next mutation,
// Best returns the best-known candidate. Implementations serialize Add
// internally; Select and Best tolerate bounded staleness.
type Population interface {
	Add(s *Solution)
	Select() []*Solution
	Best() *Solution
	Size() int
}

// RefinementContext is the per-run mutable state threaded through every
// generation: problem and population handles, the random source, the
// generation counter and a bounded best-cost window for variation-based
// termination.
type RefinementContext struct {
	Problem    *Problem
	Population Population
	Random     Random
	Generation int

	bestCosts []float64
	window    int
}

func NewRefinementContext(p *Problem, pop Population, random Random, window int) *RefinementContext {
	if window <= 0 {
		window = 200
	}
	return &RefinementContext{Problem: p, Population: pop, Random: random, window: window}
}

// RecordBest appends the generation's best cost, keeping a bounded window.
func (c *RefinementContext) RecordBest(cost float64) {
	c.bestCosts = append(c.bestCosts, cost)
	if len(c.bestCosts) > c.window {
		c.bestCosts = c.bestCosts[len(c.bestCosts)-c.window:]
	}
}

// BestWindow returns up to the last n recorded best costs.
func (c *RefinementContext) BestWindow(n int) []float64 {
	if n <= 0 || n > len(c.bestCosts) {
		n = len(c.bestCosts)
	}
	return c.bestCosts[len(c.bestCosts)-n:]
}
