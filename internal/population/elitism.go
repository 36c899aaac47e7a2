// Package population holds the diversity archives the solver draws parents
// from: a plain elitist archive and the self-organizing Rosomaxa archive.
package population

import (
	"sort"
	"sync"

	"routesolver/internal/core"
)

// Elitism keeps the best MaxSize individuals by cost and nothing else.
// Admission and eviction are serialized through one mutex: eviction depends
// on the whole archive state.
type Elitism struct {
	mu            sync.Mutex
	individuals   []*core.Solution
	maxSize       int
	selectionSize int
	random        core.Random
}

func NewElitism(maxSize, selectionSize int, random core.Random) *Elitism {
	if maxSize < 1 {
		maxSize = 4
	}
	if selectionSize < 1 {
		selectionSize = 1
	}
	return &Elitism{maxSize: maxSize, selectionSize: selectionSize, random: random}
}

func (e *Elitism) Add(s *core.Solution) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.individuals = append(e.individuals, s)
	sort.SliceStable(e.individuals, func(a, b int) bool { return e.individuals[a].Cost < e.individuals[b].Cost })
	if len(e.individuals) > e.maxSize {
		e.individuals = e.individuals[:e.maxSize]
	}
}

// Select returns up to selectionSize parents: always the best, the rest
// drawn randomly from the elite so repeated generations do not mutate the
// same individual only.
func (e *Elitism) Select() []*core.Solution {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.individuals) == 0 {
		return nil
	}
	out := []*core.Solution{e.individuals[0]}
	for len(out) < e.selectionSize {
		out = append(out, e.individuals[e.random.Int(0, len(e.individuals)-1)])
	}
	return out
}

func (e *Elitism) Best() *core.Solution {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.individuals) == 0 {
		return nil
	}
	return e.individuals[0]
}

func (e *Elitism) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.individuals)
}
