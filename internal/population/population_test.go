package population

import (
	"fmt"
	"testing"

	"routesolver/internal/core"
)

func solutionWithCost(t *testing.T, cost float64) *core.Solution {
	t.Helper()
	jobs := []core.Job{{ID: "a", Location: core.Location{Lat: 40, Lng: -74}}}
	p, err := core.NewProblem(jobs, []core.Vehicle{{ID: "v1"}, {ID: "v2"}}, nil, nil)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	s := core.NewSolution(p)
	s.InsertAt(0, 0, 0)
	s.Cost = cost
	return s
}

func TestElitismKeepsBest(t *testing.T) {
	e := NewElitism(3, 2, core.NewRandom(1))
	for _, c := range []float64{50, 10, 90, 5, 70} {
		e.Add(solutionWithCost(t, c))
	}
	if e.Size() != 3 {
		t.Fatalf("size %d, want 3", e.Size())
	}
	if b := e.Best(); b == nil || b.Cost != 5 {
		t.Fatalf("best is %+v", b)
	}
}

func TestElitismBestMonotone(t *testing.T) {
	e := NewElitism(2, 1, core.NewRandom(2))
	prev := -1.0
	costs := []float64{40, 60, 30, 80, 30, 20, 95}
	for _, c := range costs {
		e.Add(solutionWithCost(t, c))
		b := e.Best().Cost
		if prev >= 0 && b > prev {
			t.Fatalf("best worsened: %f -> %f", prev, b)
		}
		prev = b
	}
}

func TestElitismSelect(t *testing.T) {
	e := NewElitism(4, 3, core.NewRandom(3))
	if got := e.Select(); got != nil {
		t.Fatalf("empty archive returned %d parents", len(got))
	}
	for _, c := range []float64{9, 3, 7} {
		e.Add(solutionWithCost(t, c))
	}
	got := e.Select()
	if len(got) != 3 {
		t.Fatalf("got %d parents, want 3", len(got))
	}
	if got[0].Cost != 3 {
		t.Fatalf("first parent is not the best: %f", got[0].Cost)
	}
}

func TestRosomaxaNeverDiscardsBest(t *testing.T) {
	r := NewRosomaxa(DefaultRosomaxaConfig(), core.NewRandom(4))
	first := solutionWithCost(t, 100)
	r.Add(first)
	for i := 0; i < 500; i++ {
		r.Add(solutionWithCost(t, 100+float64(i%37)))
	}
	if b := r.Best(); b == nil || b.Cost > first.Cost {
		t.Fatalf("best-known lost: %+v", b)
	}
	r.Add(solutionWithCost(t, 1))
	if b := r.Best(); b.Cost != 1 {
		t.Fatalf("improvement not retained: %f", b.Cost)
	}
}

func TestRosomaxaSelectSize(t *testing.T) {
	cfg := DefaultRosomaxaConfig()
	cfg.SelectionSize = 5
	r := NewRosomaxa(cfg, core.NewRandom(5))
	if r.Select() != nil {
		t.Fatal("empty archive should select nothing")
	}
	for i := 0; i < 50; i++ {
		r.Add(solutionWithCost(t, float64(100+i*3%41)))
	}
	got := r.Select()
	if len(got) != 5 {
		t.Fatalf("got %d parents, want 5", len(got))
	}
	if got[0].Cost != r.Best().Cost {
		t.Fatal("first parent is not the elite best")
	}
}

func TestRosomaxaRebalanceBoundsMap(t *testing.T) {
	cfg := DefaultRosomaxaConfig()
	cfg.HitMemory = 10
	cfg.RebalanceCount = 20
	cfg.ReductionFactor = 0.5
	r := NewRosomaxa(cfg, core.NewRandom(6))
	for i := 0; i < 1000; i++ {
		r.Add(solutionWithCost(t, float64(i)))
	}
	if n := len(r.nodes); n > 1000 {
		t.Fatalf("map never pruned: %d nodes", n)
	}
	if r.Best() == nil {
		t.Fatal("best lost during rebalance")
	}
}

func TestInsertByCostOrdering(t *testing.T) {
	var storage []*core.Solution
	for _, c := range []float64{5, 1, 3, 2, 4} {
		storage = insertByCost(storage, &core.Solution{Cost: c}, 3)
	}
	if len(storage) != 3 {
		t.Fatalf("cap ignored: %d", len(storage))
	}
	want := []float64{1, 2, 3}
	for i, s := range storage {
		if s.Cost != want[i] {
			t.Fatalf("storage out of order: %s", fmt.Sprint(storage))
		}
	}
}
