package cluster

import (
	"math"
	"testing"
)

// lineNeighbors builds a neighborhood function over points on a 1D line.
func lineNeighbors(coords []float64) NeighborhoodFn {
	return func(p int, eps float64) []int {
		var out []int
		for i, c := range coords {
			if i != p && math.Abs(c-coords[p]) < eps {
				out = append(out, i)
			}
		}
		return out
	}
}

func TestClustersTwoGroups(t *testing.T) {
	coords := []float64{0, 1, 2, 3, 100, 101, 102, 103}
	got := Clusters(len(coords), 1.5, 3, lineNeighbors(coords))
	if len(got) != 2 {
		t.Fatalf("got %d clusters, want 2", len(got))
	}
	for _, c := range got {
		if len(c) != 4 {
			t.Fatalf("cluster size %d, want 4", len(c))
		}
	}
}

func TestClustersDisjointAndSubset(t *testing.T) {
	coords := []float64{0, 0.5, 1, 50, 50.2, 90, 200}
	got := Clusters(len(coords), 1.0, 2, lineNeighbors(coords))
	seen := map[int]bool{}
	for _, c := range got {
		if len(c) == 0 {
			t.Fatal("empty cluster returned")
		}
		for _, p := range c {
			if seen[p] {
				t.Fatalf("point %d in two clusters", p)
			}
			seen[p] = true
			if p < 0 || p >= len(coords) {
				t.Fatalf("point %d out of range", p)
			}
		}
	}
}

func TestClustersNoisePointsStayOut(t *testing.T) {
	coords := []float64{0, 0.1, 0.2, 500}
	got := Clusters(len(coords), 1.0, 3, lineNeighbors(coords))
	if len(got) != 1 {
		t.Fatalf("got %d clusters, want 1", len(got))
	}
	for _, p := range got[0] {
		if p == 3 {
			t.Fatal("isolated point absorbed into cluster")
		}
	}
}

func TestClustersCorePointProperty(t *testing.T) {
	coords := []float64{0, 0.3, 0.6, 0.9, 1.2}
	nf := lineNeighbors(coords)
	minPts := 3
	for _, c := range Clusters(len(coords), 0.5, minPts, nf) {
		for _, p := range c {
			// every member is a core point or within eps of one
			if len(nf(p, 0.5)) >= minPts-1 {
				continue
			}
			reachable := false
			for _, q := range nf(p, 0.5) {
				if len(nf(q, 0.5)) >= minPts-1 {
					reachable = true
					break
				}
			}
			if !reachable {
				t.Fatalf("point %d neither core nor border", p)
			}
		}
	}
}
