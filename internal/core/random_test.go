package core

import (
	"sync"
	"testing"
)

func TestRandomBounds(t *testing.T) {
	r := NewRandom(42)
	for i := 0; i < 1000; i++ {
		if v := r.Int(3, 7); v < 3 || v > 7 {
			t.Fatalf("Int out of range: %d", v)
		}
		if v := r.Float(1.5, 2.5); v < 1.5 || v >= 2.5 {
			t.Fatalf("Float out of range: %f", v)
		}
	}
	if v := r.Int(5, 5); v != 5 {
		t.Fatalf("degenerate Int: %d", v)
	}
	if r.Bool(0) {
		t.Fatal("Bool(0) returned true")
	}
	if !r.Bool(1) {
		t.Fatal("Bool(1) returned false")
	}
}

func TestRandomConcurrent(t *testing.T) {
	r := NewRandom(1)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = r.Int(0, 100)
				_ = r.Float(0, 1)
				r.Shuffle(10, func(i, j int) {})
			}
		}()
	}
	wg.Wait()
}

func TestWeightedIndex(t *testing.T) {
	r := NewRandom(7)
	counts := [3]int{}
	for i := 0; i < 3000; i++ {
		counts[WeightedIndex([]float64{1, 0, 9}, r)]++
	}
	if counts[1] != 0 {
		t.Fatalf("zero-weight index selected %d times", counts[1])
	}
	if counts[2] < counts[0] {
		t.Fatalf("weights ignored: %v", counts)
	}
	if WeightedIndex([]float64{0, 0}, r) != 0 {
		t.Fatal("zero total weight should fall back to 0")
	}
}
