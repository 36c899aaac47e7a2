package core

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the single injected random-source capability. Implementations
// must be safe for concurrent use: strategies run in parallel workers and
// share one instance.
type Random interface {
	// Int returns a uniform integer in [min, max] inclusive.
	Int(min, max int) int
	// Float returns a uniform real in [min, max).
	Float(min, max float64) float64
	// Bool is true with the given probability.
	Bool(probability float64) bool
	// Shuffle permutes n elements through swap.
	Shuffle(n int, swap func(i, j int))
}

type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a seeded Random; seed 0 means time-based.
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Int(min, max int) int {
	if max <= min {
		return min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.rng.Intn(max-min+1)
}

func (r *lockedRandom) Float(min, max float64) float64 {
	if max <= min {
		return min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.rng.Float64()*(max-min)
}

func (r *lockedRandom) Bool(probability float64) bool {
	if probability >= 1 {
		return true
	}
	if probability <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < probability
}

func (r *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive total weight falls back to index 0.
func WeightedIndex(weights []float64, random Random) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}
	r := random.Float(0, sum)
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}
