package population

import (
	"math"
	"sort"
	"sync"

	"routesolver/internal/core"
)

// RosomaxaConfig tunes the self-organizing archive.
type RosomaxaConfig struct {
	SelectionSize      int     // individuals returned per Select
	MaxEliteSize       int     // global elite kept regardless of diversity
	MaxNodeSize        int     // capacity per map cell
	SpreadFactor       float64 // growth threshold for new map cells
	ReductionFactor    float64 // share of stale cells dropped on rebalance
	DistributionFactor float64 // hit-rate floor below which a cell counts as stale
	LearningRate       float64 // weight adaptation toward inserted features
	HitMemory          int     // insertions a cell stays warm after a hit
	RebalanceCount     int     // insertions between map reorganizations
	ExplorationRatio   float64 // probability of selecting a diverse parent
}

func DefaultRosomaxaConfig() RosomaxaConfig {
	return RosomaxaConfig{
		SelectionSize:      4,
		MaxEliteSize:       2,
		MaxNodeSize:        2,
		SpreadFactor:       0.25,
		ReductionFactor:    0.1,
		DistributionFactor: 0.25,
		LearningRate:       0.1,
		HitMemory:          1000,
		RebalanceCount:     100,
		ExplorationRatio:   0.9,
	}
}

type rosoNode struct {
	coord   [2]int
	weights []float64
	storage []*core.Solution // sorted ascending by cost, capped
	lastHit int
	hits    int
}

// Rosomaxa is a self-organizing-map archive: individuals land on map cells
// indexed by solution-feature coordinates, so structurally different
// solutions survive next to the global elite and premature convergence is
// damped. The elite list guarantees the best-known solution is never
// discarded.
type Rosomaxa struct {
	mu      sync.Mutex
	cfg     RosomaxaConfig
	random  core.Random
	elite   *Elitism
	nodes   map[[2]int]*rosoNode
	inserts int
}

func NewRosomaxa(cfg RosomaxaConfig, random core.Random) *Rosomaxa {
	if cfg.SelectionSize < 1 {
		cfg.SelectionSize = 1
	}
	if cfg.MaxNodeSize < 1 {
		cfg.MaxNodeSize = 1
	}
	if cfg.RebalanceCount < 1 {
		cfg.RebalanceCount = 100
	}
	return &Rosomaxa{
		cfg:    cfg,
		random: random,
		elite:  NewElitism(cfg.MaxEliteSize, 1, random),
		nodes:  map[[2]int]*rosoNode{},
	}
}

// features maps a solution to diversity coordinates: cost, busy routes,
// unassigned jobs and mean route cardinality.
func features(s *core.Solution) []float64 {
	routes, jobs := 0, 0
	for _, r := range s.Routes {
		if len(r.Jobs) > 0 {
			routes++
			jobs += len(r.Jobs)
		}
	}
	mean := 0.0
	if routes > 0 {
		mean = float64(jobs) / float64(routes)
	}
	return []float64{s.Cost, float64(routes), float64(len(s.Unassigned)), mean}
}

func (r *Rosomaxa) Add(s *core.Solution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elite.Add(s)
	r.inserts++
	f := features(s)
	bmu := r.bestMatching(f)
	if bmu == nil || r.distance(bmu.weights, f) > r.cfg.SpreadFactor {
		r.grow(f, s)
	} else {
		bmu.lastHit = r.inserts
		bmu.hits++
		r.train(bmu, f)
		bmu.storage = insertByCost(bmu.storage, s, r.cfg.MaxNodeSize)
	}
	if r.inserts%r.cfg.RebalanceCount == 0 {
		r.rebalance()
	}
}

func (r *Rosomaxa) bestMatching(f []float64) *rosoNode {
	var best *rosoNode
	bestDist := math.MaxFloat64
	for _, n := range r.nodes {
		if d := r.distance(n.weights, f); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// distance is a normalized Euclidean distance so cost magnitude does not
// drown the structural coordinates.
func (r *Rosomaxa) distance(w, f []float64) float64 {
	sum := 0.0
	for i := range w {
		denom := math.Max(math.Abs(w[i]), math.Abs(f[i]))
		if denom == 0 {
			continue
		}
		d := (w[i] - f[i]) / denom
		sum += d * d
	}
	return math.Sqrt(sum)
}

// grow creates a new cell next to the best matching one (or at the origin
// for an empty map) seeded with the inserted individual's features.
func (r *Rosomaxa) grow(f []float64, s *core.Solution) {
	coord := [2]int{0, 0}
	if bmu := r.bestMatching(f); bmu != nil {
		for _, d := range [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}} {
			c := [2]int{bmu.coord[0] + d[0], bmu.coord[1] + d[1]}
			if _, taken := r.nodes[c]; !taken {
				coord = c
				break
			}
		}
	}
	if _, taken := r.nodes[coord]; taken {
		return // map saturated around the BMU; drop the diversity insert
	}
	r.nodes[coord] = &rosoNode{
		coord:   coord,
		weights: append([]float64(nil), f...),
		storage: []*core.Solution{s},
		lastHit: r.inserts,
		hits:    1,
	}
}

// train pulls the cell weights toward the inserted features; adjacent cells
// follow at half the learning rate.
func (r *Rosomaxa) train(n *rosoNode, f []float64) {
	adapt := func(node *rosoNode, rate float64) {
		for i := range node.weights {
			node.weights[i] += rate * (f[i] - node.weights[i])
		}
	}
	adapt(n, r.cfg.LearningRate)
	for _, d := range [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		if nb, ok := r.nodes[[2]int{n.coord[0] + d[0], n.coord[1] + d[1]}]; ok {
			adapt(nb, r.cfg.LearningRate/2)
		}
	}
}

// rebalance drops cold cells: not hit within the hit memory, or with a hit
// share below the distribution floor, up to ReductionFactor of the map.
func (r *Rosomaxa) rebalance() {
	total := 0
	for _, n := range r.nodes {
		total += n.hits
	}
	budget := int(math.Ceil(float64(len(r.nodes)) * r.cfg.ReductionFactor))
	var stale [][2]int
	for c, n := range r.nodes {
		cold := r.inserts-n.lastHit > r.cfg.HitMemory
		sparse := total > 0 && float64(n.hits)/float64(total) < r.cfg.DistributionFactor/float64(len(r.nodes))
		if cold || sparse {
			stale = append(stale, c)
		}
	}
	sort.Slice(stale, func(a, b int) bool { return r.nodes[stale[a]].lastHit < r.nodes[stale[b]].lastHit })
	for i, c := range stale {
		if i >= budget {
			break
		}
		delete(r.nodes, c)
	}
}

// Select returns the elite best plus exploration picks from random map
// cells with probability ExplorationRatio per slot.
func (r *Rosomaxa) Select() []*core.Solution {
	r.mu.Lock()
	defer r.mu.Unlock()
	best := r.elite.Best()
	if best == nil {
		return nil
	}
	out := []*core.Solution{best}
	coords := make([][2]int, 0, len(r.nodes))
	for c := range r.nodes {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(a, b int) bool {
		if coords[a][0] != coords[b][0] {
			return coords[a][0] < coords[b][0]
		}
		return coords[a][1] < coords[b][1]
	})
	for len(out) < r.cfg.SelectionSize {
		if len(coords) > 0 && r.random.Bool(r.cfg.ExplorationRatio) {
			n := r.nodes[coords[r.random.Int(0, len(coords)-1)]]
			out = append(out, n.storage[r.random.Int(0, len(n.storage)-1)])
		} else {
			out = append(out, best)
		}
	}
	return out
}

func (r *Rosomaxa) Best() *core.Solution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elite.Best()
}

func (r *Rosomaxa) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.elite.Size()
	for _, node := range r.nodes {
		n += len(node.storage)
	}
	return n
}

func insertByCost(storage []*core.Solution, s *core.Solution, maxSize int) []*core.Solution {
	i := sort.Search(len(storage), func(i int) bool { return storage[i].Cost >= s.Cost })
	storage = append(storage, nil)
	copy(storage[i+1:], storage[i:])
	storage[i] = s
	if len(storage) > maxSize {
		storage = storage[:maxSize]
	}
	return storage
}
