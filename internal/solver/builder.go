package solver

import (
	"fmt"
	"log"
	"time"

	"routesolver/internal/core"
	"routesolver/internal/mutation"
	"routesolver/internal/population"
)

// ConfigurationError reports a malformed or self-contradictory solver
// configuration. It is always surfaced before the search starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Builder accumulates optional solver settings and produces an immutable
// Solver. Unset values fall back to documented defaults; logging is enabled
// by default.
type Builder struct {
	problem        *core.Problem
	seed           int64
	initialMethods []mutation.WeightedRecreate
	initialSize    int
	pop            core.Population
	mutations      []mutation.WeightedMutation
	maxTime        *time.Duration
	maxGenerations *int
	varSample      int
	varCV          float64
	hasVariation   bool
	logger         func(string)
	offspring      int
}

func NewBuilder(problem *core.Problem) *Builder {
	return &Builder{problem: problem, initialSize: 1, offspring: 4}
}

func (b *Builder) WithSeed(seed int64) *Builder { b.seed = seed; return b }

// WithInitialMethods sets the weighted recreate methods used to build the
// initial population.
func (b *Builder) WithInitialMethods(methods []mutation.WeightedRecreate) *Builder {
	b.initialMethods = methods
	return b
}

func (b *Builder) WithInitialSize(n int) *Builder { b.initialSize = n; return b }

func (b *Builder) WithPopulation(p core.Population) *Builder { b.pop = p; return b }

func (b *Builder) WithMutations(ms []mutation.WeightedMutation) *Builder { b.mutations = ms; return b }

func (b *Builder) WithMaxTime(d time.Duration) *Builder { b.maxTime = &d; return b }

func (b *Builder) WithMaxGenerations(n int) *Builder { b.maxGenerations = &n; return b }

func (b *Builder) WithCostVariation(sample int, cv float64) *Builder {
	b.varSample, b.varCV, b.hasVariation = sample, cv, true
	return b
}

// WithLogger injects the progress sink. A nil sink disables logging without
// changing any code path.
func (b *Builder) WithLogger(logger func(string)) *Builder {
	if logger == nil {
		logger = func(string) {}
	}
	b.logger = logger
	return b
}

// WithOffspring sets how many candidates each generation evaluates in
// parallel.
func (b *Builder) WithOffspring(n int) *Builder { b.offspring = n; return b }

func (b *Builder) Build() (*Solver, error) {
	if b.problem == nil {
		return nil, &ConfigurationError{Field: "problem", Reason: "required"}
	}
	if b.initialSize < 1 {
		return nil, &ConfigurationError{Field: "initialSize", Reason: "must be at least 1"}
	}
	if b.offspring < 1 {
		return nil, &ConfigurationError{Field: "offspring", Reason: "must be at least 1"}
	}
	if b.hasVariation && b.varSample < 1 {
		return nil, &ConfigurationError{Field: "variation.sample", Reason: "must be at least 1"}
	}
	random := core.NewRandom(b.seed)
	pop := b.pop
	if pop == nil {
		pop = population.NewRosomaxa(population.DefaultRosomaxaConfig(), random)
	}
	initial := b.initialMethods
	if len(initial) == 0 {
		initial = []mutation.WeightedRecreate{{Recreate: mutation.CheapestRecreate{}, Weight: 1}}
	}
	for _, m := range initial {
		if m.Weight < 0 {
			return nil, &ConfigurationError{Field: "initialMethods", Reason: "negative weight"}
		}
	}
	mutations := b.mutations
	if len(mutations) == 0 {
		mutations = DefaultMutations(b.problem)
	}
	for _, m := range mutations {
		if m.Weight < 0 {
			return nil, &ConfigurationError{Field: "mutations", Reason: "negative weight"}
		}
	}
	var criteria []Termination
	if b.maxTime != nil {
		criteria = append(criteria, MaxTime(*b.maxTime))
	}
	if b.maxGenerations != nil {
		criteria = append(criteria, MaxGenerations(*b.maxGenerations))
	}
	if b.hasVariation {
		criteria = append(criteria, CostVariation(b.varSample, b.varCV))
	}
	if len(criteria) == 0 {
		criteria = append(criteria, MaxGenerations(3000))
	}
	logger := b.logger
	if logger == nil {
		logger = func(msg string) { log.Printf("%s", msg) }
	}
	window := b.varSample
	return &Solver{
		problem:     b.problem,
		pop:         pop,
		random:      random,
		initial:     initial,
		initialSize: b.initialSize,
		mutations:   mutations,
		termination: CompositeTermination(criteria...),
		logger:      logger,
		offspring:   b.offspring,
		window:      window,
	}, nil
}

// DefaultMutations is the stock operator portfolio: a weighted ruin-recreate
// composite plus a lightly weighted local-search refinement.
func DefaultMutations(p *core.Problem) []mutation.WeightedMutation {
	jobLimit := core.RemovalLimit{Min: 2, Max: 16, Threshold: 0.1}
	ruin := mutation.CompositeRuin{Groups: []mutation.RuinGroup{
		{Methods: []mutation.WeightedRuin{{Ruin: mutation.NewAdjustedStringRemoval(), Probability: 1}}, Weight: 100},
		{Methods: []mutation.WeightedRuin{
			{Ruin: mutation.NeighbourRemoval{Limit: jobLimit}, Probability: 1},
			{Ruin: mutation.RandomJobRemoval{Limit: core.RemovalLimit{Min: 2, Max: 8, Threshold: 0.1}}, Probability: 0.1},
		}, Weight: 10},
		{Methods: []mutation.WeightedRuin{{Ruin: mutation.WorstJobRemoval{Skip: 4, Limit: jobLimit}, Probability: 1}}, Weight: 10},
		{Methods: []mutation.WeightedRuin{{Ruin: mutation.NewClusterRemoval(p, 3, 8, jobLimit), Probability: 1}}, Weight: 5},
		{Methods: []mutation.WeightedRuin{{Ruin: mutation.RandomRouteRemoval{Limit: core.RemovalLimit{Min: 1, Max: 3, Threshold: 0.2}}, Probability: 1}}, Weight: 2},
	}}
	recreate := mutation.CompositeRecreate{Methods: []mutation.WeightedRecreate{
		{Recreate: mutation.CheapestRecreate{}, Weight: 50},
		{Recreate: mutation.RegretRecreate{Start: 2, End: 3}, Weight: 20},
		{Recreate: mutation.BlinksRecreate{}, Weight: 10},
		{Recreate: mutation.GapsRecreate{MinGap: 60}, Weight: 5},
		{Recreate: mutation.NearestRecreate{}, Weight: 5},
	}}
	return []mutation.WeightedMutation{
		{Mutation: mutation.RuinRecreate{Ruin: ruin, Recreate: recreate}, Weight: 100},
		{Mutation: mutation.LocalSearch{MinRepeat: 1, MaxRepeat: 3}, Weight: 10},
	}
}
