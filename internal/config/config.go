// Package config maps the declarative solve-config document onto a solver
// Builder. The document selects population type and tuning, mutation
// variants with weights, termination thresholds and the logging flag.
package config

import (
	"fmt"
	"time"

	yaml "gopkg.in/yaml.v3"

	"routesolver/internal/core"
	"routesolver/internal/mutation"
	"routesolver/internal/population"
	"routesolver/internal/solver"
)

type Config struct {
	Population  *PopulationConfig  `yaml:"population"`
	Mutations   []MutationConfig   `yaml:"mutations"`
	Termination *TerminationConfig `yaml:"termination"`
	Logging     *LoggingConfig     `yaml:"logging"`
}

type PopulationConfig struct {
	Type           string           `yaml:"type"` // elitism | rosomaxa
	InitialMethods []RecreateMethod `yaml:"initialMethods"`
	InitialSize    int              `yaml:"initialSize"`
	MaxSize        int              `yaml:"maxSize"`
	SelectionSize  int              `yaml:"selectionSize"`
	Rosomaxa       *RosomaxaTuning  `yaml:"rosomaxa"`
}

type RosomaxaTuning struct {
	MaxEliteSize       int     `yaml:"maxEliteSize"`
	MaxNodeSize        int     `yaml:"maxNodeSize"`
	SpreadFactor       float64 `yaml:"spreadFactor"`
	ReductionFactor    float64 `yaml:"reductionFactor"`
	DistributionFactor float64 `yaml:"distributionFactor"`
	LearningRate       float64 `yaml:"learningRate"`
	HitMemory          int     `yaml:"hitMemory"`
	RebalanceCount     int     `yaml:"rebalanceCount"`
	ExplorationRatio   float64 `yaml:"explorationRatio"`
}

type MutationConfig struct {
	Type      string           `yaml:"type"` // ruin-recreate | local-search
	Weight    float64          `yaml:"weight"`
	Ruins     []RuinGroup      `yaml:"ruins"`
	Recreates []RecreateMethod `yaml:"recreates"`
	MinRepeat int              `yaml:"minRepeat"`
	MaxRepeat int              `yaml:"maxRepeat"`
}

type RuinGroup struct {
	Methods []RuinMethod `yaml:"methods"`
	Weight  float64      `yaml:"weight"`
}

type RuinMethod struct {
	Type        string  `yaml:"type"`
	Probability float64 `yaml:"probability"`
	Min         int     `yaml:"min"`
	Max         int     `yaml:"max"`
	Threshold   float64 `yaml:"threshold"`
	Skip        int     `yaml:"skip"`
	Lmax        int     `yaml:"lmax"`
	Cavg        int     `yaml:"cavg"`
	Alpha       float64 `yaml:"alpha"`
	Cmin        int     `yaml:"cmin"`
	Cmax        int     `yaml:"cmax"`
}

type RecreateMethod struct {
	Type   string  `yaml:"type"`
	Weight float64 `yaml:"weight"`
	Start  int     `yaml:"start"`
	End    int     `yaml:"end"`
	Min    float64 `yaml:"min"`
}

type TerminationConfig struct {
	MaxTimeSec     int              `yaml:"maxTime"`
	MaxGenerations int              `yaml:"maxGenerations"`
	Variation      *VariationConfig `yaml:"variation"`
}

type VariationConfig struct {
	Sample int     `yaml:"sample"`
	CV     float64 `yaml:"cv"`
}

type LoggingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Parse reads a YAML (or JSON) solve-config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &solver.ConfigurationError{Field: "document", Reason: err.Error()}
	}
	return &cfg, nil
}

// Apply configures a Builder from the document. Unknown variant types and
// non-positive sizes surface as ConfigurationErrors before any search runs.
func Apply(b *solver.Builder, cfg *Config, problem *core.Problem, random core.Random) (*solver.Builder, error) {
	if cfg.Population != nil {
		if err := applyPopulation(b, cfg.Population, random); err != nil {
			return nil, err
		}
	}
	if len(cfg.Mutations) > 0 {
		var variants []mutation.WeightedMutation
		for i, mc := range cfg.Mutations {
			m, err := buildMutation(&mc, problem)
			if err != nil {
				return nil, err
			}
			w := mc.Weight
			if w == 0 {
				w = 1
			}
			if w < 0 {
				return nil, &solver.ConfigurationError{Field: fmt.Sprintf("mutations[%d].weight", i), Reason: "negative"}
			}
			variants = append(variants, mutation.WeightedMutation{Mutation: m, Weight: w})
		}
		b.WithMutations(variants)
	}
	if cfg.Termination != nil {
		if cfg.Termination.MaxTimeSec > 0 {
			b.WithMaxTime(time.Duration(cfg.Termination.MaxTimeSec) * time.Second)
		}
		if cfg.Termination.MaxGenerations > 0 {
			b.WithMaxGenerations(cfg.Termination.MaxGenerations)
		}
		if v := cfg.Termination.Variation; v != nil {
			b.WithCostVariation(v.Sample, v.CV)
		}
	}
	if cfg.Logging != nil && !cfg.Logging.Enabled {
		b.WithLogger(func(string) {})
	}
	return b, nil
}

func applyPopulation(b *solver.Builder, pc *PopulationConfig, random core.Random) error {
	if len(pc.InitialMethods) > 0 {
		var methods []mutation.WeightedRecreate
		for _, rm := range pc.InitialMethods {
			r, err := buildRecreate(&rm)
			if err != nil {
				return err
			}
			w := rm.Weight
			if w == 0 {
				w = 1
			}
			methods = append(methods, mutation.WeightedRecreate{Recreate: r, Weight: w})
		}
		b.WithInitialMethods(methods)
	}
	if pc.InitialSize != 0 {
		if pc.InitialSize < 0 {
			return &solver.ConfigurationError{Field: "population.initialSize", Reason: "must be positive"}
		}
		b.WithInitialSize(pc.InitialSize)
	}
	switch pc.Type {
	case "", "rosomaxa":
		tuning := population.DefaultRosomaxaConfig()
		if pc.SelectionSize > 0 {
			tuning.SelectionSize = pc.SelectionSize
		}
		if r := pc.Rosomaxa; r != nil {
			if r.MaxEliteSize > 0 {
				tuning.MaxEliteSize = r.MaxEliteSize
			}
			if r.MaxNodeSize > 0 {
				tuning.MaxNodeSize = r.MaxNodeSize
			}
			if r.SpreadFactor > 0 {
				tuning.SpreadFactor = r.SpreadFactor
			}
			if r.ReductionFactor > 0 {
				tuning.ReductionFactor = r.ReductionFactor
			}
			if r.DistributionFactor > 0 {
				tuning.DistributionFactor = r.DistributionFactor
			}
			if r.LearningRate > 0 {
				tuning.LearningRate = r.LearningRate
			}
			if r.HitMemory > 0 {
				tuning.HitMemory = r.HitMemory
			}
			if r.RebalanceCount > 0 {
				tuning.RebalanceCount = r.RebalanceCount
			}
			if r.ExplorationRatio > 0 {
				tuning.ExplorationRatio = r.ExplorationRatio
			}
		}
		b.WithPopulation(population.NewRosomaxa(tuning, random))
	case "elitism":
		maxSize := pc.MaxSize
		if maxSize == 0 {
			maxSize = 4
		}
		if maxSize < 0 {
			return &solver.ConfigurationError{Field: "population.maxSize", Reason: "must be positive"}
		}
		selection := pc.SelectionSize
		if selection == 0 {
			selection = 1
		}
		b.WithPopulation(population.NewElitism(maxSize, selection, random))
	default:
		return &solver.ConfigurationError{Field: "population.type", Reason: "unknown type " + pc.Type}
	}
	return nil
}

func buildMutation(mc *MutationConfig, problem *core.Problem) (mutation.Mutation, error) {
	switch mc.Type {
	case "", "ruin-recreate":
		if len(mc.Ruins) == 0 || len(mc.Recreates) == 0 {
			return nil, &solver.ConfigurationError{Field: "mutations", Reason: "ruin-recreate needs ruins and recreates"}
		}
		var groups []mutation.RuinGroup
		for _, g := range mc.Ruins {
			if len(g.Methods) == 0 {
				return nil, &solver.ConfigurationError{Field: "mutations.ruins", Reason: "group has no methods"}
			}
			var methods []mutation.WeightedRuin
			for _, rm := range g.Methods {
				r, err := buildRuin(&rm, problem)
				if err != nil {
					return nil, err
				}
				methods = append(methods, mutation.WeightedRuin{Ruin: r, Probability: rm.Probability})
			}
			w := g.Weight
			if w == 0 {
				w = 1
			}
			groups = append(groups, mutation.RuinGroup{Methods: methods, Weight: w})
		}
		var recreates []mutation.WeightedRecreate
		for _, rm := range mc.Recreates {
			r, err := buildRecreate(&rm)
			if err != nil {
				return nil, err
			}
			w := rm.Weight
			if w == 0 {
				w = 1
			}
			recreates = append(recreates, mutation.WeightedRecreate{Recreate: r, Weight: w})
		}
		return mutation.RuinRecreate{
			Ruin:     mutation.CompositeRuin{Groups: groups},
			Recreate: mutation.CompositeRecreate{Methods: recreates},
		}, nil
	case "local-search":
		if mc.MinRepeat < 0 || mc.MaxRepeat < mc.MinRepeat {
			return nil, &solver.ConfigurationError{Field: "mutations.local-search", Reason: "bad repetition range"}
		}
		return mutation.LocalSearch{MinRepeat: mc.MinRepeat, MaxRepeat: mc.MaxRepeat}, nil
	default:
		return nil, &solver.ConfigurationError{Field: "mutations.type", Reason: "unknown type " + mc.Type}
	}
}

func buildRuin(rm *RuinMethod, problem *core.Problem) (mutation.Ruin, error) {
	limit := core.RemovalLimit{Min: rm.Min, Max: rm.Max, Threshold: rm.Threshold}
	if limit.Min > limit.Max {
		return nil, &solver.ConfigurationError{Field: "ruin." + rm.Type, Reason: "min exceeds max"}
	}
	switch rm.Type {
	case "adjusted-string":
		r := mutation.NewAdjustedStringRemoval()
		if rm.Lmax > 0 {
			r.Lmax = rm.Lmax
		}
		if rm.Cavg > 0 {
			r.Cavg = rm.Cavg
		}
		if rm.Alpha > 0 {
			r.Alpha = rm.Alpha
		}
		return r, nil
	case "neighbour":
		return mutation.NeighbourRemoval{Limit: limit}, nil
	case "random-job":
		return mutation.RandomJobRemoval{Limit: limit}, nil
	case "random-route":
		return mutation.RandomRouteRemoval{Limit: limit}, nil
	case "worst-job":
		return mutation.WorstJobRemoval{Skip: rm.Skip, Limit: limit}, nil
	case "cluster":
		cmin, cmax := rm.Cmin, rm.Cmax
		if cmin == 0 {
			cmin = 3
		}
		if cmax == 0 {
			cmax = 8
		}
		if cmax <= cmin {
			return nil, &solver.ConfigurationError{Field: "ruin.cluster", Reason: "cmax must exceed cmin"}
		}
		return mutation.NewClusterRemoval(problem, cmin, cmax, limit), nil
	default:
		return nil, &solver.ConfigurationError{Field: "ruin.type", Reason: "unknown type " + rm.Type}
	}
}

func buildRecreate(rm *RecreateMethod) (mutation.Recreate, error) {
	switch rm.Type {
	case "cheapest":
		return mutation.CheapestRecreate{}, nil
	case "regret":
		if rm.Start < 2 || rm.End < rm.Start {
			return nil, &solver.ConfigurationError{Field: "recreate.regret", Reason: "bad start/end range"}
		}
		return mutation.RegretRecreate{Start: rm.Start, End: rm.End}, nil
	case "blinks":
		return mutation.BlinksRecreate{}, nil
	case "gaps":
		return mutation.GapsRecreate{MinGap: rm.Min}, nil
	case "nearest":
		return mutation.NearestRecreate{}, nil
	default:
		return nil, &solver.ConfigurationError{Field: "recreate.type", Reason: "unknown type " + rm.Type}
	}
}
