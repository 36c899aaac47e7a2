package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"routesolver/internal/core"
	"routesolver/internal/solver"
)

const fullDocument = `
population:
  type: rosomaxa
  initialMethods:
    - type: cheapest
      weight: 1
    - type: regret
      weight: 1
      start: 2
      end: 3
  initialSize: 2
  selectionSize: 4
  rosomaxa:
    maxEliteSize: 2
    maxNodeSize: 2
    explorationRatio: 0.9
mutations:
  - type: ruin-recreate
    weight: 100
    ruins:
      - weight: 100
        methods:
          - type: adjusted-string
            probability: 1
            lmax: 10
            cavg: 10
            alpha: 0.01
      - weight: 10
        methods:
          - type: neighbour
            probability: 1
            min: 8
            max: 16
            threshold: 0.1
          - type: random-job
            probability: 0.1
            min: 2
            max: 8
            threshold: 0.1
      - weight: 5
        methods:
          - type: cluster
            probability: 1
            min: 2
            max: 8
            threshold: 0.1
            cmin: 3
            cmax: 8
    recreates:
      - type: cheapest
        weight: 50
      - type: blinks
        weight: 10
      - type: gaps
        weight: 5
        min: 60
      - type: nearest
        weight: 5
  - type: local-search
    weight: 10
    minRepeat: 1
    maxRepeat: 3
termination:
  maxTime: 300
  maxGenerations: 3000
  variation:
    sample: 200
    cv: 0.05
logging:
  enabled: false
`

func testProblem(t *testing.T) *core.Problem {
	t.Helper()
	jobs := make([]core.Job, 10)
	for i := range jobs {
		jobs[i] = core.Job{ID: fmt.Sprintf("j%d", i), Location: core.Location{Lat: 40 + float64(i)*0.01, Lng: -74}}
	}
	p, err := core.NewProblem(jobs, []core.Vehicle{{ID: "v1"}, {ID: "v2"}}, nil, nil)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}

func TestParseAndApplyFullDocument(t *testing.T) {
	cfg, err := Parse([]byte(fullDocument))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := testProblem(t)
	b, err := Apply(solver.NewBuilder(p).WithSeed(1), cfg, p, core.NewRandom(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s, err := b.WithMaxGenerations(3).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	best, stats, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if best == nil || stats.Generations != 3 {
		t.Fatalf("unexpected run result: %+v", stats)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("{unclosed")); err == nil {
		t.Fatal("garbage document accepted")
	}
}

func TestApplyRejectsUnknownTypes(t *testing.T) {
	p := testProblem(t)
	docs := map[string]string{
		"mutation type": "mutations:\n  - type: simulated-annealing\n",
		"ruin type":     "mutations:\n  - type: ruin-recreate\n    ruins:\n      - methods:\n          - type: warp\n    recreates:\n      - type: cheapest\n",
		"recreate type": "mutations:\n  - type: ruin-recreate\n    ruins:\n      - methods:\n          - type: random-job\n            min: 1\n            max: 2\n    recreates:\n      - type: psychic\n",
		"population":    "population:\n  type: tournament\n",
		"regret range":  "mutations:\n  - type: ruin-recreate\n    ruins:\n      - methods:\n          - type: random-job\n            min: 1\n            max: 2\n    recreates:\n      - type: regret\n        start: 1\n        end: 0\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = Apply(solver.NewBuilder(p), cfg, p, core.NewRandom(1))
			if err == nil {
				t.Fatal("bad document accepted")
			}
			var cfgErr *solver.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want ConfigurationError, got %v", err)
			}
		})
	}
}

func TestLoggingDisabledIsNoop(t *testing.T) {
	doc := "logging:\n  enabled: false\ntermination:\n  maxGenerations: 2\n"
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := testProblem(t)
	b, err := Apply(solver.NewBuilder(p).WithSeed(2), cfg, p, core.NewRandom(2))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
