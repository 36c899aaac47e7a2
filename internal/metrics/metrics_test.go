package metrics

import "testing"

func TestRegisterDefaultExposesSolverCollectors(t *testing.T) {
	RegisterDefault()
	RegisterDefault() // idempotent

	SolveRuns.WithLabelValues("done").Inc()
	SolveGenerations.Add(3)
	SolveDuration.Observe(0.2)
	SolveImprovement.Observe(0.1)
	HTTPRequests.WithLabelValues("GET", "/healthz", "200").Inc()
	HTTPDuration.WithLabelValues("GET", "/healthz", "200").Observe(0.01)

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	want := map[string]bool{
		"solver_runs_total":             false,
		"solver_generations_total":      false,
		"solver_run_duration_seconds":   false,
		"solver_run_improvement_ratio":  false,
		"http_requests_total":           false,
		"http_request_duration_seconds": false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("collector %s not registered", name)
		}
	}
}
