package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SolveRuns counts solve runs by terminal status.
	SolveRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_runs_total", Help: "Solve runs by terminal status."},
		[]string{"status"},
	)
	// SolveGenerations counts generations executed across all runs.
	SolveGenerations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_generations_total", Help: "Generations executed across all runs."},
	)
	// SolveDuration tracks run durations in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_run_duration_seconds", Help: "Solve run duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900}},
	)
	// SolveImprovement tracks the relative cost improvement per run.
	SolveImprovement = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_run_improvement_ratio", Help: "Relative best-cost improvement over the initial candidate.", Buckets: []float64{0, 0.01, 0.05, 0.1, 0.2, 0.4, 0.8}},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolveRuns)
		Registry.MustRegister(SolveGenerations)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SolveImprovement)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
