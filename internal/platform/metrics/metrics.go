package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served at /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// TravelUnits counts aggregated travel units by kind.
	TravelUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "travel_units_total", Help: "Travel units produced by escort aggregation."},
		[]string{"kind"},
	)
	// MatrixFallbacks counts cost matrices answered by the straight-line estimate.
	MatrixFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "cost_matrix_fallbacks_total", Help: "Cost matrices built from the straight-line fallback."},
	)
	// SolverOutcomes counts terminal solver results by status.
	SolverOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_outcomes_total", Help: "Terminal solver results by status."},
		[]string{"status"},
	)
	SolverDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_duration_seconds", Help: "Time from submission to terminal solver result.", Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}},
	)
)

var regOnce sync.Once

// RegisterDefault registers the collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(TravelUnits)
		Registry.MustRegister(MatrixFallbacks)
		Registry.MustRegister(SolverOutcomes)
		Registry.MustRegister(SolverDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
