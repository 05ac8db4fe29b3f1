package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
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

	// OptimizationDuration records time spent in one optimization call.
	OptimizationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_optimization_duration_seconds", Help: "Route optimization duration in seconds.", Buckets: []float64{.001, .005, .01, .05, .1, .5, 1}},
	)
	// OptimizedRoutes counts produced vehicle routes.
	OptimizedRoutes = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimized_routes_total", Help: "Vehicle routes produced by the optimizer."},
	)
	// UnassignedEmployees counts employees dropped by the capacity truncation.
	UnassignedEmployees = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "unassigned_employees_total", Help: "Employees left without a seat after clustering."},
	)
	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "http_rate_limited_total", Help: "Requests rejected with 429."},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizationDuration)
		Registry.MustRegister(OptimizedRoutes)
		Registry.MustRegister(UnassignedEmployees)
		Registry.MustRegister(RateLimited)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
