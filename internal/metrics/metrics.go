package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// GeocodeLookups counts address resolutions by result
	// (hit, negative_hit, resolved, not_found, error).
	GeocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "geocode_lookups_total", Help: "Address geocode lookups by result."},
		[]string{"result"},
	)

	// SolverRequests counts optimization calls by outcome (ok, failed).
	SolverRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_requests_total", Help: "Solver requests by outcome."},
		[]string{"status"},
	)

	// ShapeRequests counts road-shape fetches by outcome (ok, fallback).
	ShapeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shape_requests_total", Help: "Route shape requests by outcome."},
		[]string{"status"},
	)

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
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(GeocodeLookups)
		Registry.MustRegister(SolverRequests)
		Registry.MustRegister(ShapeRequests)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
