package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nemt-route-service/internal/api/handlers"
	"nemt-route-service/internal/metrics"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(pipeline handlers.Planner, cacheBackend string) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{Pipeline: pipeline}

	mux.HandleFunc("/health", handlers.Health(cacheBackend))
	mux.HandleFunc("/v1/plans", planHandler.Plan)
	mux.HandleFunc("/v1/plans/csv", planHandler.PlanCSV)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
