package api

import (
	"delivery-dispatch-service/internal/api/handlers"
	"delivery-dispatch-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the read-only report handlers for a finished dispatch run.
// gatherer backs /metrics; nil uses the default registry.
func NewRouter(run *services.DispatchRun, gatherer prometheus.Gatherer, log zerolog.Logger, clock handlers.Clock) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	pkgHandler := &handlers.PackageHandler{Reports: run.Reporter, Clock: clock}
	truckHandler := &handlers.TruckHandler{Reports: run.Reporter, Clock: clock}
	planHandler := &handlers.PlanHandler{Run: run}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/packages", pkgHandler.List)
	mux.HandleFunc("/packages/{id}", pkgHandler.Get)
	mux.HandleFunc("/trucks", truckHandler.List)
	mux.HandleFunc("/plan", planHandler.Get)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return requestMiddleware(log, mux)
}
