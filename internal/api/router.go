package api

import (
	"escort-route-service/internal/api/handlers"
	"escort-route-service/internal/platform/metrics"
	"escort-route-service/internal/ports"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Roster   ports.RosterRepository
	Plans    ports.PlanStore
	Solver   ports.SolverGateway
	Planner  handlers.Planner
	Defaults handlers.PlanDefaults
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	rosterHandler := &handlers.RosterHandler{Repo: deps.Roster}
	readyHandler := &handlers.ReadyHandler{Solver: deps.Solver}
	planHandler := &handlers.PlanHandler{
		Planner:  deps.Planner,
		Plans:    deps.Plans,
		Defaults: deps.Defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/ready", readyHandler.Ready)
	mux.HandleFunc("/roster", rosterHandler.List)
	mux.HandleFunc("/plans", planHandler.Create)
	mux.HandleFunc("/plans/{id}", planHandler.Get)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
