package main

import (
	"context"
	"database/sql"
	"escort-route-service/internal/adapters/cache"
	"escort-route-service/internal/adapters/distance"
	"escort-route-service/internal/adapters/planstore"
	"escort-route-service/internal/adapters/repositories"
	"escort-route-service/internal/adapters/solver"
	"escort-route-service/internal/api"
	"escort-route-service/internal/api/handlers"
	"escort-route-service/internal/config"
	"escort-route-service/internal/platform/db"
	"escort-route-service/internal/platform/metrics"
	"escort-route-service/internal/ports"
	"escort-route-service/internal/services"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (SQL, OSRM, cuOpt, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := db.Open(cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed the demo roster on startup for local runs.
	if err := initAndSeed(conn, dialect, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	provider, err := newMatrixProvider(cfg, conn, dialect)
	if err != nil {
		log.Fatal(err)
	}

	gateway, err := newSolver(cfg)
	if err != nil {
		log.Fatal(err)
	}

	plans, closePlans, err := newPlanStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closePlans()

	roster := repositories.NewSQLRosterRepository(conn)
	planner := &services.TripPlanner{
		Roster:   roster,
		Matrices: provider,
		Solver:   gateway,
		Plans:    plans,
	}

	metrics.RegisterDefault()

	router := api.NewRouter(api.Deps{
		Roster:  roster,
		Plans:   plans,
		Solver:  gateway,
		Planner: planner,
		Defaults: handlers.PlanDefaults{
			Hub:               cfg.Hub,
			Fleet:             cfg.Fleet,
			Policy:            cfg.Policy,
			FarePerKm:         cfg.FarePerKm,
			MaxRadiusKm:       cfg.MaxRadiusKm,
			NormalizeMatrices: cfg.NormalizeMatrices,
			ServiceSeconds:    cfg.DefaultServiceSeconds,
		},
	})

	// Timeouts cover cold-cache matrix fetches plus the solver's polling budget.
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}
	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newMatrixProvider returns the OSRM provider backed by the SQL matrix cache,
// or the straight-line provider when no OSRM URL is configured.
func newMatrixProvider(cfg config.Config, conn *sql.DB, dialect repositories.Dialect) (ports.CostMatrixProvider, error) {
	if cfg.OSRMURL == "" {
		log.Println("OSRM_URL not set; using straight-line distance estimates")
		return distance.EuclideanProvider{}, nil
	}

	var matrixCache ports.MatrixCache
	if dialect == repositories.DialectPostgres {
		matrixCache = cache.NewSQLMatrixCache(conn)
	} else {
		matrixCache = cache.NewSqliteMatrixCache(conn)
	}

	var opts []distance.OSRMOption
	if cfg.OSRMRateLimit > 0 {
		opts = append(opts, distance.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.OSRMRateLimit), 1)))
	}

	return distance.NewOSRMProvider(cfg.OSRMURL, matrixCache, opts...)
}

func newSolver(cfg config.Config) (ports.SolverGateway, error) {
	if cfg.Solver == "greedy" {
		log.Println("SOLVER=greedy; solving in process")
		return solver.GreedySolver{}, nil
	}

	gateway, err := solver.NewCuOptGateway(cfg.CuOptURL)
	if err != nil {
		return nil, err
	}
	gateway.PollInterval = cfg.PollInterval
	gateway.PollAttempts = cfg.PollAttempts
	return gateway, nil
}

func newPlanStore(cfg config.Config) (ports.PlanStore, func(), error) {
	if cfg.RedisURL == "" {
		return planstore.NewMemoryStore(), func() {}, nil
	}

	store, err := planstore.NewRedisStore(cfg.RedisURL, cfg.PlanTTL)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("plan store: %w", err)
	}

	return store, func() { _ = store.Close() }, nil
}
