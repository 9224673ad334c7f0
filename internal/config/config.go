package config

import (
	"escort-route-service/internal/domain"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

type Config struct {
	Port string

	// DatabaseURL selects Postgres; otherwise SQLite at DBPath is used.
	DatabaseURL string
	DBPath      string
	SeedPath    string

	// RedisURL enables the Redis plan store; empty keeps plans in memory.
	RedisURL string
	PlanTTL  time.Duration

	// OSRMURL empty means straight-line estimates only.
	OSRMURL       string
	OSRMRateLimit float64

	// Solver is "cuopt" or "greedy"; greedy solves in process.
	Solver       string
	CuOptURL     string
	PollInterval time.Duration
	PollAttempts int

	Hub               domain.Coordinates
	FarePerKm         float64
	MaxRadiusKm       float64
	NormalizeMatrices bool

	// DefaultServiceSeconds applies to posted roster rows without service_seconds.
	DefaultServiceSeconds float64

	Fleet  domain.FleetParams
	Policy domain.EscortPolicy
}

// Load reads .env (when present) and the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var p parser
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: Get("DATABASE_URL", ""),
		DBPath:      Get("DB_PATH", "data/app.db"),
		SeedPath:    Get("SEED_PATH", "data/seeds/roster.json"),
		RedisURL:    Get("REDIS_URL", ""),
		PlanTTL:     p.getDuration("PLAN_TTL", 24*time.Hour),

		OSRMURL:       Get("OSRM_URL", ""),
		OSRMRateLimit: p.getFloat("OSRM_RATE_LIMIT", 10),

		Solver:       strings.ToLower(Get("SOLVER", "cuopt")),
		CuOptURL:     Get("CUOPT_URL", "http://localhost:5000"),
		PollInterval: p.getDuration("CUOPT_POLL_INTERVAL", time.Second),
		PollAttempts: p.getInt("CUOPT_POLL_ATTEMPTS", 60),

		Hub: domain.Coordinates{
			Lat: p.getFloat("HUB_LAT", 12.9716),
			Lon: p.getFloat("HUB_LON", 77.5946),
		},
		FarePerKm:         p.getFloat("FARE_PER_KM", 10),
		MaxRadiusKm:       p.getFloat("MAX_RADIUS_KM", 0),
		NormalizeMatrices: p.getBool("NORMALIZE_MATRICES", true),

		DefaultServiceSeconds: p.getFloat("DEFAULT_SERVICE_SECONDS", 120),

		Fleet: domain.FleetParams{
			VehicleCount:     p.getInt("VEHICLE_COUNT", 10),
			VehicleCapacity:  p.getInt("VEHICLE_CAPACITY", 4),
			MaxDetourSeconds: p.getFloat("MAX_DETOUR_SECONDS", 3600),
			ReturnToHub:      p.getBool("RETURN_TO_HUB", false),
			IsolateGroups:    p.getBool("ISOLATE_GROUPS", false),
		},
	}
	if p.err != nil {
		return Config{}, fmt.Errorf("load config: %w", p.err)
	}

	policy, err := LoadPolicy(Get("POLICY_FILE", ""))
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Policy = policy

	if !cfg.Hub.Valid() {
		return Config{}, fmt.Errorf("load config: hub coordinates out of range: %+v", cfg.Hub)
	}
	if cfg.Solver != "cuopt" && cfg.Solver != "greedy" {
		return Config{}, fmt.Errorf("load config: SOLVER must be cuopt or greedy, got %q", cfg.Solver)
	}
	if cfg.DefaultServiceSeconds < 0 {
		return Config{}, fmt.Errorf("load config: DEFAULT_SERVICE_SECONDS must not be negative")
	}
	if cfg.PollAttempts < 1 {
		return Config{}, fmt.Errorf("load config: CUOPT_POLL_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

// parser keeps the first conversion error so Load can report it once.
type parser struct{ err error }

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s=%q: %w", key, raw, err)
	}
}

func (p *parser) getInt(key string, fallback int) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) getFloat(key string, fallback float64) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) getBool(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}
