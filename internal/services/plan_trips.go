package services

import (
	"context"
	"errors"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/platform/metrics"
	"escort-route-service/internal/platform/obs"
	"escort-route-service/internal/ports"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type PlanTripsRequest struct {
	Hub domain.Coordinates
	// Roster overrides the stored roster when non-nil. Index fields are
	// ignored; matrix indices are assigned in roster order.
	Roster   []domain.Person
	TripType domain.TripType
	Fleet    domain.FleetParams
	Policy   domain.EscortPolicy
	// MaxRadiusMeters excludes people farther from the hub; 0 keeps everyone.
	MaxRadiusMeters   float64
	FarePerKm         float64
	NormalizeMatrices bool
}

// TripPlanner runs the full planning pipeline: roster, cost matrices,
// escort aggregation, solver submission and decoding.
type TripPlanner struct {
	Roster   ports.RosterRepository
	Matrices ports.CostMatrixProvider
	Solver   ports.SolverGateway
	// Plans is optional; when set every successful plan is stored.
	Plans ports.PlanStore
}

func (p *TripPlanner) PlanTrips(ctx context.Context, req PlanTripsRequest) (plan *domain.TripPlan, err error) {
	defer obs.Time(ctx, "plan_trips")(&err)

	if !req.TripType.Valid() {
		return nil, &domain.InputError{Field: "trip_type", Reason: fmt.Sprintf("unknown value %q", req.TripType)}
	}
	if !req.Hub.Valid() {
		return nil, &domain.InputError{Field: "hub", Reason: "coordinates out of range"}
	}

	roster := req.Roster
	if roster == nil {
		if p.Roster == nil {
			return nil, errors.New("plan trips: no roster given and no roster repository configured")
		}
		roster, err = p.Roster.ListRoster(ctx)
		if err != nil {
			return nil, fmt.Errorf("plan trips: list roster: %w", err)
		}
	}

	for i, person := range roster {
		if !person.Location.Valid() {
			return nil, &domain.InputError{Field: fmt.Sprintf("roster[%d].location", i), Reason: "coordinates out of range"}
		}
	}

	roster, warnings := FilterByRadius(req.Hub, roster, req.MaxRadiusMeters)

	plan = &domain.TripPlan{
		ID:       uuid.NewString(),
		TripType: req.TripType,
		Trips:    []domain.VehicleTrip{},
		Warnings: warnings,
	}

	if len(roster) == 0 {
		plan.Warnings = append(plan.Warnings, "no riders to plan")
		return plan, p.save(ctx, plan)
	}

	indexed := make([]domain.Person, len(roster))
	points := make([]domain.Coordinates, 0, len(roster)+1)
	points = append(points, req.Hub)
	for i, person := range roster {
		person.Index = i + 1
		indexed[i] = person
		points = append(points, person.Location)
	}

	costs, err := p.Matrices.Matrices(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("plan trips: cost matrices: %w", err)
	}
	if costs.Degraded {
		metrics.MatrixFallbacks.Inc()
		plan.Warnings = append(plan.Warnings, "routing service unavailable; distances are straight-line estimates")
	}

	distance, duration := costs.Distance, costs.Duration
	if req.NormalizeMatrices {
		distance = ShortestPaths(distance)
		duration = ShortestPaths(duration)
	}

	agg, err := AggregateEscorts(indexed, distance, duration, req.Policy)
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}
	for _, u := range agg.Units[1:] {
		metrics.TravelUnits.WithLabelValues(string(u.Kind())).Inc()
	}
	log.Printf("op=plan_trips plan_id=%s riders=%d units=%d", plan.ID, len(indexed), len(agg.Units)-1)

	optReq, err := BuildRequest(agg, req.Fleet)
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}

	start := time.Now()
	result := p.Solver.Solve(ctx, optReq)
	metrics.SolverDuration.Observe(time.Since(start).Seconds())
	metrics.SolverOutcomes.WithLabelValues(string(result.Status)).Inc()

	if !result.OK() {
		return nil, fmt.Errorf("plan trips: %w", &domain.SolveError{Status: result.Status, Cause: result.Cause})
	}

	trips, summary, err := DecodeSolution(result.Solution, agg.Units, distance, req.TripType, req.FarePerKm)
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}
	plan.Trips = trips
	plan.Summary = summary

	return plan, p.save(ctx, plan)
}

func (p *TripPlanner) save(ctx context.Context, plan *domain.TripPlan) error {
	if p.Plans == nil {
		return nil
	}
	if err := p.Plans.Save(ctx, plan); err != nil {
		return fmt.Errorf("plan trips: save plan: %w", err)
	}
	return nil
}
