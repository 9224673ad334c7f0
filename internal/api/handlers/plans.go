package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"escort-route-service/internal/api/dto"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/ports"
	"escort-route-service/internal/services"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Planner is the planning pipeline the plan endpoints drive.
type Planner interface {
	PlanTrips(ctx context.Context, req services.PlanTripsRequest) (*domain.TripPlan, error)
}

// PlanDefaults fills the request fields a caller leaves out.
type PlanDefaults struct {
	Hub               domain.Coordinates
	Fleet             domain.FleetParams
	Policy            domain.EscortPolicy
	FarePerKm         float64
	MaxRadiusKm       float64
	NormalizeMatrices bool

	// ServiceSeconds is the dwell time of a posted person without one.
	ServiceSeconds float64
}

type PlanHandler struct {
	Planner  Planner
	Plans    ports.PlanStore
	Defaults PlanDefaults
}

// Create runs one planning pass for the posted roster (or the stored one)
// and returns the decoded vehicle trips.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, err := h.toServiceRequest(req)
	if err != nil {
		writeServiceError(w, r, "plan trips", err)
		return
	}

	plan, err := h.Planner.PlanTrips(r.Context(), svcReq)
	if err != nil {
		writeServiceError(w, r, "plan trips", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// Get returns a previously computed plan by id.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "plan id is required")
		return
	}

	plan, err := h.Plans.Get(r.Context(), id)
	if errors.Is(err, ports.ErrPlanNotFound) {
		writeError(w, r, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, "get plan", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

func (h *PlanHandler) toServiceRequest(req dto.PlanRequest) (services.PlanTripsRequest, error) {
	d := h.Defaults

	tripType := domain.TripType(strings.ToLower(strings.TrimSpace(req.TripType)))
	if tripType == "" {
		tripType = domain.TripDropoff
	}

	hub := d.Hub
	if req.Hub != nil {
		hub = domain.Coordinates{Lat: req.Hub.Lat, Lon: req.Hub.Lon}
	}

	fleet := d.Fleet
	if req.VehicleCount != 0 {
		fleet.VehicleCount = req.VehicleCount
	}
	if req.VehicleCapacity != 0 {
		fleet.VehicleCapacity = req.VehicleCapacity
	}
	if req.MaxDetourSeconds != 0 {
		fleet.MaxDetourSeconds = req.MaxDetourSeconds
	}
	if req.TimeLimitSeconds != 0 {
		fleet.TimeLimitSeconds = req.TimeLimitSeconds
	}
	if req.ReturnToHub != nil {
		fleet.ReturnToHub = *req.ReturnToHub
	}
	if req.IsolateGroups != nil {
		fleet.IsolateGroups = *req.IsolateGroups
	}

	policy := d.Policy
	if req.EscortRequired != nil {
		policy.Bypass = !*req.EscortRequired
	}
	if req.GroupCap != 0 {
		policy.GroupCap = req.GroupCap
	}
	if req.ProximityMeters != 0 {
		policy.ProximityThreshold = req.ProximityMeters
	}
	if err := policy.Validate(); err != nil {
		return services.PlanTripsRequest{}, err
	}

	radiusKm := d.MaxRadiusKm
	if req.MaxRadiusKm != nil {
		radiusKm = *req.MaxRadiusKm
	}
	fare := d.FarePerKm
	if req.FarePerKm != nil {
		fare = *req.FarePerKm
	}
	if fare < 0 {
		return services.PlanTripsRequest{}, &domain.InputError{Field: "fare_per_km", Reason: "must not be negative"}
	}

	var roster []domain.Person
	if req.Roster != nil {
		var err error
		if roster, err = toRoster(req.Roster, d.ServiceSeconds); err != nil {
			return services.PlanTripsRequest{}, err
		}
	}

	return services.PlanTripsRequest{
		Hub:               hub,
		Roster:            roster,
		TripType:          tripType,
		Fleet:             fleet,
		Policy:            policy,
		MaxRadiusMeters:   radiusKm * 1000,
		FarePerKm:         fare,
		NormalizeMatrices: d.NormalizeMatrices,
	}, nil
}

func toRoster(in []dto.PersonRequest, serviceSeconds float64) ([]domain.Person, error) {
	out := make([]domain.Person, 0, len(in))
	for i, p := range in {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, &domain.InputError{Field: fmt.Sprintf("roster[%d].id", i), Reason: "is required"}
		}

		class, err := domain.ParseGender(p.Gender)
		if err != nil {
			var inputErr *domain.InputError
			if errors.As(err, &inputErr) {
				inputErr.Field = fmt.Sprintf("roster[%d].%s", i, inputErr.Field)
			}
			return nil, err
		}

		service := serviceSeconds
		if p.ServiceSeconds != nil {
			service = *p.ServiceSeconds
		}
		if service < 0 {
			return nil, &domain.InputError{Field: fmt.Sprintf("roster[%d].service_seconds", i), Reason: "must not be negative"}
		}

		out = append(out, domain.Person{
			ID:             id,
			Escort:         class,
			ServiceSeconds: service,
			Location:       domain.Coordinates{Lat: p.Lat, Lon: p.Lon},
		})
	}
	return out, nil
}

func toPlanResponse(p *domain.TripPlan) dto.PlanResponse {
	res := dto.PlanResponse{
		PlanID:   p.ID,
		TripType: string(p.TripType),
		Trips:    make([]dto.VehicleTripResponse, 0, len(p.Trips)),
		Summary: dto.PlanSummaryResponse{
			TotalVehicles:      p.Summary.TotalVehicles,
			ChaperonedVehicles: p.Summary.ChaperonedVehicles,
			TotalRiders:        p.Summary.TotalRiders,
			TotalCost:          p.Summary.TotalCost,
			SolutionCost:       p.Summary.SolutionCost,
			HighDetourRiders:   p.Summary.HighDetourRiders,
		},
		Warnings: p.Warnings,
	}
	if res.Summary.HighDetourRiders == nil {
		res.Summary.HighDetourRiders = []string{}
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}

	for _, t := range p.Trips {
		riders := make([]dto.RiderStopResponse, 0, len(t.Riders))
		for _, s := range t.Riders {
			riders = append(riders, dto.RiderStopResponse{
				PersonID:       s.PersonID,
				UnitID:         s.UnitID,
				Sequence:       s.Sequence,
				RequiresEscort: s.RequiresEscort,
				DirectKm:       s.DirectMeters / 1000,
				TripKm:         s.TripMeters / 1000,
				DetourPercent:  s.DetourPercent,
			})
		}

		res.Trips = append(res.Trips, dto.VehicleTripResponse{
			VehicleID:       t.VehicleID,
			HasChaperone:    t.HasChaperone,
			TotalDistanceKm: t.TotalDistanceMeters / 1000,
			TotalCost:       t.TotalCost,
			Riders:          riders,
		})
	}

	return res
}
