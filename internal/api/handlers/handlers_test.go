package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"escort-route-service/internal/adapters/planstore"
	"escort-route-service/internal/api/dto"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/services"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanner struct {
	plan *domain.TripPlan
	err  error
	got  []services.PlanTripsRequest
}

func (p *fakePlanner) PlanTrips(_ context.Context, req services.PlanTripsRequest) (*domain.TripPlan, error) {
	p.got = append(p.got, req)
	return p.plan, p.err
}

type fakeRoster struct {
	people []domain.Person
	err    error
}

func (r fakeRoster) ListRoster(context.Context) ([]domain.Person, error) { return r.people, r.err }

type fakeSolver struct{ healthy bool }

func (s fakeSolver) Solve(context.Context, domain.OptimizationRequest) domain.SolveResult {
	return domain.SolveResult{}
}

func (s fakeSolver) Healthy(context.Context) bool { return s.healthy }

func testDefaults() PlanDefaults {
	return PlanDefaults{
		Hub: domain.Coordinates{Lat: 12.97, Lon: 77.59},
		Fleet: domain.FleetParams{
			VehicleCount:     10,
			VehicleCapacity:  4,
			MaxDetourSeconds: 3600,
		},
		Policy:            domain.DefaultEscortPolicy(),
		FarePerKm:         10,
		NormalizeMatrices: true,
		ServiceSeconds:    120,
	}
}

func samplePlan() *domain.TripPlan {
	return &domain.TripPlan{
		ID:       "plan-1",
		TripType: domain.TripDropoff,
		Trips: []domain.VehicleTrip{{
			VehicleID:           "Veh_0",
			TotalDistanceMeters: 3000,
			TotalCost:           30,
			HasChaperone:        false,
			Riders: []domain.RiderStop{
				{PersonID: "F1", UnitID: "Group_M1", Sequence: 1, RequiresEscort: true, DirectMeters: 1000, TripMeters: 1000},
				{PersonID: "M1", UnitID: "Group_M1", Sequence: 2, DirectMeters: 1500, TripMeters: 1500},
			},
		}},
		Summary: domain.TripSummary{TotalVehicles: 1, TotalRiders: 2, TotalCost: 30, SolutionCost: 3000},
	}
}

func postPlan(t *testing.T, h *PlanHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/plans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.Create(rr, req)
	return rr
}

func TestCreatePlan(t *testing.T) {
	planner := &fakePlanner{plan: samplePlan()}
	h := &PlanHandler{Planner: planner, Defaults: testDefaults()}

	rr := postPlan(t, h, `{
		"trip_type": "dropoff",
		"roster": [
			{"id": "F1", "gender": "Female", "lat": 12.98, "lon": 77.59},
			{"id": "M1", "gender": "M", "lat": 12.985, "lon": 77.59, "service_seconds": 60}
		],
		"vehicle_count": 3,
		"max_radius_km": 25
	}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res dto.PlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "plan-1", res.PlanID)
	require.Len(t, res.Trips, 1)
	assert.Equal(t, 3.0, res.Trips[0].TotalDistanceKm)
	assert.Equal(t, 1.5, res.Trips[0].Riders[1].TripKm)
	assert.Equal(t, []string{}, res.Warnings)

	require.Len(t, planner.got, 1)
	got := planner.got[0]
	assert.Equal(t, domain.TripDropoff, got.TripType)
	assert.Equal(t, testDefaults().Hub, got.Hub)
	assert.Equal(t, 3, got.Fleet.VehicleCount)
	assert.Equal(t, 4, got.Fleet.VehicleCapacity)
	assert.Equal(t, 25000.0, got.MaxRadiusMeters)
	assert.True(t, got.NormalizeMatrices)
	require.Len(t, got.Roster, 2)
	assert.Equal(t, domain.EscortRequired, got.Roster[0].Escort)
	assert.Equal(t, domain.EscortEligible, got.Roster[1].Escort)
	assert.Equal(t, 120.0, got.Roster[0].ServiceSeconds, "omitted service_seconds takes the default")
	assert.Equal(t, 60.0, got.Roster[1].ServiceSeconds)
}

func TestCreatePlanServiceSeconds(t *testing.T) {
	planner := &fakePlanner{plan: samplePlan()}
	h := &PlanHandler{Planner: planner, Defaults: testDefaults()}

	rr := postPlan(t, h, `{"roster": [
		{"id": "A", "gender": "F", "lat": 1, "lon": 1, "service_seconds": 0},
		{"id": "B", "gender": "M", "lat": 1, "lon": 1}
	]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, planner.got, 1)
	assert.Equal(t, 0.0, planner.got[0].Roster[0].ServiceSeconds, "explicit zero is kept")
	assert.Equal(t, 120.0, planner.got[0].Roster[1].ServiceSeconds)

	rr = postPlan(t, h, `{"roster": [{"id": "A", "gender": "F", "lat": 1, "lon": 1, "service_seconds": -5}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "roster[0].service_seconds")
}

func TestCreatePlanDefaults(t *testing.T) {
	planner := &fakePlanner{plan: samplePlan()}
	h := &PlanHandler{Planner: planner, Defaults: testDefaults()}

	rr := postPlan(t, h, `{"escort_required": false, "hub": {"lat": 13, "lon": 77.5}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := planner.got[0]
	assert.Nil(t, got.Roster, "omitted roster means the stored one")
	assert.Equal(t, domain.TripDropoff, got.TripType)
	assert.Equal(t, domain.Coordinates{Lat: 13, Lon: 77.5}, got.Hub)
	assert.True(t, got.Policy.Bypass)
	assert.Equal(t, 10.0, got.FarePerKm)
}

func TestCreatePlanRejectsBadBodies(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"unknown field":  `{"trucks": 3}`,
		"two objects":    `{} {}`,
		"bad gender":     `{"roster": [{"id": "X", "gender": "robot", "lat": 1, "lon": 1}]}`,
		"missing id":     `{"roster": [{"gender": "M", "lat": 1, "lon": 1}]}`,
		"negative fare":  `{"fare_per_km": -1}`,
		"group cap of 1": `{"group_cap": 1}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			planner := &fakePlanner{plan: samplePlan()}
			h := &PlanHandler{Planner: planner, Defaults: testDefaults()}

			rr := postPlan(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Empty(t, planner.got)
		})
	}
}

func TestCreatePlanGenderErrorNamesRow(t *testing.T) {
	h := &PlanHandler{Planner: &fakePlanner{}, Defaults: testDefaults()}

	rr := postPlan(t, h, `{"roster": [
		{"id": "A", "gender": "F", "lat": 1, "lon": 1},
		{"id": "B", "gender": "", "lat": 1, "lon": 1}
	]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "roster[1].gender")
}

func TestCreatePlanErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"input", &domain.InputError{Field: "trip_type", Reason: "unknown"}, http.StatusBadRequest},
		{"capacity", &domain.CapacityError{Reason: "total demand exceeds fleet capacity"}, http.StatusUnprocessableEntity},
		{"solver", &domain.SolveError{Status: domain.SolveUnavailable}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &PlanHandler{
				Planner:  &fakePlanner{err: fmt.Errorf("plan trips: %w", tc.err)},
				Defaults: testDefaults(),
			}
			rr := postPlan(t, h, `{}`)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestCreatePlanMethodNotAllowed(t *testing.T) {
	h := &PlanHandler{Planner: &fakePlanner{}, Defaults: testDefaults()}

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodGet, "/plans", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestGetPlan(t *testing.T) {
	store := planstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), samplePlan()))
	h := &PlanHandler{Plans: store}

	get := func(id string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/plans/"+id, nil)
		req.SetPathValue("id", id)
		h.Get(rr, req)
		return rr
	}

	rr := get("plan-1")
	require.Equal(t, http.StatusOK, rr.Code)
	var res dto.PlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "plan-1", res.PlanID)
	assert.Equal(t, "dropoff", res.TripType)

	assert.Equal(t, http.StatusNotFound, get("nope").Code)
}

func TestListRoster(t *testing.T) {
	h := &RosterHandler{Repo: fakeRoster{people: []domain.Person{
		{ID: "RR1", Escort: domain.EscortRequired, Location: domain.Coordinates{Lat: 12.9, Lon: 77.6}},
	}}}

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/roster", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var res dto.ListRosterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Roster, 1)
	assert.Equal(t, "escort_required", res.Roster[0].EscortClass)

	h = &RosterHandler{Repo: fakeRoster{err: errors.New("db down")}}
	rr = httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/roster", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealthAndReady(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	(&ReadyHandler{Solver: fakeSolver{healthy: true}}).Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	(&ReadyHandler{Solver: fakeSolver{}}).Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
