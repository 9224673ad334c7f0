package services

import (
	"escort-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decoderUnits() []domain.TravelUnit {
	return []domain.TravelUnit{
		domain.Hub{},
		domain.MatchedGroup{Riders: []domain.Person{rider("F1", 1)}, Escort: escort("M1", 2)},
		domain.Singleton{Person: escort("M2", 3)},
	}
}

func TestDecodeSolutionDropoff(t *testing.T) {
	raw, _ := lineMatrices(1000, 1500, 3000)
	sol := &domain.Solution{
		Cost:         42,
		VehicleCount: 2,
		Routes: []domain.VehicleRoute{
			{VehicleID: "Veh_0", Stops: []int{0, 1, 2, 0}},
			{VehicleID: "Veh_1", Stops: []int{0, 0}},
		},
	}

	trips, summary, err := DecodeSolution(sol, decoderUnits(), raw, domain.TripDropoff, 10)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, "Veh_0", trip.VehicleID)
	assert.Equal(t, 6000.0, trip.TotalDistanceMeters)
	assert.InDelta(t, 60.0, trip.TotalCost, 1e-9)
	assert.False(t, trip.HasChaperone)

	require.Len(t, trip.Riders, 3)
	assert.Equal(t, "F1", trip.Riders[0].PersonID)
	assert.Equal(t, "Group_M1", trip.Riders[0].UnitID)
	assert.True(t, trip.Riders[0].RequiresEscort)
	assert.Equal(t, 1000.0, trip.Riders[0].TripMeters)
	assert.Equal(t, 0.0, trip.Riders[0].DetourPercent)
	assert.Equal(t, 3, trip.Riders[2].Sequence)
	assert.Equal(t, 3000.0, trip.Riders[2].TripMeters)

	assert.Equal(t, 1, summary.TotalVehicles)
	assert.Equal(t, 3, summary.TotalRiders)
	assert.Equal(t, 42.0, summary.SolutionCost)
	assert.Empty(t, summary.HighDetourRiders)
}

func TestDecodeSolutionPickup(t *testing.T) {
	raw, _ := lineMatrices(1000, 1500, 3000)
	sol := &domain.Solution{
		Routes: []domain.VehicleRoute{{VehicleID: "Veh_0", Stops: []int{0, 2, 1}}},
	}

	trips, summary, err := DecodeSolution(sol, decoderUnits(), raw, domain.TripPickup, 10)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	riders := trips[0].Riders
	require.Len(t, riders, 3)

	assert.Equal(t, "M2", riders[0].PersonID)
	assert.Equal(t, 4000.0, riders[0].TripMeters)
	assert.InDelta(t, 33.333, riders[0].DetourPercent, 1e-3)

	assert.Equal(t, "F1", riders[1].PersonID)
	assert.Equal(t, 2000.0, riders[1].TripMeters)
	assert.InDelta(t, 100.0, riders[1].DetourPercent, 1e-9)

	assert.Equal(t, 7000.0, trips[0].TotalDistanceMeters)
	assert.Equal(t, []string{"F1"}, summary.HighDetourRiders)
}

func TestDecodeSolutionChaperone(t *testing.T) {
	raw, _ := lineMatrices(1000, 1200)
	units := []domain.TravelUnit{
		domain.Hub{},
		domain.ChaperonedGroup{Riders: []domain.Person{rider("F1", 1), rider("F2", 2)}},
	}
	sol := &domain.Solution{Routes: []domain.VehicleRoute{{VehicleID: "Veh_0", Stops: []int{0, 1, 0}}}}

	trips, summary, err := DecodeSolution(sol, units, raw, domain.TripDropoff, 10)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.True(t, trips[0].HasChaperone)
	assert.Equal(t, 1, summary.ChaperonedVehicles)
}

func TestDecodeSolutionRejectsUnknownStop(t *testing.T) {
	raw, _ := lineMatrices(1000, 1500, 3000)
	sol := &domain.Solution{Routes: []domain.VehicleRoute{{VehicleID: "Veh_0", Stops: []int{0, 7}}}}

	_, _, err := DecodeSolution(sol, decoderUnits(), raw, domain.TripDropoff, 10)
	require.Error(t, err)
}
