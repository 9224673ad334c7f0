package services

import (
	"errors"
	"escort-route-service/internal/domain"
	"fmt"
	"math"
)

// DefaultTimeLimit is the solver budget used when the caller sets none:
// ten seconds plus one second per six locations, rounded up.
func DefaultTimeLimit(locations int) int {
	return int(math.Ceil(10 + float64(locations)/6))
}

// BuildRequest turns an aggregation into a solver-ready request.
//
// Each non-hub unit gets the time window [0, maxDetour - internal], floored at
// zero, so a vehicle arriving at a group's first member still leaves enough of
// the detour budget for the rest of the group. The hub is open all day.
//
// Infeasible fleets are rejected before anything is sent to the solver.
func BuildRequest(agg *Aggregation, fleet domain.FleetParams) (domain.OptimizationRequest, error) {
	if agg == nil || len(agg.Units) == 0 {
		return domain.OptimizationRequest{}, errors.New("build request: aggregation is empty")
	}

	if err := validateFleet(agg.Units, fleet); err != nil {
		return domain.OptimizationRequest{}, fmt.Errorf("build request: %w", err)
	}

	n := len(agg.Units)
	if err := agg.Distance.CheckSquare(n); err != nil {
		return domain.OptimizationRequest{}, fmt.Errorf("build request: distance: %w", err)
	}
	if err := agg.Duration.CheckSquare(n); err != nil {
		return domain.OptimizationRequest{}, fmt.Errorf("build request: duration: %w", err)
	}
	if len(agg.ServiceTimes) != n {
		return domain.OptimizationRequest{}, fmt.Errorf(
			"build request: %d service times for %d units", len(agg.ServiceTimes), n,
		)
	}

	tasks := domain.Tasks{
		Locations:    make([]int, n),
		Demand:       make([]int, n),
		TimeWindows:  make([]domain.TimeWindow, n),
		ServiceTimes: make([]int, n),
	}
	for i, u := range agg.Units {
		tasks.Locations[i] = i
		tasks.Demand[i] = u.Demand()
		tasks.TimeWindows[i] = timeWindow(u, fleet.MaxDetourSeconds)
		tasks.ServiceTimes[i] = wholeSeconds(agg.ServiceTimes[i])
	}

	if fleet.IsolateGroups {
		v := 0
		for i, u := range agg.Units {
			if !domain.IsGroup(u) {
				continue
			}
			tasks.VehicleMatch = append(tasks.VehicleMatch, domain.VehicleMatch{
				Task:     i,
				Vehicles: []int{v % fleet.VehicleCount},
			})
			v++
		}
	}

	vehicles := domain.Fleet{
		VehicleIDs:   make([]string, fleet.VehicleCount),
		VehicleTypes: make([]int, fleet.VehicleCount),
		Locations:    make([][2]int, fleet.VehicleCount),
		Capacities:   make([]int, fleet.VehicleCount),
		Availability: make([]domain.TimeWindow, fleet.VehicleCount),
		DropReturn:   make([]bool, fleet.VehicleCount),
	}
	for v := 0; v < fleet.VehicleCount; v++ {
		vehicles.VehicleIDs[v] = fmt.Sprintf("Veh_%d", v)
		vehicles.Capacities[v] = fleet.VehicleCapacity
		vehicles.Availability[v] = domain.TimeWindow{Earliest: 0, Latest: domain.FullDaySeconds}
		vehicles.DropReturn[v] = !fleet.ReturnToHub
	}

	timeLimit := fleet.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit(n)
	}

	return domain.OptimizationRequest{
		Distance:         agg.Distance,
		Duration:         agg.Duration,
		Fleet:            vehicles,
		Tasks:            tasks,
		TimeLimitSeconds: timeLimit,
	}, nil
}

func timeWindow(u domain.TravelUnit, maxDetourSeconds float64) domain.TimeWindow {
	if u.Kind() == domain.KindHub {
		return domain.TimeWindow{Earliest: 0, Latest: domain.FullDaySeconds}
	}
	internal := u.InternalSeconds()
	if math.IsNaN(internal) {
		internal = math.Inf(1)
	}
	return domain.TimeWindow{Earliest: 0, Latest: wholeSeconds(maxDetourSeconds - internal)}
}

// wholeSeconds floors v to an int in [0, FullDaySeconds]. Unreachable
// (infinite) or undefined times become a full day.
func wholeSeconds(v float64) int {
	switch {
	case math.IsNaN(v), v >= domain.FullDaySeconds:
		return domain.FullDaySeconds
	case v <= 0:
		return 0
	}
	return int(math.Floor(v))
}

func validateFleet(units []domain.TravelUnit, fleet domain.FleetParams) error {
	if fleet.VehicleCount < 1 {
		return &domain.InputError{Field: "vehicle_count", Reason: "must be at least 1"}
	}
	if fleet.VehicleCapacity < 1 {
		return &domain.InputError{Field: "vehicle_capacity", Reason: "must be at least 1"}
	}
	if fleet.MaxDetourSeconds <= 0 {
		return &domain.InputError{Field: "max_detour_seconds", Reason: "must be positive"}
	}
	if fleet.TimeLimitSeconds < 0 {
		return &domain.InputError{Field: "time_limit_seconds", Reason: "must not be negative"}
	}

	largest, total := 0, 0
	for _, u := range units {
		total += u.Demand()
		largest = max(largest, u.Demand())
	}

	if largest > fleet.VehicleCapacity {
		return &domain.CapacityError{
			Reason:        "a travel unit needs more seats than one vehicle has",
			Demand:        largest,
			Capacity:      fleet.VehicleCapacity,
			VehicleCount:  fleet.VehicleCount,
			TotalCapacity: fleet.VehicleCount * fleet.VehicleCapacity,
		}
	}

	if total > fleet.VehicleCount*fleet.VehicleCapacity {
		return &domain.CapacityError{
			Reason:        "total demand exceeds fleet capacity",
			Demand:        total,
			Capacity:      fleet.VehicleCapacity,
			VehicleCount:  fleet.VehicleCount,
			TotalCapacity: fleet.VehicleCount * fleet.VehicleCapacity,
		}
	}

	return nil
}
