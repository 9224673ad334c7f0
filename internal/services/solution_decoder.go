package services

import (
	"errors"
	"escort-route-service/internal/domain"
	"fmt"
)

// HighDetourPercent flags riders whose trip is more than half again as long
// as travelling alone.
const HighDetourPercent = 50.0

// DecodeSolution expands the solver's unit-level routes back into rider trips.
//
// raw is the person-level distance matrix the aggregation was built from. For
// a dropoff, a rider's trip runs from the hub along the route to their stop;
// for a pickup it runs from their stop along the rest of the route to the hub.
// Vehicles whose route visits no unit other than the hub are omitted.
func DecodeSolution(
	sol *domain.Solution,
	units []domain.TravelUnit,
	raw domain.Matrix,
	tripType domain.TripType,
	farePerKm float64,
) ([]domain.VehicleTrip, domain.TripSummary, error) {
	if sol == nil {
		return nil, domain.TripSummary{}, errors.New("decode solution: no solution")
	}
	if !tripType.Valid() {
		return nil, domain.TripSummary{}, &domain.InputError{Field: "trip_type", Reason: fmt.Sprintf("unknown value %q", tripType)}
	}

	summary := domain.TripSummary{SolutionCost: sol.Cost}
	trips := make([]domain.VehicleTrip, 0, len(sol.Routes))

	for _, route := range sol.Routes {
		trip, err := decodeRoute(route, units, raw, tripType, farePerKm)
		if err != nil {
			return nil, domain.TripSummary{}, fmt.Errorf("decode solution: vehicle %s: %w", route.VehicleID, err)
		}
		if len(trip.Riders) == 0 {
			continue
		}

		trips = append(trips, trip)
		summary.TotalVehicles++
		summary.TotalRiders += len(trip.Riders)
		summary.TotalCost += trip.TotalCost
		if trip.HasChaperone {
			summary.ChaperonedVehicles++
		}
		for _, r := range trip.Riders {
			if r.DetourPercent > HighDetourPercent {
				summary.HighDetourRiders = append(summary.HighDetourRiders, r.PersonID)
			}
		}
	}

	return trips, summary, nil
}

type visit struct {
	person domain.Person
	unit   domain.TravelUnit
	// position in the expanded path
	at int
}

func decodeRoute(
	route domain.VehicleRoute,
	units []domain.TravelUnit,
	raw domain.Matrix,
	tripType domain.TripType,
	farePerKm float64,
) (domain.VehicleTrip, error) {
	trip := domain.VehicleTrip{VehicleID: route.VehicleID}

	path := []int{0}
	var visits []visit
	for _, stop := range route.Stops {
		if stop < 0 || stop >= len(units) {
			return trip, fmt.Errorf("stop %d outside %d units", stop, len(units))
		}
		u := units[stop]
		if u.Kind() == domain.KindHub {
			if path[len(path)-1] != 0 {
				path = append(path, 0)
			}
			continue
		}
		if u.Kind() == domain.KindChaperonedGroup {
			trip.HasChaperone = true
		}
		for _, m := range u.Members() {
			if m.Index < 0 || m.Index >= raw.Size() {
				return trip, fmt.Errorf("person %s index %d outside matrix", m.ID, m.Index)
			}
			path = append(path, m.Index)
			visits = append(visits, visit{person: m, unit: u, at: len(path) - 1})
		}
	}

	if len(visits) == 0 {
		return trip, nil
	}

	// Pickups always end at the hub.
	if tripType == domain.TripPickup && path[len(path)-1] != 0 {
		path = append(path, 0)
	}

	cumulative := make([]float64, len(path))
	for k := 1; k < len(path); k++ {
		cumulative[k] = cumulative[k-1] + raw[path[k-1]][path[k]]
	}
	total := cumulative[len(cumulative)-1]

	for seq, v := range visits {
		var direct, travelled float64
		if tripType == domain.TripPickup {
			direct = raw[v.person.Index][0]
			travelled = total - cumulative[v.at]
		} else {
			direct = raw[0][v.person.Index]
			travelled = cumulative[v.at]
		}

		detour := 0.0
		if direct > 0 {
			detour = (travelled - direct) / direct * 100
		}

		trip.Riders = append(trip.Riders, domain.RiderStop{
			PersonID:       v.person.ID,
			UnitID:         v.unit.ID(),
			Sequence:       seq + 1,
			RequiresEscort: v.person.RequiresEscort(),
			DirectMeters:   direct,
			TripMeters:     travelled,
			DetourPercent:  detour,
		})
	}

	trip.TotalDistanceMeters = total
	trip.TotalCost = total / 1000 * farePerKm
	return trip, nil
}
