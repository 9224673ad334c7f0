package services

import (
	"escort-route-service/internal/domain"
	"fmt"
)

// ReduceMatrices derives unit-to-unit matrices from the raw matrices.
//
// Travel from unit i to unit j leaves from i's last member and arrives at j's
// first member, so entry (i, j) is raw[exit(i)][entry(j)]. The diagonal is zero.
// Service time per unit covers everything spent inside it: zero for the hub,
// the person's own service for a singleton, and internal time plus the last
// member's service for a group.
func ReduceMatrices(
	units []domain.TravelUnit,
	distance domain.Matrix,
	duration domain.Matrix,
) (domain.Matrix, domain.Matrix, []float64, error) {
	n := distance.Size()
	for i, u := range units {
		if u.EntryIndex() < 0 || u.EntryIndex() >= n || u.ExitIndex() < 0 || u.ExitIndex() >= n {
			return nil, nil, nil, fmt.Errorf(
				"reduce matrices: unit %d (%s) indices [%d,%d] outside matrix of size %d",
				i, u.ID(), u.EntryIndex(), u.ExitIndex(), n,
			)
		}
	}

	size := len(units)
	reducedDistance := domain.NewMatrix(size)
	reducedDuration := domain.NewMatrix(size)

	for i, from := range units {
		for j, to := range units {
			if i == j {
				continue
			}
			reducedDistance[i][j] = distance[from.ExitIndex()][to.EntryIndex()]
			reducedDuration[i][j] = duration[from.ExitIndex()][to.EntryIndex()]
		}
	}

	serviceTimes := make([]float64, size)
	for i, u := range units {
		serviceTimes[i] = unitServiceSeconds(u)
	}

	return reducedDistance, reducedDuration, serviceTimes, nil
}

func unitServiceSeconds(u domain.TravelUnit) float64 {
	switch v := u.(type) {
	case domain.Hub:
		return 0
	case domain.Singleton:
		return v.Person.ServiceSeconds
	default:
		members := u.Members()
		if len(members) == 0 {
			return 0
		}
		return u.InternalSeconds() + members[len(members)-1].ServiceSeconds
	}
}
