package services

import (
	"cmp"
	"errors"
	"escort-route-service/internal/domain"
	"fmt"
	"math"
	"slices"
)

// Aggregation is the reduced routing problem: one node per travel unit, with
// unit 0 always the hub.
type Aggregation struct {
	Units        []domain.TravelUnit
	Distance     domain.Matrix
	Duration     domain.Matrix
	ServiceTimes []float64
}

// AggregateEscorts groups the roster into travel units that satisfy the
// escort constraint, using the Farthest-Requiring-First policy:
//
//   - escort-requiring riders are taken farthest-from-hub first and matched to
//     the nearest still-available escort-eligible person;
//   - each matched group then absorbs the nearest unassigned riders (measured
//     from the anchor rider) within the proximity threshold, up to the cap;
//   - riders left without an escort are batched farthest-first into
//     chaperoned groups;
//   - escort-eligible people never used as escorts travel alone.
//
// The result is deterministic for a given input; ties resolve in input order.
// Greedy choices are final, so the pairing is not globally optimal.
func AggregateEscorts(
	roster []domain.Person,
	distance domain.Matrix,
	duration domain.Matrix,
	policy domain.EscortPolicy,
) (*Aggregation, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("aggregate escorts: %w", err)
	}

	if err := validateRoster(roster, distance, duration); err != nil {
		return nil, fmt.Errorf("aggregate escorts: %w", err)
	}

	units := []domain.TravelUnit{domain.Hub{}}

	if policy.Bypass {
		for _, p := range roster {
			units = append(units, domain.Singleton{Person: p})
		}
		return reduce(units, distance, duration)
	}

	hubDistance := func(p domain.Person) float64 { return distance[0][p.Index] }

	required := make([]domain.Person, 0, len(roster))
	eligible := make([]domain.Person, 0, len(roster))
	for _, p := range roster {
		if p.RequiresEscort() {
			required = append(required, p)
		} else {
			eligible = append(eligible, p)
		}
	}

	// Farthest riders claim escorts first.
	slices.SortStableFunc(required, func(a, b domain.Person) int {
		return cmp.Compare(hubDistance(b), hubDistance(a))
	})

	assigned := make([]bool, len(required))
	escortUsed := make([]bool, len(eligible))

	for fi, anchor := range required {
		if assigned[fi] {
			continue
		}

		ei := nearestAvailable(anchor, eligible, escortUsed, distance)
		if ei < 0 {
			continue
		}
		escortUsed[ei] = true
		assigned[fi] = true

		riders := []domain.Person{anchor}
		for len(riders)+1 < policy.GroupCap {
			ci := nearestAvailable(anchor, required, assigned, distance)
			if ci < 0 || distance[anchor.Index][required[ci].Index] >= policy.ProximityThreshold {
				break
			}
			assigned[ci] = true
			riders = append(riders, required[ci])
		}

		sortNearestFirst(riders, hubDistance)
		escort := eligible[ei]
		members := append(slices.Clone(riders), escort)

		units = append(units, domain.MatchedGroup{
			Riders:   riders,
			Escort:   escort,
			Internal: internalSeconds(members, duration),
		})
	}

	// Leftover riders are already ordered farthest-first; the chaperone takes
	// the last seat of every batch.
	leftover := make([]domain.Person, 0, len(required))
	for i, p := range required {
		if !assigned[i] {
			leftover = append(leftover, p)
		}
	}

	batch := policy.GroupCap - 1
	for start := 0; start < len(leftover); start += batch {
		end := min(start+batch, len(leftover))
		riders := slices.Clone(leftover[start:end])
		sortNearestFirst(riders, hubDistance)

		units = append(units, domain.ChaperonedGroup{
			Riders:   riders,
			Internal: internalSeconds(riders, duration),
		})
	}

	for i, p := range eligible {
		if !escortUsed[i] {
			units = append(units, domain.Singleton{Person: p})
		}
	}

	return reduce(units, distance, duration)
}

func reduce(units []domain.TravelUnit, distance, duration domain.Matrix) (*Aggregation, error) {
	reducedDistance, reducedDuration, serviceTimes, err := ReduceMatrices(units, distance, duration)
	if err != nil {
		return nil, fmt.Errorf("aggregate escorts: %w", err)
	}

	return &Aggregation{
		Units:        units,
		Distance:     reducedDistance,
		Duration:     reducedDuration,
		ServiceTimes: serviceTimes,
	}, nil
}

// nearestAvailable returns the position in candidates of the entry closest to
// anchor that is not marked taken, or -1. The first of equal candidates wins.
func nearestAvailable(anchor domain.Person, candidates []domain.Person, taken []bool, distance domain.Matrix) int {
	best := -1
	bestDistance := math.Inf(1)
	for i, c := range candidates {
		if taken[i] {
			continue
		}
		d := distance[anchor.Index][c.Index]
		if d < bestDistance {
			bestDistance = d
			best = i
		}
	}
	return best
}

func sortNearestFirst(riders []domain.Person, hubDistance func(domain.Person) float64) {
	slices.SortStableFunc(riders, func(a, b domain.Person) int {
		return cmp.Compare(hubDistance(a), hubDistance(b))
	})
}

// internalSeconds sums, along the visitation order, each member's service
// time plus the travel time to the next member.
func internalSeconds(members []domain.Person, duration domain.Matrix) float64 {
	total := 0.0
	for k := 0; k+1 < len(members); k++ {
		from, to := members[k], members[k+1]
		total += from.ServiceSeconds + duration[from.Index][to.Index]
	}
	return total
}

func validateRoster(roster []domain.Person, distance, duration domain.Matrix) error {
	n := distance.Size()
	if n == 0 {
		return errors.New("distance matrix is empty")
	}
	if err := distance.CheckSquare(n); err != nil {
		return fmt.Errorf("distance: %w", err)
	}
	if err := duration.CheckSquare(n); err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	ids := make(map[string]struct{}, len(roster))
	indices := make(map[int]struct{}, len(roster))
	for i, p := range roster {
		if p.ID == "" {
			return &domain.InputError{Field: fmt.Sprintf("roster[%d].id", i), Reason: "is required"}
		}
		if p.Index <= 0 || p.Index >= n {
			return &domain.InputError{
				Field:  fmt.Sprintf("roster[%d].index", i),
				Reason: fmt.Sprintf("%d outside matrix bounds [1,%d)", p.Index, n),
			}
		}
		if p.ServiceSeconds < 0 {
			return &domain.InputError{Field: fmt.Sprintf("roster[%d].service_seconds", i), Reason: "must not be negative"}
		}
		if _, ok := ids[p.ID]; ok {
			return &domain.InputError{Field: fmt.Sprintf("roster[%d].id", i), Reason: fmt.Sprintf("duplicate id %q", p.ID)}
		}
		if _, ok := indices[p.Index]; ok {
			return &domain.InputError{Field: fmt.Sprintf("roster[%d].index", i), Reason: fmt.Sprintf("duplicate index %d", p.Index)}
		}
		ids[p.ID] = struct{}{}
		indices[p.Index] = struct{}{}
	}

	return nil
}
