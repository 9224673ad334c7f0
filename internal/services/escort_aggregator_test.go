package services

import (
	"errors"
	"escort-route-service/internal/domain"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineMatrices places the hub at 0 and every other location on a straight
// line at the given offset (metres). Travel is 10 m/s.
func lineMatrices(offsets ...float64) (domain.Matrix, domain.Matrix) {
	points := append([]float64{0}, offsets...)
	n := len(points)
	dist := domain.NewMatrix(n)
	dur := domain.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := math.Abs(points[i] - points[j])
			dist[i][j] = d
			dur[i][j] = d / 10
		}
	}
	return dist, dur
}

func rider(id string, index int) domain.Person {
	return domain.Person{ID: id, Index: index, Escort: domain.EscortRequired}
}

func escort(id string, index int) domain.Person {
	return domain.Person{ID: id, Index: index, Escort: domain.EscortEligible}
}

func memberIDs(u domain.TravelUnit) []string {
	var ids []string
	for _, m := range u.Members() {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestAggregateSingleMatch(t *testing.T) {
	dist, dur := lineMatrices(1000, 1500)
	roster := []domain.Person{rider("F1", 1), escort("M1", 2)}

	agg, err := AggregateEscorts(roster, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 2)

	assert.Equal(t, domain.KindHub, agg.Units[0].Kind())

	group := agg.Units[1]
	assert.Equal(t, domain.KindMatchedGroup, group.Kind())
	assert.Equal(t, "Group_M1", group.ID())
	assert.Equal(t, []string{"F1", "M1"}, memberIDs(group))
	assert.Equal(t, 2, group.Demand())
	assert.InDelta(t, 50.0, group.InternalSeconds(), 1e-9)

	// Entering at F1, leaving from M1.
	assert.Equal(t, 1000.0, agg.Distance[0][1])
	assert.Equal(t, 1500.0, agg.Distance[1][0])
	assert.Equal(t, 0.0, agg.Distance[1][1])
}

func TestAggregateRidersWithoutEscortsAreChaperoned(t *testing.T) {
	dist, dur := lineMatrices(2000, 1000)
	roster := []domain.Person{rider("F1", 1), rider("F2", 2)}

	agg, err := AggregateEscorts(roster, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 2)

	u := agg.Units[1]
	assert.Equal(t, domain.KindChaperonedGroup, u.Kind())
	assert.Equal(t, 3, u.Demand())
	// Nearest to the hub is visited first.
	assert.Equal(t, []string{"F2", "F1"}, memberIDs(u))
	assert.Equal(t, "GuardedGroup_F2", u.ID())
}

func TestAggregateRespectsGroupCap(t *testing.T) {
	dist, dur := lineMatrices(1000, 1100, 1200, 1300, 1400, 1050)
	roster := []domain.Person{
		rider("F1", 1), rider("F2", 2), rider("F3", 3), rider("F4", 4), rider("F5", 5),
		escort("M1", 6),
	}

	agg, err := AggregateEscorts(roster, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 3)

	matched := agg.Units[1]
	assert.Equal(t, domain.KindMatchedGroup, matched.Kind())
	assert.Equal(t, []string{"F3", "F4", "F5", "M1"}, memberIDs(matched))
	assert.Equal(t, 4, matched.Demand())

	chaperoned := agg.Units[2]
	assert.Equal(t, domain.KindChaperonedGroup, chaperoned.Kind())
	assert.Equal(t, []string{"F1", "F2"}, memberIDs(chaperoned))
	assert.Equal(t, 3, chaperoned.Demand())
}

func TestAggregateProximityThresholdSplitsGroups(t *testing.T) {
	dist, dur := lineMatrices(1000, 9000, 1100, 9100)
	roster := []domain.Person{
		rider("F1", 1), rider("F2", 2),
		escort("M1", 3), escort("M2", 4),
	}

	agg, err := AggregateEscorts(roster, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 3)

	// F2 is farther from the hub and claims its escort first.
	assert.Equal(t, []string{"F2", "M2"}, memberIDs(agg.Units[1]))
	assert.Equal(t, []string{"F1", "M1"}, memberIDs(agg.Units[2]))
}

func TestAggregateGrowthMeasuredFromAnchor(t *testing.T) {
	// B is 1500m from A but 3500m from the anchor F, so it stays out.
	dist, dur := lineMatrices(5000, 3000, 1500, 5100)
	roster := []domain.Person{rider("F", 1), rider("A", 2), rider("B", 3), escort("M", 4)}

	agg, err := AggregateEscorts(roster, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 3)

	assert.Equal(t, "Group_M", agg.Units[1].ID())
	assert.Equal(t, []string{"A", "F", "M"}, memberIDs(agg.Units[1]))
	assert.Equal(t, "GuardedGroup_B", agg.Units[2].ID())
	assert.Equal(t, []string{"B"}, memberIDs(agg.Units[2]))
}

func TestAggregateTiesResolveInRosterOrder(t *testing.T) {
	cases := []struct {
		name      string
		offsets   []float64
		roster    []domain.Person
		policy    domain.EscortPolicy
		wantUnits []string
	}{
		{
			name:      "equidistant escorts",
			offsets:   []float64{5000, 4000, 6000},
			roster:    []domain.Person{rider("F1", 1), escort("M1", 2), escort("M2", 3)},
			policy:    domain.DefaultEscortPolicy(),
			wantUnits: []string{"HUB", "Group_M1", "Single_M2"},
		},
		{
			name:      "equidistant escorts reversed",
			offsets:   []float64{5000, 4000, 6000},
			roster:    []domain.Person{rider("F1", 1), escort("M2", 3), escort("M1", 2)},
			policy:    domain.DefaultEscortPolicy(),
			wantUnits: []string{"HUB", "Group_M2", "Single_M1"},
		},
		{
			name:      "equidistant growth candidates",
			offsets:   []float64{5000, 4000, 4000, 5100},
			roster:    []domain.Person{rider("F1", 1), rider("F2", 2), rider("F3", 3), escort("M1", 4)},
			policy:    domain.EscortPolicy{ProximityThreshold: 3000, GroupCap: 3},
			wantUnits: []string{"HUB", "Group_M1", "GuardedGroup_F3"},
		},
		{
			name:      "equidistant growth candidates reversed",
			offsets:   []float64{5000, 4000, 4000, 5100},
			roster:    []domain.Person{rider("F1", 1), rider("F3", 3), rider("F2", 2), escort("M1", 4)},
			policy:    domain.EscortPolicy{ProximityThreshold: 3000, GroupCap: 3},
			wantUnits: []string{"HUB", "Group_M1", "GuardedGroup_F2"},
		},
		{
			name:      "equal hub distance",
			offsets:   []float64{-1000, 1000, 1010},
			roster:    []domain.Person{rider("FA", 1), rider("FB", 2), escort("M1", 3)},
			policy:    domain.EscortPolicy{ProximityThreshold: 1500, GroupCap: 4},
			wantUnits: []string{"HUB", "Group_M1", "GuardedGroup_FB"},
		},
		{
			name:      "equal hub distance reversed",
			offsets:   []float64{-1000, 1000, 1010},
			roster:    []domain.Person{rider("FB", 2), rider("FA", 1), escort("M1", 3)},
			policy:    domain.EscortPolicy{ProximityThreshold: 1500, GroupCap: 4},
			wantUnits: []string{"HUB", "Group_M1", "GuardedGroup_FA"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dist, dur := lineMatrices(tc.offsets...)

			agg, err := AggregateEscorts(tc.roster, dist, dur, tc.policy)
			require.NoError(t, err)

			var ids []string
			for _, u := range agg.Units {
				ids = append(ids, u.ID())
			}
			assert.Equal(t, tc.wantUnits, ids)
		})
	}
}

func TestAggregateUnusedEscortsTravelAlone(t *testing.T) {
	dist, dur := lineMatrices(1000, 1200, 5000)
	roster := []domain.Person{rider("F1", 1), escort("M1", 2), escort("M2", 3)}

	agg, err := AggregateEscorts(roster, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 3)

	assert.Equal(t, []string{"F1", "M1"}, memberIDs(agg.Units[1]))
	assert.Equal(t, domain.KindSingleton, agg.Units[2].Kind())
	assert.Equal(t, "Single_M2", agg.Units[2].ID())
	assert.Equal(t, 0.0, agg.ServiceTimes[0])
}

func TestAggregateBypass(t *testing.T) {
	dist, dur := lineMatrices(1000, 1200)
	roster := []domain.Person{rider("F1", 1), escort("M1", 2)}

	policy := domain.DefaultEscortPolicy()
	policy.Bypass = true

	agg, err := AggregateEscorts(roster, dist, dur, policy)
	require.NoError(t, err)
	require.Len(t, agg.Units, 3)
	for _, u := range agg.Units[1:] {
		assert.Equal(t, domain.KindSingleton, u.Kind())
	}
}

func TestAggregateEmptyRosterIsHubOnly(t *testing.T) {
	dist, dur := lineMatrices()

	agg, err := AggregateEscorts(nil, dist, dur, domain.DefaultEscortPolicy())
	require.NoError(t, err)
	require.Len(t, agg.Units, 1)
	assert.Equal(t, domain.Matrix{{0}}, agg.Distance)
}

func TestAggregateRejectsBadInput(t *testing.T) {
	dist, dur := lineMatrices(1000, 2000)

	tests := []struct {
		name   string
		roster []domain.Person
		field  string
	}{
		{"index out of bounds", []domain.Person{rider("F1", 3)}, "roster[0].index"},
		{"hub index", []domain.Person{rider("F1", 0)}, "roster[0].index"},
		{"missing id", []domain.Person{rider("", 1)}, "roster[0].id"},
		{"duplicate id", []domain.Person{rider("F1", 1), escort("F1", 2)}, "roster[1].id"},
		{"duplicate index", []domain.Person{rider("F1", 1), escort("M1", 1)}, "roster[1].index"},
		{"negative service", []domain.Person{{ID: "F1", Index: 1, ServiceSeconds: -1}}, "roster[0].service_seconds"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AggregateEscorts(tc.roster, dist, dur, domain.DefaultEscortPolicy())
			var inputErr *domain.InputError
			require.True(t, errors.As(err, &inputErr), "err = %v, want InputError", err)
			assert.Equal(t, tc.field, inputErr.Field)
		})
	}
}

func TestAggregateRejectsBadPolicy(t *testing.T) {
	dist, dur := lineMatrices(1000)
	policy := domain.EscortPolicy{ProximityThreshold: 3000, GroupCap: 1}

	_, err := AggregateEscorts([]domain.Person{rider("F1", 1)}, dist, dur, policy)
	var inputErr *domain.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "group_cap", inputErr.Field)
}

func TestAggregateRejectsMismatchedMatrices(t *testing.T) {
	dist, _ := lineMatrices(1000, 2000)
	_, dur := lineMatrices(1000)

	_, err := AggregateEscorts([]domain.Person{rider("F1", 1)}, dist, dur, domain.DefaultEscortPolicy())
	require.Error(t, err)
}

func TestAggregateProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(25)
		offsets := make([]float64, n)
		roster := make([]domain.Person, n)
		for i := range roster {
			offsets[i] = float64(rng.IntN(20000))
			id := fmt.Sprintf("P%d", i+1)
			if rng.IntN(3) == 0 {
				roster[i] = escort(id, i+1)
			} else {
				roster[i] = rider(id, i+1)
			}
			roster[i].ServiceSeconds = float64(rng.IntN(120))
		}
		dist, dur := lineMatrices(offsets...)

		policy := domain.DefaultEscortPolicy()
		policy.GroupCap = 2 + rng.IntN(4)

		agg, err := AggregateEscorts(roster, dist, dur, policy)
		require.NoError(t, err)

		again, err := AggregateEscorts(roster, dist, dur, policy)
		require.NoError(t, err)
		require.Equal(t, agg, again, "trial %d: aggregation is not deterministic", trial)

		require.Equal(t, domain.KindHub, agg.Units[0].Kind())
		require.Equal(t, len(agg.Units), agg.Distance.Size())
		require.Equal(t, len(agg.Units), len(agg.ServiceTimes))

		seen := map[string]int{}
		demand, chaperones := 0, 0
		for _, u := range agg.Units[1:] {
			require.LessOrEqual(t, u.Demand(), policy.GroupCap, "trial %d unit %s", trial, u.ID())

			members := u.Members()
			for _, m := range members {
				seen[m.ID]++
			}
			demand += u.Demand()

			switch g := u.(type) {
			case domain.ChaperonedGroup:
				chaperones++
				require.Equal(t, len(g.Riders)+1, g.Demand())
			case domain.MatchedGroup:
				require.False(t, g.Escort.RequiresEscort())
				for _, r := range g.Riders {
					require.True(t, r.RequiresEscort())
				}
			case domain.Singleton:
				require.False(t, g.Person.RequiresEscort(), "trial %d: %s travels alone", trial, g.Person.ID)
			}
		}

		require.Len(t, seen, n, "trial %d: not every person placed", trial)
		for id, count := range seen {
			require.Equal(t, 1, count, "trial %d: %s placed %d times", trial, id, count)
		}
		require.Equal(t, n+chaperones, demand, "trial %d", trial)
	}
}
