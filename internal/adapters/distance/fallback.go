package distance

import (
	"context"
	"escort-route-service/internal/domain"
	"math"
)

const (
	// metersPerDegree approximates one degree of arc on the earth's surface.
	metersPerDegree = 111000.0
	// fallbackSpeed is the assumed travel speed in metres per second.
	fallbackSpeed = 10.0
)

// EuclideanMatrices estimates costs from the planar distance between
// coordinates in degrees. It is only used when the routing service cannot
// answer, so the result is always marked Degraded.
func EuclideanMatrices(points []domain.Coordinates) domain.CostMatrices {
	n := len(points)
	dist := domain.NewMatrix(n)
	dur := domain.NewMatrix(n)

	for i, a := range points {
		for j, b := range points {
			if i == j {
				continue
			}
			dLat := a.Lat - b.Lat
			dLon := a.Lon - b.Lon
			meters := math.Sqrt(dLat*dLat+dLon*dLon) * metersPerDegree
			dist[i][j] = meters
			dur[i][j] = meters / fallbackSpeed
		}
	}

	return domain.CostMatrices{Distance: dist, Duration: dur, Degraded: true}
}

// EuclideanProvider answers every request with the straight-line estimate.
// It stands in for the routing service in local runs without one.
type EuclideanProvider struct{}

func (EuclideanProvider) Matrices(ctx context.Context, points []domain.Coordinates) (domain.CostMatrices, error) {
	if err := ctx.Err(); err != nil {
		return domain.CostMatrices{}, err
	}
	return EuclideanMatrices(points), nil
}
