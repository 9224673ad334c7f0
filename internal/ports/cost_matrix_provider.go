package ports

import (
	"context"
	"escort-route-service/internal/domain"
)

// Contract for retrieving pairwise travel costs between locations.
type CostMatrixProvider interface {
	// Return distance and duration matrices indexed like points (hub first).
	// Service failures degrade to an estimate instead of returning an error.
	Matrices(ctx context.Context, points []domain.Coordinates) (domain.CostMatrices, error)
}
