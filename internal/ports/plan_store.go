package ports

import (
	"context"
	"errors"
	"escort-route-service/internal/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

// Storage for decoded trip plans, addressed by plan id.
type PlanStore interface {
	Save(ctx context.Context, plan *domain.TripPlan) error
	Get(ctx context.Context, id string) (*domain.TripPlan, error)
}
