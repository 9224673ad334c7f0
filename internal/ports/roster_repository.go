package ports

import (
	"context"
	"escort-route-service/internal/domain"
)

// Port: a boundary for retrieving the stored roster.
type RosterRepository interface {
	// Retrieve all roster members. Matrix indices are assigned by the planner.
	ListRoster(ctx context.Context) ([]domain.Person, error)
}
