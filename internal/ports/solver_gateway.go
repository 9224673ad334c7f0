package ports

import (
	"context"
	"escort-route-service/internal/domain"
)

// Contract for the external route-optimization solver.
type SolverGateway interface {
	// Solve submits the request and waits for a terminal result.
	// Transport failures are reported through the result, never as a panic or error.
	Solve(ctx context.Context, req domain.OptimizationRequest) domain.SolveResult
	Healthy(ctx context.Context) bool
}
