package distance

import (
	"context"
	"escort-route-service/internal/domain"
	"fmt"
)

// StaticProvider returns fixed matrices regardless of the coordinates asked
// for. Tests use it to pin exact costs.
type StaticProvider struct {
	distance domain.Matrix
	duration domain.Matrix
	// Calls counts Matrices invocations.
	Calls int
}

func NewStaticProvider(distance, duration domain.Matrix) *StaticProvider {
	return &StaticProvider{distance: distance, duration: duration}
}

func (p *StaticProvider) Matrices(ctx context.Context, points []domain.Coordinates) (domain.CostMatrices, error) {
	p.Calls++

	if err := p.distance.CheckSquare(len(points)); err != nil {
		return domain.CostMatrices{}, fmt.Errorf("static provider: distance: %w", err)
	}
	if err := p.duration.CheckSquare(len(points)); err != nil {
		return domain.CostMatrices{}, fmt.Errorf("static provider: duration: %w", err)
	}

	return domain.CostMatrices{
		Distance: p.distance.Clone(),
		Duration: p.duration.Clone(),
	}, nil
}
