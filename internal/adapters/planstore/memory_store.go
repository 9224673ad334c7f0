package planstore

import (
	"context"
	"errors"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/ports"
	"sync"
)

// MemoryStore keeps plans in process. Used when no Redis URL is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]domain.TripPlan
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]domain.TripPlan)}
}

func (s *MemoryStore) Save(_ context.Context, plan *domain.TripPlan) error {
	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = *plan
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, ports.ErrPlanNotFound
	}
	return &plan, nil
}
