package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/platform/obs"
	"escort-route-service/internal/ports"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "plan:"

// RedisStore keeps decoded plans as JSON values that expire after TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects using a redis:// URL. A non-positive ttl keeps
// plans until evicted.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis plan store: parse url: %w", err)
	}
	return &RedisStore{rdb: redis.NewClient(opt), ttl: max(ttl, 0)}, nil
}

func (s *RedisStore) Save(ctx context.Context, plan *domain.TripPlan) (err error) {
	defer obs.Time(ctx, "planstore.Save")(&err)

	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan id is required")
	}

	b, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("save plan: encode: %w", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+plan.ID, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save plan id=%s: %w", plan.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (_ *domain.TripPlan, err error) {
	defer obs.Time(ctx, "planstore.Get")(&err)

	b, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan id=%s: %w", id, err)
	}

	var plan domain.TripPlan
	if err := json.Unmarshal(b, &plan); err != nil {
		return nil, fmt.Errorf("get plan id=%s: decode: %w", id, err)
	}
	return &plan, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
