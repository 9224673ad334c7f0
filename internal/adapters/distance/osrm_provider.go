package distance

import (
	"context"
	"errors"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/platform/httpx"
	"escort-route-service/internal/platform/obs"
	"escort-route-service/internal/ports"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// OSRMProvider implements CostMatrixProvider using the OSRM table service.
//
// It coordinates:
//   - Persistent per-origin caching of matrix rows
//   - Batched, concurrent table requests for uncached rows
//   - External API calls with retry/backoff and rate limiting
//   - Straight-line fallback when the service cannot answer
//
// The provider is safe for concurrent use.
type OSRMProvider struct {
	client  *httpx.Client
	baseURL string
	profile string
	cache   ports.MatrixCache
	// rowsPerRequest bounds the source rows fetched by one table call.
	rowsPerRequest int
	workers        int
}

type OSRMOption func(*OSRMProvider)

func WithProfile(profile string) OSRMOption {
	return func(o *OSRMProvider) { o.profile = profile }
}

func WithRateLimit(l *rate.Limiter) OSRMOption {
	return func(o *OSRMProvider) { o.client.Limiter = l }
}

func WithRowsPerRequest(n int) OSRMOption {
	return func(o *OSRMProvider) {
		if n > 0 {
			o.rowsPerRequest = n
		}
	}
}

// WithRetries sets the attempts and initial backoff of each table request.
func WithRetries(attempts int, backoff time.Duration) OSRMOption {
	return func(o *OSRMProvider) {
		o.client.MaxAttempts = attempts
		o.client.Backoff = backoff
	}
}

// cache may be nil.
func NewOSRMProvider(baseURL string, cache ports.MatrixCache, opts ...OSRMOption) (*OSRMProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("OSRM base url is empty")
	}

	provider := &OSRMProvider{
		client:         httpx.NewClient(30 * time.Second),
		baseURL:        baseURL,
		profile:        "driving",
		cache:          cache,
		rowsPerRequest: 25,
		workers:        4,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// Matrices returns distance and duration matrices for points, hub first.
// Rows missing from the cache are fetched from OSRM; if that fails for any
// reason other than cancellation, the whole result falls back to the
// straight-line estimate and is marked Degraded.
func (o *OSRMProvider) Matrices(
	ctx context.Context,
	points []domain.Coordinates,
) (_ domain.CostMatrices, err error) {
	defer obs.Time(ctx, "osrm.Matrices")(&err)

	for i, p := range points {
		if !p.Valid() {
			return domain.CostMatrices{}, &domain.InputError{
				Field:  fmt.Sprintf("points[%d]", i),
				Reason: "coordinates out of range",
			}
		}
	}

	n := len(points)
	out := domain.CostMatrices{Distance: domain.NewMatrix(n), Duration: domain.NewMatrix(n)}
	if n <= 1 {
		return out, nil
	}

	keys := make([]string, n)
	for i, p := range points {
		keys[i] = p.Key()
	}

	missing := o.fillFromCache(ctx, keys, out)
	if len(missing) == 0 {
		return out, nil
	}

	if err := o.fetchRows(ctx, points, missing, out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.CostMatrices{}, fmt.Errorf("osrm matrices: %w", ctxErr)
		}
		log.Printf("op=osrm.Matrices fallback=euclidean points=%d err=%v", n, err)
		return EuclideanMatrices(points), nil
	}

	for i := 0; i < n; i++ {
		out.Distance[i][i] = 0
		out.Duration[i][i] = 0
	}

	o.storeRows(ctx, keys, missing, out)

	return out, nil
}

// fillFromCache copies every fully cached row into out and returns the
// indices of rows that still need fetching.
func (o *OSRMProvider) fillFromCache(ctx context.Context, keys []string, out domain.CostMatrices) []int {
	all := make([]int, len(keys))
	for i := range keys {
		all[i] = i
	}
	if o.cache == nil {
		return all
	}

	missing := make([]int, 0, len(keys))
	for i, origin := range keys {
		hits, err := o.cache.GetMany(ctx, origin, keys)
		if err != nil {
			log.Printf("matrix cache read failed: origin=%s err=%v", origin, err)
			return all
		}

		complete := true
		for _, dest := range keys {
			if _, ok := hits[dest]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			missing = append(missing, i)
			continue
		}

		for j, dest := range keys {
			out.Distance[i][j] = hits[dest].DistanceMeters
			out.Duration[i][j] = hits[dest].DurationSeconds
		}
	}

	return missing
}

func (o *OSRMProvider) storeRows(ctx context.Context, keys []string, rows []int, m domain.CostMatrices) {
	if o.cache == nil {
		return
	}

	for _, i := range rows {
		results := make(map[string]ports.DistanceResult, len(keys))
		for j, dest := range keys {
			results[dest] = ports.DistanceResult{
				DistanceMeters:  m.Distance[i][j],
				DurationSeconds: m.Duration[i][j],
			}
		}
		if err := o.cache.PutMany(ctx, keys[i], results); err != nil {
			log.Printf("matrix cache write failed: origin=%s err=%v", keys[i], err)
		}
	}
}

// fetchRows requests the given source rows in batches, a few batches at a
// time. Each batch writes only its own rows of m.
func (o *OSRMProvider) fetchRows(
	ctx context.Context,
	points []domain.Coordinates,
	rows []int,
	m domain.CostMatrices,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var batches [][]int
	for start := 0; start < len(rows); start += o.rowsPerRequest {
		batches = append(batches, rows[start:min(start+o.rowsPerRequest, len(rows))])
	}

	sem := make(chan struct{}, o.workers)
	errCh := make(chan error, len(batches))
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		go func(sources []int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			if err := o.fetchTable(ctx, points, sources, m); err != nil {
				errCh <- err
				cancel()
			}
		}(batch)
	}

	wg.Wait()
	close(errCh)

	return <-errCh
}
