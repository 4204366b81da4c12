package weather

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultForecastDays is used when the caller omits or mangles the days
	// parameter.
	DefaultForecastDays = 5

	// MaxForecastDays caps forecast length; the upstream serves 8 points per
	// day at 3-hour granularity.
	MaxForecastDays = 5

	pointsPerDay = 8
)

// Store is the cache collaborator: a key-value store whose entries expire
// after the TTL it was configured with. Get reports absent-or-value;
// deleting an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Upstream is the weather provider collaborator.
type Upstream interface {
	Current(ctx context.Context, city string) (*Snapshot, error)
	Forecast(ctx context.Context, city string, count int) (json.RawMessage, error)
}

// Service answers weather lookups cache-aside: check the store first,
// consult the upstream only on miss, and write successful results back.
// Failed fetches never touch the store, so an error leaves the cache state
// exactly as it was.
type Service struct {
	store    Store
	upstream Upstream
	group    singleflight.Group
}

// NewService creates a new weather service.
func NewService(store Store, upstream Upstream) *Service {
	return &Service{
		store:    store,
		upstream: upstream,
	}
}

// cacheKey derives the cache key from the city name, case-insensitively.
func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Current returns the current weather for a city. The boolean reports
// whether the snapshot came from the cache. Concurrent misses for the same
// city are collapsed into a single upstream call.
func (s *Service) Current(ctx context.Context, city string) (*Snapshot, bool, error) {
	key := cacheKey(city)

	var cached Snapshot
	found, err := s.store.Get(ctx, key, &cached)
	if err != nil {
		// A broken cache degrades to a miss; the lookup itself can
		// still succeed.
		log.Printf("[weather] Warning: cache lookup failed for %q: %v", key, err)
	}
	if found {
		return &cached, true, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		snap, err := s.upstream.Current(ctx, city)
		if err != nil {
			return nil, err
		}
		if err := s.store.Set(ctx, key, snap); err != nil {
			log.Printf("[weather] Warning: failed to cache weather for %q: %v", key, err)
		}
		return snap, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Snapshot), false, nil
}

// Invalidate evicts the cached snapshot for a city, forcing the next
// lookup to fetch fresh from the upstream.
func (s *Service) Invalidate(ctx context.Context, city string) error {
	return s.store.Delete(ctx, cacheKey(city))
}

// Forecast returns the raw upstream forecast payload for a city. Forecasts
// are never cached.
func (s *Service) Forecast(ctx context.Context, city string, days int) (json.RawMessage, error) {
	days = NormalizeForecastDays(days)
	return s.upstream.Forecast(ctx, city, days*pointsPerDay)
}

// NormalizeForecastDays clamps the forecast length: anything outside [1,5],
// including the zero value for "not provided", becomes the default. Invalid
// input is deliberately coerced rather than rejected.
func NormalizeForecastDays(days int) int {
	if days < 1 || days > MaxForecastDays {
		return DefaultForecastDays
	}
	return days
}
