package weather

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// memoryStore is an in-memory Store with TTL expiry driven by an
// injectable clock.
type memoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry
	getErr    error
	setErr    error
	deleteErr error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func newMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *memoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return false, s.getErr
	}
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		return false, nil
	}
	return true, json.Unmarshal(entry.value, dest)
}

func (s *memoryStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = memoryEntry{value: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.entries, key)
	return nil
}

// fakeUpstream counts calls and returns a canned snapshot or error.
type fakeUpstream struct {
	mu            sync.Mutex
	currentCalls  int
	forecastCalls int
	lastCount     int
	snapshot      *Snapshot
	err           error
	forecast      json.RawMessage
}

func (u *fakeUpstream) Current(_ context.Context, city string) (*Snapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.currentCalls++
	if u.err != nil {
		return nil, u.err
	}
	return u.snapshot, nil
}

func (u *fakeUpstream) Forecast(_ context.Context, city string, count int) (json.RawMessage, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.forecastCalls++
	u.lastCount = count
	if u.err != nil {
		return nil, u.err
	}
	return u.forecast, nil
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		City:        "London",
		Country:     "GB",
		Temperature: 18.5,
		Description: "light rain",
		Humidity:    72,
	}
}

func TestService_Current_CacheAside(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)
	ctx := context.Background()

	// First lookup misses and hits the upstream.
	snap, fromCache, err := svc.Current(ctx, "London")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if fromCache {
		t.Error("first lookup must not come from cache")
	}
	if snap.City != "London" {
		t.Errorf("expected city London, got %s", snap.City)
	}
	if upstream.currentCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", upstream.currentCalls)
	}

	// Second lookup within the TTL is served from cache.
	snap, fromCache, err = svc.Current(ctx, "London")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if !fromCache {
		t.Error("second lookup must come from cache")
	}
	if snap.Temperature != 18.5 {
		t.Errorf("cached snapshot corrupted: %+v", snap)
	}
	if upstream.currentCalls != 1 {
		t.Errorf("expected still 1 upstream call, got %d", upstream.currentCalls)
	}
}

func TestService_Current_KeyNormalization(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)
	ctx := context.Background()

	if _, _, err := svc.Current(ctx, "London"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	_, fromCache, err := svc.Current(ctx, "  LONDON ")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if !fromCache {
		t.Error("case and whitespace variants must share a cache entry")
	}
	if upstream.currentCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", upstream.currentCalls)
	}
}

func TestService_Current_TTLExpiry(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	current := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)
	ctx := context.Background()

	if _, _, err := svc.Current(ctx, "London"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	// Just before expiry: still cached.
	current = current.Add(29 * time.Minute)
	if _, fromCache, _ := svc.Current(ctx, "London"); !fromCache {
		t.Error("expected a cache hit before the TTL elapsed")
	}

	// Past expiry: refetch.
	current = current.Add(2 * time.Minute)
	_, fromCache, err := svc.Current(ctx, "London")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if fromCache {
		t.Error("expected a miss after the TTL elapsed")
	}
	if upstream.currentCalls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", upstream.currentCalls)
	}
}

func TestService_Current_FailuresNotCached(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	upstream := &fakeUpstream{err: ErrCityNotFound}
	svc := NewService(store, upstream)
	ctx := context.Background()

	if _, _, err := svc.Current(ctx, "Atlantis"); !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
	if len(store.entries) != 0 {
		t.Error("failed lookups must not write to the cache")
	}

	// After the upstream recovers, the next call fetches fresh.
	upstream.err = nil
	upstream.snapshot = testSnapshot()
	_, fromCache, err := svc.Current(ctx, "Atlantis")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if fromCache {
		t.Error("recovery lookup must not come from cache")
	}
}

func TestService_Current_CacheErrorDegradesToMiss(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	store.getErr = errors.New("connection refused")
	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)

	snap, fromCache, err := svc.Current(context.Background(), "London")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if fromCache {
		t.Error("broken cache must degrade to a miss")
	}
	if snap == nil {
		t.Fatal("expected a snapshot despite the cache error")
	}
}

func TestService_Current_SetFailureNonFatal(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	store.setErr = errors.New("connection refused")
	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)

	snap, _, err := svc.Current(context.Background(), "London")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot despite the cache write failure")
	}
}

func TestService_Current_ConcurrentMissesCollapse(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Current(ctx, "London"); err != nil {
				t.Errorf("Current() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if upstream.currentCalls > 2 {
		t.Errorf("expected collapsed upstream calls, got %d", upstream.currentCalls)
	}
}

func TestService_Invalidate(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	upstream := &fakeUpstream{snapshot: testSnapshot()}
	svc := NewService(store, upstream)
	ctx := context.Background()

	if _, _, err := svc.Current(ctx, "London"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if upstream.currentCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", upstream.currentCalls)
	}

	if err := svc.Invalidate(ctx, "  LONDON "); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	// The eviction forces the next lookup back to the upstream.
	_, fromCache, err := svc.Current(ctx, "London")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if fromCache {
		t.Error("expected a miss after invalidation")
	}
	if upstream.currentCalls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", upstream.currentCalls)
	}

	t.Run("store failure surfaces", func(t *testing.T) {
		store.deleteErr = errors.New("connection refused")
		if err := svc.Invalidate(ctx, "London"); err == nil {
			t.Error("expected an error when the store delete fails")
		}
	})
}

func TestService_Forecast(t *testing.T) {
	store := newMemoryStore(30 * time.Minute)
	upstream := &fakeUpstream{forecast: json.RawMessage(`{"list":[]}`)}
	svc := NewService(store, upstream)
	ctx := context.Background()

	tests := []struct {
		name      string
		days      int
		wantCount int
	}{
		{"default days", 0, 40},
		{"explicit days", 3, 24},
		{"max days", 5, 40},
		{"over max clamps to default", 30, 40},
		{"negative clamps to default", -1, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Forecast(ctx, "London", tt.days); err != nil {
				t.Fatalf("Forecast() error = %v", err)
			}
			if upstream.lastCount != tt.wantCount {
				t.Errorf("requested count = %d, want %d", upstream.lastCount, tt.wantCount)
			}
		})
	}

	t.Run("forecasts are never cached", func(t *testing.T) {
		before := upstream.forecastCalls
		if _, err := svc.Forecast(ctx, "London", 3); err != nil {
			t.Fatalf("Forecast() error = %v", err)
		}
		if _, err := svc.Forecast(ctx, "London", 3); err != nil {
			t.Fatalf("Forecast() error = %v", err)
		}
		if upstream.forecastCalls != before+2 {
			t.Errorf("expected every forecast to reach the upstream, got %d extra calls", upstream.forecastCalls-before)
		}
		if len(store.entries) != 0 {
			t.Error("forecast responses must not be written to the cache")
		}
	})
}

func TestNormalizeForecastDays(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{0, 5},
		{-3, 5},
		{1, 1},
		{3, 3},
		{5, 5},
		{6, 5},
		{30, 5},
	}
	for _, tt := range tests {
		if got := NormalizeForecastDays(tt.days); got != tt.want {
			t.Errorf("NormalizeForecastDays(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}
