package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds the number of tracked keys in a MemoryStore.
const DefaultCapacity = 10000

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a fixed-capacity in-process Store. Expired windows are
// removed by Sweep, which also runs when an insert finds the store full.
type MemoryStore struct {
	mu       sync.Mutex
	windows  map[string]*window
	capacity int
	now      func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCapacity sets the maximum number of tracked keys.
func WithCapacity(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		windows:  make(map[string]*window),
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, d time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if ok && now.Before(w.resetAt) {
		w.count++
		return w.count, w.resetAt, nil
	}

	if !ok && len(s.windows) >= s.capacity {
		s.sweepLocked(now)
		if len(s.windows) >= s.capacity {
			s.evictOldestLocked()
		}
	}

	w = &window{count: 1, resetAt: now.Add(d)}
	s.windows[key] = w
	return w.count, w.resetAt, nil
}

// Sweep removes expired windows and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
			removed++
		}
	}
	return removed
}

// evictOldestLocked drops the window closest to resetting.
func (s *MemoryStore) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, w := range s.windows {
		if oldestKey == "" || w.resetAt.Before(oldest) {
			oldestKey, oldest = k, w.resetAt
		}
	}
	delete(s.windows, oldestKey)
}
