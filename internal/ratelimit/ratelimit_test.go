package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiterAllow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.now))
	limiter := New(store)
	rule := Rule{Name: "submit", Limit: 5, Window: time.Minute}

	for i := 1; i <= 5; i++ {
		res := limiter.Allow(context.Background(), rule, "1.2.3.4")
		if !res.Allowed {
			t.Fatalf("hit %d: Allowed = false, want true", i)
		}
		if res.Remaining != 5-i {
			t.Errorf("hit %d: Remaining = %d, want %d", i, res.Remaining, 5-i)
		}
	}

	res := limiter.Allow(context.Background(), rule, "1.2.3.4")
	if res.Allowed {
		t.Fatal("hit 6: Allowed = true, want false")
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}
	if got := res.RetryAfter(clock.now()); got != 60*time.Second {
		t.Errorf("RetryAfter() = %v, want 60s", got)
	}

	// Another key has its own window.
	if !limiter.Allow(context.Background(), rule, "5.6.7.8").Allowed {
		t.Error("other key: Allowed = false, want true")
	}

	clock.advance(time.Minute)
	if !limiter.Allow(context.Background(), rule, "1.2.3.4").Allowed {
		t.Error("after window: Allowed = false, want true")
	}
}

func TestLimiterRulesAreIndependent(t *testing.T) {
	limiter := New(NewMemoryStore())
	profile := Rule{Name: "profile", Limit: 1, Window: time.Minute}
	submit := Rule{Name: "submit", Limit: 1, Window: time.Minute}

	limiter.Allow(context.Background(), profile, "user")
	if !limiter.Allow(context.Background(), submit, "user").Allowed {
		t.Error("submit blocked by profile budget")
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("connection refused")
}

func TestLimiterFailsOpen(t *testing.T) {
	res := New(failingStore{}).Allow(context.Background(), Rule{Name: "x", Limit: 1, Window: time.Minute}, "k")
	if !res.Allowed {
		t.Error("Allowed = false on store error, want true")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.now))
	ctx := context.Background()

	store.Hit(ctx, "short", time.Second)
	store.Hit(ctx, "long", time.Hour)
	clock.advance(2 * time.Second)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemoryStoreCapacity(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithCapacity(3), WithClock(clock.now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		store.Hit(ctx, fmt.Sprintf("k%d", i), time.Duration(i+1)*time.Minute)
	}

	// Full with nothing expired: the window closest to reset is evicted.
	store.Hit(ctx, "k3", time.Hour)
	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}
	if count, _, _ := store.Hit(ctx, "k0", time.Minute); count != 1 {
		t.Errorf("k0 count = %d, want 1 after eviction", count)
	}

	// Expired entries are swept before anything live is evicted.
	clock.advance(10 * time.Minute)
	store.Hit(ctx, "k4", time.Hour)
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (k3, k4)", store.Len())
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer rdb.Close()

	key := fmt.Sprintf("test:%d", time.Now().UnixNano())
	store := NewRedisStore(rdb, "kdle:rl:")
	defer rdb.Del(ctx, "kdle:rl:"+key)

	for i := 1; i <= 3; i++ {
		count, resetAt, err := store.Hit(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("Hit() error = %v", err)
		}
		if count != i {
			t.Errorf("Hit() count = %d, want %d", count, i)
		}
		if time.Until(resetAt) > time.Minute {
			t.Errorf("resetAt %v is beyond the window", resetAt)
		}
	}
}
