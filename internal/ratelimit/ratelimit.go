// Package ratelimit implements fixed-window request limits over a pluggable
// counter store.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Store counts hits per key within a window.
type Store interface {
	// Hit records one hit for key and returns the count in the current window
	// and when that window resets.
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Rule is a named request budget.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result is the outcome of a limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long until the window resets, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// Limiter checks rules against a store.
type Limiter struct {
	store Store
	now   func() time.Time
}

// New creates a limiter over store.
func New(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// Allow records a hit for key under rule. Store failures allow the request.
func (l *Limiter) Allow(ctx context.Context, rule Rule, key string) Result {
	count, resetAt, err := l.store.Hit(ctx, rule.Name+":"+key, rule.Window)
	if err != nil {
		log.Warn().Err(err).Str("rule", rule.Name).Msg("rate limit store unavailable")
		return Result{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit, ResetAt: l.now().Add(rule.Window)}
	}
	return Result{
		Allowed:   count <= rule.Limit,
		Limit:     rule.Limit,
		Remaining: max(rule.Limit-count, 0),
		ResetAt:   resetAt,
	}
}
