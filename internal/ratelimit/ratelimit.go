// Package ratelimit implements a fixed-window request counter keyed by a
// caller identifier. Every generation request passes through one Limiter
// instance; state is purely in-memory with lazy window expiry.
package ratelimit

import (
	"sync"
	"time"
)

// purgeThreshold is the entry count above which idle windows are swept.
// Purging is memory hygiene only; correctness never depends on it.
const purgeThreshold = 10000

// Result describes the outcome of a single quota check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window counter map guarded by a single mutex. Construct
// one per process (or per test) and share it; it has no package-level state.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

// New creates a Limiter permitting limit requests per identifier per period.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow records one request attempt for identifier and reports whether it is
// within quota. The counter is incremented even when the attempt is rejected:
// callers are charged for over-limit attempts, so hammering the endpoint
// never shortens the wait.
func (l *Limiter) Allow(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[identifier]
	if !ok || now.Sub(w.start) >= l.period {
		if len(l.windows) >= purgeThreshold {
			l.purgeExpired(now)
		}
		w = &window{start: now}
		l.windows[identifier] = w
	}

	w.count++
	resetAt := w.start.Add(l.period)

	if w.count > l.limit {
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: resetAt}
	}
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - w.count,
		ResetAt:   resetAt,
	}
}

// purgeExpired drops windows that ended more than one period ago.
// Caller must hold l.mu.
func (l *Limiter) purgeExpired(now time.Time) {
	for id, w := range l.windows {
		if now.Sub(w.start) >= 2*l.period {
			delete(l.windows, id)
		}
	}
}
