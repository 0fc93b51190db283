package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(limit int, period time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New(limit, period)
	l.now = clock.Now
	return l, clock
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 1; i <= 3; i++ {
		res := l.Allow("client-a")
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if res.Remaining != 3-i {
			t.Errorf("request %d: expected remaining %d, got %d", i, 3-i, res.Remaining)
		}
		if res.Limit != 3 {
			t.Errorf("expected limit 3, got %d", res.Limit)
		}
	}
}

func TestRejectOverLimit(t *testing.T) {
	l, clock := newTestLimiter(1, 60*time.Second)
	windowStart := clock.Now()

	first := l.Allow("client-a")
	if !first.Allowed {
		t.Fatal("first request should be allowed")
	}

	clock.Advance(time.Second)
	second := l.Allow("client-a")
	if second.Allowed {
		t.Fatal("second request within the window should be rejected")
	}
	if second.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", second.Remaining)
	}
	wantReset := windowStart.Add(60 * time.Second)
	if !second.ResetAt.Equal(wantReset) {
		t.Errorf("expected reset at %v, got %v", wantReset, second.ResetAt)
	}
}

func TestWindowRollsForward(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	l.Allow("client-a")
	l.Allow("client-a")
	if res := l.Allow("client-a"); res.Allowed {
		t.Fatal("third request should be rejected")
	}

	clock.Advance(time.Minute)
	res := l.Allow("client-a")
	if !res.Allowed {
		t.Fatal("request after window expiry should be allowed")
	}
	if res.Remaining != 1 {
		t.Errorf("fresh window should have remaining 1, got %d", res.Remaining)
	}
}

func TestIdentifierIsolation(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if res := l.Allow("client-a"); !res.Allowed {
		t.Fatal("client-a should be allowed")
	}
	if res := l.Allow("client-b"); !res.Allowed {
		t.Fatal("client-b should not be affected by client-a's counter")
	}
	if res := l.Allow("client-a"); res.Allowed {
		t.Fatal("client-a second request should be rejected")
	}
}

func TestRejectedAttemptsStillCharged(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	l.Allow("client-a")
	l.Allow("client-a")
	// Rejected attempts keep incrementing the counter.
	l.Allow("client-a")
	l.Allow("client-a")

	clock.Advance(30 * time.Second)
	if res := l.Allow("client-a"); res.Allowed {
		t.Fatal("still inside the window; request should be rejected")
	}
}

func TestConcurrentCallersSameIdentifier(t *testing.T) {
	const limit = 50
	const attempts = 200

	l := New(limit, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := l.Allow("shared"); res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("expected exactly %d allowed requests, got %d", limit, allowed)
	}
}

func TestPurgeExpiredEntries(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	l.Allow("stale")
	clock.Advance(3 * time.Minute)

	l.mu.Lock()
	l.purgeExpired(clock.Now())
	_, exists := l.windows["stale"]
	l.mu.Unlock()

	if exists {
		t.Error("expected stale window to be purged")
	}
}
