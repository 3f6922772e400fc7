// Package ratelimit spaces outbound calls to an external service and
// short-circuits them to fallback paths while the service is quota-limited.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Limiter governs outbound calls to one external service. It enforces a
// minimum inter-request interval while open, and after a quota failure it
// enters a cooldown window during which Allow reports false so callers go
// straight to their fallback.
//
// Construct one Limiter per service and inject it; the zero value is not
// usable.
type Limiter struct {
	mu           sync.Mutex
	minInterval  time.Duration
	cooldown     time.Duration
	nextAt       time.Time
	coolingUntil time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a Limiter with the given minimum spacing between
// requests and the default cooldown window applied after quota failures.
func NewLimiter(minInterval, cooldown time.Duration) *Limiter {
	return &Limiter{
		minInterval: minInterval,
		cooldown:    cooldown,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Allow reports whether the service may be called right now. It returns
// false for the duration of a cooldown window and true otherwise. Allow
// does not consume a request slot; call Wait before the actual request.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.now().Before(l.coolingUntil)
}

// Wait reserves the next request slot and delays the caller until the
// minimum inter-request interval has passed. Requests are never dropped,
// only delayed. Returns early with ctx.Err() on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	var delay time.Duration
	if l.nextAt.After(now) {
		delay = l.nextAt.Sub(now)
		l.nextAt = l.nextAt.Add(l.minInterval)
	} else {
		l.nextAt = now.Add(l.minInterval)
	}
	l.mu.Unlock()

	return l.sleep(ctx, delay)
}

// RecordSuccess notes a successful call. A success while a cooldown is
// pending clears it, since the service is evidently serving again.
func (l *Limiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.coolingUntil = time.Time{}
}

// RecordFailure notes a failed call. Quota failures open a cooldown window
// of retryAfter when the service reported one, otherwise the configured
// default. Non-quota failures do not affect the limiter state; they are the
// retry policy's business.
func (l *Limiter) RecordFailure(isQuota bool, retryAfter time.Duration) {
	if !isQuota {
		return
	}
	window := l.cooldown
	if retryAfter > 0 {
		window = retryAfter
	}
	l.mu.Lock()
	l.coolingUntil = l.now().Add(window)
	l.mu.Unlock()

	log.Warn().Dur("window", window).Msg("quota exceeded, cooling down")
}
