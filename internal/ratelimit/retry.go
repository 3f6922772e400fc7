package ratelimit

import (
	"context"
	"time"

	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/rs/zerolog/log"
)

// RetryPolicy retries transient service failures with exponential backoff.
// Quota and input errors are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Injectable for tests; nil means real sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the standard 3-attempt policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Do runs fn up to MaxAttempts times, doubling the delay between attempts
// starting from BaseDelay and capping at MaxDelay. Only transient failures
// (timeouts, 5xx-class unknowns) are retried; anything else is returned
// immediately. After the attempt cap the last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !svcerr.Transient(err) || attempt == attempts {
			return err
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("transient service failure, retrying")
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
