package vision

import (
	"context"
	"errors"
	"time"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/dansheikh28/fridgevision/internal/ratelimit"
	"github.com/dansheikh28/fridgevision/internal/svcerr"
)

// RateLimitedDetector governs outbound vision calls the same way the recipe
// engine governs its live service: requests are spaced by the limiter,
// transient failures are retried per the policy, each call carries its own
// timeout, and quota failures open a cooldown during which calls
// short-circuit with QuotaExceeded so a fallback layer can take over.
type RateLimitedDetector struct {
	inner   Detector
	limiter *ratelimit.Limiter
	retry   ratelimit.RetryPolicy
	// timeout bounds each call to the inner detector. Zero disables the
	// per-call deadline.
	timeout time.Duration
}

// NewRateLimitedDetector wraps a detector with rate limiting, retry and
// per-call timeouts. A nil limiter disables spacing and cooldown handling.
func NewRateLimitedDetector(inner Detector, limiter *ratelimit.Limiter, retry ratelimit.RetryPolicy, timeout time.Duration) *RateLimitedDetector {
	return &RateLimitedDetector{
		inner:   inner,
		limiter: limiter,
		retry:   retry,
		timeout: timeout,
	}
}

// Detect implements the Detector interface.
func (r *RateLimitedDetector) Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]detect.Detection, error) {
	if r.limiter != nil && !r.limiter.Allow() {
		return nil, svcerr.New(serviceName, svcerr.QuotaExceeded, errors.New("service cooling down"))
	}

	var dets []detect.Detection
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		callCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		result, err := r.inner.Detect(callCtx, imageData, minConfidence)
		if err != nil {
			return err
		}
		dets = result
		return nil
	})
	if err != nil {
		if r.limiter != nil {
			r.limiter.RecordFailure(svcerr.IsKind(err, svcerr.QuotaExceeded), svcerr.RetryAfter(err))
		}
		return nil, err
	}
	if r.limiter != nil {
		r.limiter.RecordSuccess()
	}
	return dets, nil
}
