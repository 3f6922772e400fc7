// Package vision adapts external vision services into detection sequences
// and layers dual-pass scoring, caching and quota fallback on top of them.
package vision

import (
	"context"

	"github.com/dansheikh28/fridgevision/internal/detect"
)

const serviceName = "vision"

// Detector locates food items in an image. Implementations return raw
// detections; filtering and merging is the normalizer's job, but detectors
// drop results below minConfidence so callers don't pay for obvious noise.
type Detector interface {
	Detect(ctx context.Context, image []byte, minConfidence float64) ([]detect.Detection, error)
}
