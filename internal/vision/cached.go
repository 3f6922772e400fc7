package vision

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/rs/zerolog/log"
)

// DetectionStore persists detection results keyed by image hash.
// *storage.SQLiteStore implements it.
type DetectionStore interface {
	// GetDetections returns the cached detections for hash, with found
	// reporting whether a fresh entry (younger than maxAge) exists. An
	// empty detection list with found=true is a valid cached "no food
	// found" result.
	GetDetections(hash string, maxAge time.Duration) (dets []detect.Detection, found bool, err error)
	PutDetections(hash string, dets []detect.Detection) error
}

// CachedDetector wraps a Detector with persistent caching. Store failures
// are logged and ignored; caching never fails a detection.
type CachedDetector struct {
	inner  Detector
	store  DetectionStore
	maxAge time.Duration
}

// NewCachedDetector creates a cached detector. Entries older than maxAge
// are treated as absent.
func NewCachedDetector(inner Detector, store DetectionStore, maxAge time.Duration) *CachedDetector {
	return &CachedDetector{inner: inner, store: store, maxAge: maxAge}
}

// hashImage creates a SHA256 key from the image data and the confidence
// threshold. The length prefix keeps distinct (image, threshold) pairs from
// colliding at the byte boundary.
func hashImage(imageData []byte, minConfidence float64) string {
	h := sha256.New()
	binary.Write(h, binary.LittleEndian, int64(len(imageData)))
	h.Write(imageData)
	binary.Write(h, binary.LittleEndian, math.Float64bits(minConfidence))
	return hex.EncodeToString(h.Sum(nil))
}

// Detect implements the Detector interface with caching.
func (c *CachedDetector) Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]detect.Detection, error) {
	hash := hashImage(imageData, minConfidence)

	if c.store != nil {
		cached, found, err := c.store.GetDetections(hash, c.maxAge)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check detection cache")
		} else if found {
			log.Debug().Str("hash", hash[:16]).Msg("detection cache hit")
			return cached, nil
		}
	}

	dets, err := c.inner.Detect(ctx, imageData, minConfidence)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.PutDetections(hash, dets); err != nil {
			log.Warn().Err(err).Msg("failed to cache detections")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached detections")
		}
	}
	return dets, nil
}
