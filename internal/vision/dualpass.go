package vision

import (
	"context"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DualPassDetector scores the original and an enhanced copy of the image in
// parallel and pools the detections, tagging each with its pass. The pass
// tag is provenance for the normalizer's tie-breaking only. A failure of
// the enhanced pass degrades to single-pass results; a failure of the
// original pass fails the call.
type DualPassDetector struct {
	inner Detector
}

// NewDualPassDetector wraps a detector with dual-pass scoring.
func NewDualPassDetector(inner Detector) *DualPassDetector {
	return &DualPassDetector{inner: inner}
}

// Detect implements the Detector interface.
func (d *DualPassDetector) Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]detect.Detection, error) {
	enhanced, err := Enhance(imageData)
	if err != nil {
		log.Warn().Err(err).Msg("image enhancement failed, running single pass")
		return d.detectPass(ctx, imageData, minConfidence, detect.PassOriginal)
	}

	var original, secondary []detect.Detection
	var enhancedErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dets, err := d.detectPass(gctx, imageData, minConfidence, detect.PassOriginal)
		if err != nil {
			return err
		}
		original = dets
		return nil
	})
	g.Go(func() error {
		dets, err := d.detectPass(gctx, enhanced, minConfidence, detect.PassEnhanced)
		if err != nil {
			enhancedErr = err
			return nil
		}
		secondary = dets
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if enhancedErr != nil {
		log.Warn().Err(enhancedErr).Msg("enhanced pass failed, using original pass only")
	}

	return append(original, secondary...), nil
}

func (d *DualPassDetector) detectPass(ctx context.Context, imageData []byte, minConfidence float64, pass detect.Pass) ([]detect.Detection, error) {
	dets, err := d.inner.Detect(ctx, imageData, minConfidence)
	if err != nil {
		return nil, err
	}
	for i := range dets {
		dets[i].Pass = pass
	}
	return dets, nil
}
