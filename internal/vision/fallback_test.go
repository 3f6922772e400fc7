package vision

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detectorFunc adapts a function to the Detector interface.
type detectorFunc func(ctx context.Context, image []byte, minConfidence float64) ([]detect.Detection, error)

func (f detectorFunc) Detect(ctx context.Context, image []byte, minConfidence float64) ([]detect.Detection, error) {
	return f(ctx, image, minConfidence)
}

func TestDualPassEnhancedFailureDegrades(t *testing.T) {
	original := testImage(t, 64, 48)
	inner := detectorFunc(func(ctx context.Context, image []byte, minConfidence float64) ([]detect.Detection, error) {
		if !bytes.Equal(image, original) {
			return nil, svcerr.New("vision", svcerr.Unknown, errors.New("enhanced pass boom"))
		}
		return []detect.Detection{{Label: "apple", Confidence: 0.8, Box: detect.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}}}, nil
	})
	d := NewDualPassDetector(inner)

	dets, err := d.Detect(context.Background(), original, 0.3)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, detect.PassOriginal, dets[0].Pass)
}

func TestDualPassOriginalFailureFails(t *testing.T) {
	original := testImage(t, 64, 48)
	boom := svcerr.New("vision", svcerr.Unknown, errors.New("original pass boom"))
	inner := detectorFunc(func(ctx context.Context, image []byte, minConfidence float64) ([]detect.Detection, error) {
		if bytes.Equal(image, original) {
			return nil, boom
		}
		return nil, nil
	})
	d := NewDualPassDetector(inner)

	_, err := d.Detect(context.Background(), original, 0.3)
	assert.ErrorIs(t, err, boom)
}

func TestStaticDetectorServesStaples(t *testing.T) {
	img := testImage(t, 200, 100)
	dets, err := StaticDetector{}.Detect(context.Background(), img, 0.3)
	require.NoError(t, err)
	require.NotEmpty(t, dets)

	labels := make([]string, len(dets))
	for i, d := range dets {
		labels[i] = d.Label
		assert.True(t, d.Box.Valid())
		assert.LessOrEqual(t, d.Box.X2, 200.0)
		assert.LessOrEqual(t, d.Box.Y2, 100.0)
	}
	assert.Contains(t, labels, "milk")
	assert.Contains(t, labels, "egg")
}

func TestStaticDetectorRespectsThreshold(t *testing.T) {
	img := testImage(t, 100, 100)
	dets, err := StaticDetector{}.Detect(context.Background(), img, 0.99)
	require.NoError(t, err)
	assert.Empty(t, dets)
}

func TestStaticDetectorInvalidImage(t *testing.T) {
	_, err := StaticDetector{}.Detect(context.Background(), []byte("junk"), 0.3)
	assert.True(t, svcerr.IsKind(err, svcerr.InvalidImage))
}

func TestFallbackDetectorQuotaDegrades(t *testing.T) {
	quota := svcerr.New("vision", svcerr.QuotaExceeded, errors.New("429"))
	primary := &fakeDetector{errs: []error{quota}}
	d := NewFallbackDetector(primary, StaticDetector{})

	dets, err := d.Detect(context.Background(), testImage(t, 100, 100), 0.3)
	require.NoError(t, err)
	assert.NotEmpty(t, dets)
}

func TestFallbackDetectorOtherErrorsPropagate(t *testing.T) {
	boom := svcerr.New("vision", svcerr.Timeout, errors.New("deadline"))
	primary := &fakeDetector{errs: []error{boom}}
	d := NewFallbackDetector(primary, StaticDetector{})

	_, err := d.Detect(context.Background(), testImage(t, 100, 100), 0.3)
	assert.ErrorIs(t, err, boom)
}

func TestFallbackDetectorPrimarySuccessPassesThrough(t *testing.T) {
	primary := &fakeDetector{dets: []detect.Detection{
		{Label: "apple", Confidence: 0.9, Box: detect.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}},
	}}
	d := NewFallbackDetector(primary, StaticDetector{})

	dets, err := d.Detect(context.Background(), testImage(t, 100, 100), 0.3)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "apple", dets[0].Label)
}
