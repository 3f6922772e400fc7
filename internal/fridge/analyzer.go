// Package fridge is the pipeline facade: photo in, ingredients and recipe
// recommendations out. The presentation layer consumes this package and
// nothing below it.
package fridge

import (
	"context"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/dansheikh28/fridgevision/internal/recipes"
	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/dansheikh28/fridgevision/internal/vision"
	"github.com/rs/zerolog/log"
)

// Options configures an Analyzer.
type Options struct {
	Detector   vision.Detector
	Normalizer *detect.Normalizer
	Engine     *recipes.Engine

	ConfidenceThreshold float64
	IoUThreshold        float64
	// MaxImageSize bounds accepted image payloads in bytes; 0 disables
	// the check.
	MaxImageSize int64
}

// Analysis is the result of a full photo-to-recipes run.
type Analysis struct {
	Ingredients []detect.Ingredient `json:"ingredients"`
	Recipes     []recipes.Candidate `json:"recipes"`
}

// Analyzer runs the detection and recommendation pipeline. Each call is an
// independent unit of work; the only shared state lives inside the injected
// engine (cache, limiter) and whatever detector stack the caller built.
type Analyzer struct {
	detector   vision.Detector
	normalizer *detect.Normalizer
	engine     *recipes.Engine

	confidenceThreshold float64
	iouThreshold        float64
	maxImageSize        int64
}

// New creates an Analyzer. A nil Normalizer gets the default label policy;
// a nil Engine gets a catalog-only engine, so recommendations always work.
func New(opts Options) *Analyzer {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = detect.NewNormalizer(detect.DefaultLabelPolicy())
	}
	engine := opts.Engine
	if engine == nil {
		engine = recipes.NewEngine(recipes.EngineOpts{})
	}
	return &Analyzer{
		detector:            opts.Detector,
		normalizer:          normalizer,
		engine:              engine,
		confidenceThreshold: opts.ConfidenceThreshold,
		iouThreshold:        opts.IoUThreshold,
		maxImageSize:        opts.MaxImageSize,
	}
}

// Ingredients detects and normalizes the food items in a fridge photo. An
// empty result means no food was found; that is not an error.
func (a *Analyzer) Ingredients(ctx context.Context, image []byte) ([]detect.Ingredient, error) {
	if len(image) == 0 {
		return nil, svcerr.Input("empty image")
	}
	if a.maxImageSize > 0 && int64(len(image)) > a.maxImageSize {
		return nil, svcerr.Input("image too large: %d bytes (max %d)", len(image), a.maxImageSize)
	}

	dets, err := a.detector.Detect(ctx, image, a.confidenceThreshold)
	if err != nil {
		return nil, err
	}
	ingredients := a.normalizer.Normalize(dets, a.confidenceThreshold, a.iouThreshold)

	log.Info().
		Int("detections", len(dets)).
		Int("ingredients", len(ingredients)).
		Msg("analyzed fridge photo")
	return ingredients, nil
}

// Recommend returns ranked recipe candidates for an ingredient list.
func (a *Analyzer) Recommend(ctx context.Context, ingredients []string, c recipes.Constraint) ([]recipes.Candidate, error) {
	return a.engine.Recommend(ctx, ingredients, c)
}

// Analyze runs the full photo-to-recipes flow. When the photo yields no
// ingredients the analysis carries empty slices and no recipes are fetched.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, c recipes.Constraint) (*Analysis, error) {
	ingredients, err := a.Ingredients(ctx, image)
	if err != nil {
		return nil, err
	}
	analysis := &Analysis{Ingredients: ingredients}
	if len(ingredients) == 0 {
		return analysis, nil
	}

	recs, err := a.engine.Recommend(ctx, detect.Names(ingredients), c)
	if err != nil {
		return nil, err
	}
	analysis.Recipes = recs
	return analysis, nil
}
