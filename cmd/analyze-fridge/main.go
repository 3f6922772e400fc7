package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dansheikh28/fridgevision/config"
	"github.com/dansheikh28/fridgevision/internal/fridge"
	"github.com/dansheikh28/fridgevision/internal/ratelimit"
	"github.com/dansheikh28/fridgevision/internal/recipes"
	"github.com/dansheikh28/fridgevision/internal/storage"
	"github.com/dansheikh28/fridgevision/internal/vision"
	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `
	Analyze a fridge photo and recommend recipes.

	Usage: %s [flags] <image-path>

	Environment variables:
	  GEMINI_API_KEY       - Required for detection
	  CONFIDENCE_THRESHOLD - Required, detection confidence cutoff in [0, 1]
	  SPOONACULAR_API_KEY  - Optional, enables the live recipe service
	  DB_PATH              - Optional, enables the detection cache and extra catalog recipes
`

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	count := flag.Int("count", 0, "Max recipes to return (default from config)")
	cuisine := flag.String("cuisine", "", "Cuisine filter (default from config)")
	diet := flag.String("diet", "", "Diet filter (default from config)")
	maxTime := flag.Int("max-time", -1, "Max cooking time in minutes (default from config)")
	rawJSON := flag.Bool("json", false, "Output raw JSON only")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, dedent.Dedent(usage), os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	image, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read image")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var store *storage.SQLiteStore
	if cfg.DBPath != "" {
		store, err = storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		defer store.Close()
	}

	detector, err := buildDetector(ctx, cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create detector")
	}

	analyzer := fridge.New(fridge.Options{
		Detector:            detector,
		Engine:              buildEngine(cfg, store),
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		IoUThreshold:        cfg.IoUThreshold,
		MaxImageSize:        cfg.MaxImageSize,
	})

	constraint := recipes.Constraint{
		Cuisine:         *cuisine,
		Diet:            *diet,
		MaxReadyMinutes: cfg.MaxCookingTime,
		Count:           cfg.MaxRecipes,
	}
	if *cuisine == "" {
		constraint.Cuisine = cfg.DefaultCuisine
	}
	if *diet == "" {
		constraint.Diet = cfg.DefaultDiet
	}
	if *maxTime >= 0 {
		constraint.MaxReadyMinutes = *maxTime
	}
	if *count > 0 {
		constraint.Count = *count
	}

	analysis, err := analyzer.Analyze(ctx, image, constraint)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	if *rawJSON {
		jsonBytes, _ := json.MarshalIndent(analysis, "", "  ")
		fmt.Println(string(jsonBytes))
		return
	}

	if len(analysis.Ingredients) == 0 {
		fmt.Println("No food items found in the photo.")
		return
	}

	fmt.Printf("Found %d ingredients:\n\n", len(analysis.Ingredients))
	for i, ing := range analysis.Ingredients {
		occ := ""
		if ing.Occurrences > 1 {
			occ = fmt.Sprintf(" x%d", ing.Occurrences)
		}
		fmt.Printf("%d. %s%s (%.0f%%)\n", i+1, ing.Name, occ, ing.Confidence*100)
	}

	fmt.Printf("\n%d recipe suggestions:\n\n", len(analysis.Recipes))
	printRecipes(analysis.Recipes)
}

// buildDetector assembles the detection stack: Gemini at the core, governed
// by its own rate limiter, retry policy and per-call timeout, wrapped in the
// persistent cache when a database is available, then the dual-pass runner,
// then the static fallback for quota outages.
func buildDetector(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore) (vision.Detector, error) {
	gemini, err := vision.NewGeminiDetector(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	var detector vision.Detector = vision.NewRateLimitedDetector(
		gemini,
		ratelimit.NewLimiter(cfg.RateLimitMinInterval, cfg.Cooldown),
		retryPolicy(cfg),
		cfg.RequestTimeout,
	)
	if store != nil {
		detector = vision.NewCachedDetector(detector, store, cfg.CacheTTL)
	}
	detector = vision.NewDualPassDetector(detector)
	if cfg.VisionFallback {
		detector = vision.NewFallbackDetector(detector, vision.StaticDetector{})
	}
	return detector, nil
}

func retryPolicy(cfg *config.Config) ratelimit.RetryPolicy {
	retry := ratelimit.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.RetryMaxAttempts
	retry.BaseDelay = cfg.RetryBaseDelay
	return retry
}

func buildEngine(cfg *config.Config, store *storage.SQLiteStore) *recipes.Engine {
	var client recipes.Searcher
	if cfg.SpoonacularAPIKey != "" {
		client = recipes.NewClient(recipes.ClientOpts{
			APIKey:  cfg.SpoonacularAPIKey,
			Timeout: cfg.RequestTimeout,
		})
	}

	var extra []recipes.CatalogRecipe
	if store != nil {
		stored, err := store.CatalogRecipes()
		if err != nil {
			log.Warn().Err(err).Msg("failed to load stored catalog recipes")
		} else {
			extra = stored
		}
	}

	return recipes.NewEngine(recipes.EngineOpts{
		Client:       client,
		Catalog:      recipes.NewCatalog(extra...),
		Cache:        recipes.NewResultCache(cfg.CacheTTL),
		Limiter:      ratelimit.NewLimiter(cfg.RateLimitMinInterval, cfg.Cooldown),
		Retry:        retryPolicy(cfg),
		Timeout:      cfg.RequestTimeout,
		DefaultCount: cfg.MaxRecipes,
	})
}

func printRecipes(recs []recipes.Candidate) {
	for i, r := range recs {
		ready := "N/A"
		if r.ReadyMinutes > 0 {
			ready = fmt.Sprintf("%d min", r.ReadyMinutes)
		}
		fmt.Printf("%d. %s - %s\n", i+1, r.Title, ready)
		fmt.Printf("   uses %d, missing %d\n", r.UsedIngredientCount, r.MissingIngredientCount)
		if r.SourceURL != "" {
			fmt.Printf("   %s\n", r.SourceURL)
		}
	}
}
