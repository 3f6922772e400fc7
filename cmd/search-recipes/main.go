package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dansheikh28/fridgevision/internal/ratelimit"
	"github.com/dansheikh28/fridgevision/internal/recipes"
	"github.com/dansheikh28/fridgevision/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ingredients := flag.String("ingredients", "", "Comma-separated ingredient list (e.g. \"milk,egg,bread\")")
	count := flag.Int("count", 10, "Max recipes to return")
	cuisine := flag.String("cuisine", "", "Cuisine filter")
	diet := flag.String("diet", "", "Diet filter")
	maxTime := flag.Int("max-time", 0, "Max cooking time in minutes (0 = no limit)")
	rawJSON := flag.Bool("json", false, "Output raw JSON only")
	flag.Parse()

	if *ingredients == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -ingredients \"milk,egg,bread\" [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	var client recipes.Searcher
	if apiKey := os.Getenv("SPOONACULAR_API_KEY"); apiKey != "" {
		client = recipes.NewClient(recipes.ClientOpts{APIKey: apiKey, Timeout: 10 * time.Second})
	} else {
		log.Warn().Msg("SPOONACULAR_API_KEY not set, using fallback recipes only")
	}

	var extra []recipes.CatalogRecipe
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		defer store.Close()
		if extra, err = store.CatalogRecipes(); err != nil {
			log.Warn().Err(err).Msg("failed to load stored catalog recipes")
		}
	}

	engine := recipes.NewEngine(recipes.EngineOpts{
		Client:       client,
		Catalog:      recipes.NewCatalog(extra...),
		Cache:        recipes.NewResultCache(time.Hour),
		Limiter:      ratelimit.NewLimiter(time.Second, time.Minute),
		Retry:        ratelimit.DefaultRetryPolicy(),
		Timeout:      10 * time.Second,
		DefaultCount: *count,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := engine.Recommend(ctx, strings.Split(*ingredients, ","), recipes.Constraint{
		Cuisine:         *cuisine,
		Diet:            *diet,
		MaxReadyMinutes: *maxTime,
		Count:           *count,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *rawJSON {
		jsonBytes, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(jsonBytes))
		return
	}

	fmt.Printf("Found %d recipes\n\n", len(results))
	for i, r := range results {
		ready := "N/A"
		if r.ReadyMinutes > 0 {
			ready = fmt.Sprintf("%d min", r.ReadyMinutes)
		}
		fmt.Printf("%d. %s - %s\n", i+1, r.Title, ready)
		fmt.Printf("   uses %d, missing %d\n", r.UsedIngredientCount, r.MissingIngredientCount)
		if len(r.MissingIngredients) > 0 {
			fmt.Printf("   missing: %s\n", strings.Join(r.MissingIngredients, ", "))
		}
		if r.SourceURL != "" {
			fmt.Printf("   %s\n", r.SourceURL)
		}
	}
}
