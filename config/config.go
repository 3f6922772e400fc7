// Package config loads the startup configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	AppName     = "fridgevision"
	EnvFileName = "config.env"
)

// Config holds everything the pipeline needs at startup. Per-request inputs
// (image bytes, constraints) are not configuration.
type Config struct {
	GeminiAPIKey      string
	SpoonacularAPIKey string

	// ConfidenceThreshold has no default on purpose: the sensible value
	// depends on the vision model in use, so deployments must choose.
	ConfidenceThreshold float64
	IoUThreshold        float64

	MaxRecipes     int
	DefaultCuisine string
	DefaultDiet    string
	MaxCookingTime int

	RateLimitMinInterval time.Duration
	CacheTTL             time.Duration
	RequestTimeout       time.Duration
	RetryMaxAttempts     int
	RetryBaseDelay       time.Duration
	Cooldown             time.Duration

	MaxImageSize   int64
	DBPath         string
	VisionFallback bool
}

// LoadEnvFile loads environment variables from the config file in the
// user's config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads the configuration from the environment. GEMINI_API_KEY and
// CONFIDENCE_THRESHOLD are required; a missing SPOONACULAR_API_KEY only
// disables the live recipe service (fallback catalog still works).
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		SpoonacularAPIKey: os.Getenv("SPOONACULAR_API_KEY"),
		DefaultCuisine:    os.Getenv("DEFAULT_CUISINE"),
		DefaultDiet:       os.Getenv("DEFAULT_DIET"),
		DBPath:            os.Getenv("DB_PATH"),
	}
	if cfg.GeminiAPIKey == "" {
		return nil, svcerr.Config("GEMINI_API_KEY", "is required")
	}
	if cfg.SpoonacularAPIKey == "" {
		log.Warn().Msg("SPOONACULAR_API_KEY not set, using fallback recipes only")
	}

	var err error
	if cfg.ConfidenceThreshold, err = requiredFloat("CONFIDENCE_THRESHOLD", 0, 1); err != nil {
		return nil, err
	}
	if cfg.IoUThreshold, err = floatVar("IOU_THRESHOLD", 0.45, 0, 1); err != nil {
		return nil, err
	}
	if cfg.MaxRecipes, err = intVar("MAX_RECIPES", 10); err != nil {
		return nil, err
	}
	if cfg.MaxCookingTime, err = intVar("MAX_COOKING_TIME", 60); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts, err = intVar("RETRY_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.RateLimitMinInterval, err = durationVar("RATE_LIMIT_MIN_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationVar("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationVar("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = durationVar("RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Cooldown, err = durationVar("COOLDOWN", time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxImageSize, err = int64Var("MAX_IMAGE_SIZE", 20*1024*1024); err != nil {
		return nil, err
	}
	if cfg.VisionFallback, err = boolVar("VISION_FALLBACK", true); err != nil {
		return nil, err
	}
	return cfg, nil
}

func requiredFloat(key string, min, max float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, svcerr.Config(key, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, svcerr.Config(key, "invalid float %q", raw)
	}
	if v < min || v > max {
		return 0, svcerr.Config(key, "%v out of range [%v, %v]", v, min, max)
	}
	return v, nil
}

func floatVar(key string, def, min, max float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, svcerr.Config(key, "invalid float %q", raw)
	}
	if v < min || v > max {
		return 0, svcerr.Config(key, "%v out of range [%v, %v]", v, min, max)
	}
	return v, nil
}

func intVar(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, svcerr.Config(key, "invalid non-negative integer %q", raw)
	}
	return v, nil
}

func int64Var(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, svcerr.Config(key, "invalid non-negative integer %q", raw)
	}
	return v, nil
}

func boolVar(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, svcerr.Config(key, "invalid boolean %q", raw)
	}
	return v, nil
}

// durationVar accepts Go duration syntax ("90s", "1h") or a bare number of
// seconds.
func durationVar(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, svcerr.Config(key, "negative duration %q", raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, svcerr.Config(key, "invalid duration %q", raw)
	}
	return d, nil
}
