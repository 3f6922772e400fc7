package recipes

import (
	"context"
	"time"

	"github.com/dansheikh28/fridgevision/internal/ratelimit"
	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/rs/zerolog/log"
)

// Searcher is the live recipe service boundary the engine calls through.
type Searcher interface {
	Search(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, error)
}

// EngineOpts wires an Engine. Client may be nil for fallback-only mode
// (e.g. no API key configured).
type EngineOpts struct {
	Client  Searcher
	Catalog *Catalog
	Cache   *ResultCache
	Limiter *ratelimit.Limiter
	Retry   ratelimit.RetryPolicy
	// Timeout bounds each live service call. Zero disables the per-call
	// deadline.
	Timeout time.Duration
	// DefaultCount caps results when the constraint leaves Count unset.
	DefaultCount int
}

// Engine recommends recipes for an ingredient list. It consults the result
// cache, then the live service under the rate limiter and retry policy, and
// degrades to the local catalog when the service is cooling down or keeps
// failing. It never surfaces a bare service failure: the worst outcome for
// the caller is an empty list.
type Engine struct {
	client       Searcher
	catalog      *Catalog
	cache        *ResultCache
	limiter      *ratelimit.Limiter
	retry        ratelimit.RetryPolicy
	timeout      time.Duration
	defaultCount int
}

// NewEngine creates an Engine. A nil Catalog gets the built-in corpus.
func NewEngine(opts EngineOpts) *Engine {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = NewCatalog()
	}
	defaultCount := opts.DefaultCount
	if defaultCount <= 0 {
		defaultCount = 10
	}
	return &Engine{
		client:       opts.Client,
		catalog:      catalog,
		cache:        opts.Cache,
		limiter:      opts.Limiter,
		retry:        opts.Retry,
		timeout:      opts.Timeout,
		defaultCount: defaultCount,
	}
}

// Recommend returns at most c.Count ranked recipe candidates for the given
// ingredients. "No results" is an empty slice, not an error; the only error
// is an InputError for an empty ingredient list.
func (e *Engine) Recommend(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, error) {
	canonical := CanonicalIngredients(ingredients)
	if len(canonical) == 0 {
		return nil, svcerr.Input("no ingredients to search recipes for")
	}
	if c.Count <= 0 {
		c.Count = e.defaultCount
	}

	key := CacheKey(canonical, c)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			log.Debug().Str("key", key[:16]).Msg("recipe cache hit")
			return cached, nil
		}
	}

	candidates, live, err := e.searchLive(ctx, canonical, c)
	if err != nil {
		return nil, err
	}
	if !live {
		candidates = e.catalog.Match(canonical, c)
		log.Info().
			Int("count", len(candidates)).
			Strs("ingredients", canonical).
			Msg("serving recipes from fallback catalog")
	}

	rankCandidates(candidates)
	candidates = truncate(candidates, c.Count)

	if e.cache != nil {
		e.cache.Set(key, candidates)
	}
	return candidates, nil
}

// searchLive attempts the live service. ok=false means the caller should
// use the fallback catalog. A non-nil error means the caller's own context
// ended; that is not a service failure and must not be downgraded.
func (e *Engine) searchLive(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, bool, error) {
	if e.client == nil {
		return nil, false, nil
	}
	if e.limiter != nil && !e.limiter.Allow() {
		log.Debug().Msg("recipe service cooling down, skipping live call")
		return nil, false, nil
	}

	var candidates []Candidate
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		callCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		result, err := e.client.Search(callCtx, ingredients, c)
		if err != nil {
			return err
		}
		candidates = result
		return nil
	})
	if err == nil {
		if e.limiter != nil {
			e.limiter.RecordSuccess()
		}
		return candidates, true, nil
	}
	if ctx.Err() != nil {
		// The caller's context ended, not the service. Per-call timeouts
		// expire on their own context and land in the failure path below.
		return nil, false, ctx.Err()
	}
	if e.limiter != nil {
		e.limiter.RecordFailure(svcerr.IsKind(err, svcerr.QuotaExceeded), svcerr.RetryAfter(err))
	}
	log.Warn().Err(err).Msg("recipe service unavailable, falling back to catalog")
	return nil, false, nil
}
