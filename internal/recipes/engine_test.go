package recipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dansheikh28/fridgevision/internal/ratelimit"
	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSearcher plays the live recipe service in engine tests.
type stubSearcher struct {
	calls   int
	results []Candidate
	errs    []error
}

func (s *stubSearcher) Search(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.results, nil
}

// searcherFunc adapts a function to the Searcher interface.
type searcherFunc func(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, error)

func (f searcherFunc) Search(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, error) {
	return f(ctx, ingredients, c)
}

func instantRetry() ratelimit.RetryPolicy {
	return ratelimit.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Sleep:       func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func fastLimiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(0, time.Minute)
}

func TestEngineEmptyIngredientsIsInputError(t *testing.T) {
	e := NewEngine(EngineOpts{Retry: instantRetry()})
	_, err := e.Recommend(context.Background(), nil, Constraint{Count: 5})
	assert.True(t, svcerr.IsInput(err))

	_, err = e.Recommend(context.Background(), []string{" ", ""}, Constraint{Count: 5})
	assert.True(t, svcerr.IsInput(err))
}

func TestEngineLiveResultsRankedAndTruncated(t *testing.T) {
	stub := &stubSearcher{results: []Candidate{
		{ID: 1, Title: "b", UsedIngredientCount: 1},
		{ID: 2, Title: "a", UsedIngredientCount: 3},
		{ID: 3, Title: "c", UsedIngredientCount: 2},
	}}
	e := NewEngine(EngineOpts{
		Client:  stub,
		Cache:   NewResultCache(time.Hour),
		Limiter: fastLimiter(),
		Retry:   instantRetry(),
	})

	got, err := e.Recommend(context.Background(), []string{"apple"}, Constraint{Count: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
}

func TestEngineCacheHitSkipsLiveCall(t *testing.T) {
	stub := &stubSearcher{results: []Candidate{{ID: 1, Title: "Pasta", UsedIngredientCount: 1}}}
	e := NewEngine(EngineOpts{
		Client:  stub,
		Cache:   NewResultCache(time.Hour),
		Limiter: fastLimiter(),
		Retry:   instantRetry(),
	})
	ctx := context.Background()

	first, err := e.Recommend(ctx, []string{"apple"}, Constraint{Count: 5})
	require.NoError(t, err)
	second, err := e.Recommend(ctx, []string{"Apple "}, Constraint{Count: 5})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
}

func TestEngineQuotaFailureFallsBackToCatalog(t *testing.T) {
	quota := svcerr.New("recipes", svcerr.QuotaExceeded, errors.New("402"))
	stub := &stubSearcher{errs: []error{quota}}
	limiter := fastLimiter()
	e := NewEngine(EngineOpts{
		Client:  stub,
		Cache:   NewResultCache(time.Hour),
		Limiter: limiter,
		Retry:   instantRetry(),
	})

	got, err := e.Recommend(context.Background(), []string{"bread", "cheese"}, Constraint{Count: 5})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Grilled Cheese Sandwich", got[0].Title)
	// Quota errors are not retried.
	assert.Equal(t, 1, stub.calls)
	// And the limiter is now cooling down.
	assert.False(t, limiter.Allow())
}

func TestEngineCooldownSkipsLiveCall(t *testing.T) {
	stub := &stubSearcher{results: []Candidate{{ID: 1, Title: "Live"}}}
	limiter := fastLimiter()
	limiter.RecordFailure(true, 0)
	e := NewEngine(EngineOpts{
		Client:  stub,
		Limiter: limiter,
		Retry:   instantRetry(),
	})

	got, err := e.Recommend(context.Background(), []string{"bread", "cheese"}, Constraint{Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, stub.calls)
	require.NotEmpty(t, got)
	assert.Equal(t, "Grilled Cheese Sandwich", got[0].Title)
}

func TestEngineTransientFailureRetriedThenSucceeds(t *testing.T) {
	stub := &stubSearcher{
		errs:    []error{svcerr.New("recipes", svcerr.Timeout, nil), nil},
		results: []Candidate{{ID: 1, Title: "Live", UsedIngredientCount: 1}},
	}
	e := NewEngine(EngineOpts{
		Client:  stub,
		Limiter: fastLimiter(),
		Retry:   instantRetry(),
	})

	got, err := e.Recommend(context.Background(), []string{"apple"}, Constraint{Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	require.Len(t, got, 1)
	assert.Equal(t, "Live", got[0].Title)
}

func TestEnginePersistentTransientFailureFallsBack(t *testing.T) {
	boom := svcerr.New("recipes", svcerr.Unknown, errors.New("boom"))
	stub := &stubSearcher{errs: []error{boom, boom, boom}}
	limiter := fastLimiter()
	e := NewEngine(EngineOpts{
		Client:  stub,
		Limiter: limiter,
		Retry:   instantRetry(),
	})

	got, err := e.Recommend(context.Background(), []string{"egg", "cheese"}, Constraint{Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls)
	assert.NotEmpty(t, got)
	// Non-quota failures leave the limiter open.
	assert.True(t, limiter.Allow())
}

func TestEngineCallerCancellationPropagated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := searcherFunc(func(ctx context.Context, ingredients []string, c Constraint) ([]Candidate, error) {
		cancel()
		return nil, ctx.Err()
	})
	cache := NewResultCache(time.Hour)
	e := NewEngine(EngineOpts{
		Client:  client,
		Cache:   cache,
		Limiter: fastLimiter(),
		Retry:   instantRetry(),
	})

	_, err := e.Recommend(ctx, []string{"apple"}, Constraint{Count: 5})
	assert.ErrorIs(t, err, context.Canceled)
	// Nothing is cached for a caller that is gone.
	assert.Equal(t, 0, cache.Len())
}

func TestEngineNilClientUsesCatalog(t *testing.T) {
	e := NewEngine(EngineOpts{Retry: instantRetry()})

	got, err := e.Recommend(context.Background(), []string{"banana", "milk"}, Constraint{Count: 3})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Banana Smoothie", got[0].Title)
}

func TestEngineNoResultsIsEmptyNotError(t *testing.T) {
	stub := &stubSearcher{results: nil}
	e := NewEngine(EngineOpts{
		Client:  stub,
		Limiter: fastLimiter(),
		Retry:   instantRetry(),
	})

	got, err := e.Recommend(context.Background(), []string{"water"}, Constraint{Count: 5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEngineFallbackResultsAreCached(t *testing.T) {
	quota := svcerr.New("recipes", svcerr.QuotaExceeded, nil)
	stub := &stubSearcher{errs: []error{quota}}
	cache := NewResultCache(time.Hour)
	e := NewEngine(EngineOpts{
		Client:  stub,
		Cache:   cache,
		Limiter: fastLimiter(),
		Retry:   instantRetry(),
	})
	ctx := context.Background()

	first, err := e.Recommend(ctx, []string{"bread", "cheese"}, Constraint{Count: 5})
	require.NoError(t, err)
	second, err := e.Recommend(ctx, []string{"bread", "cheese"}, Constraint{Count: 5})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, cache.Len())
}
