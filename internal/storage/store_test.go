package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/dansheikh28/fridgevision/internal/recipes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDetectionCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)

	dets := []detect.Detection{
		{Label: "apple", Confidence: 0.9, Box: detect.Box{X1: 10, Y1: 20, X2: 110, Y2: 140}},
		{Label: "bottle", Confidence: 0.75, Box: detect.Box{X1: 200, Y1: 0, X2: 260, Y2: 180}, Pass: detect.PassEnhanced},
	}
	require.NoError(t, store.PutDetections("hash1", dets))

	got, found, err := store.GetDetections("hash1", time.Hour)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, dets, got)
}

func TestDetectionCacheMiss(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.GetDetections("missing", time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDetectionCacheEmptyResultIsCached(t *testing.T) {
	store := newTestStore(t)

	// A cached "no food found" is distinct from a cache miss.
	require.NoError(t, store.PutDetections("empty", nil))
	got, found, err := store.GetDetections("empty", time.Hour)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestDetectionCacheReplaces(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutDetections("h", []detect.Detection{{Label: "apple", Confidence: 0.5, Box: detect.Box{X1: 0, Y1: 0, X2: 1, Y2: 1}}}))
	require.NoError(t, store.PutDetections("h", []detect.Detection{{Label: "milk", Confidence: 0.8, Box: detect.Box{X1: 0, Y1: 0, X2: 1, Y2: 1}}}))

	got, found, err := store.GetDetections("h", time.Hour)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "milk", got[0].Label)
}

func TestDetectionCacheMaxAge(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutDetections("h", nil))

	// A zero-duration maxAge means no age limit.
	_, found, err := store.GetDetections("h", 0)
	require.NoError(t, err)
	assert.True(t, found)

	// Entries older than a sub-second maxAge are absent after a pause.
	time.Sleep(1100 * time.Millisecond)
	_, found, err = store.GetDetections("h", time.Second)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPruneDetectionCache(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutDetections("h1", nil))
	require.NoError(t, store.PutDetections("h2", nil))

	removed, err := store.PruneDetectionCache(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	time.Sleep(2100 * time.Millisecond)
	removed, err = store.PruneDetectionCache(time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestCatalogRecipesRoundTrip(t *testing.T) {
	store := newTestStore(t)

	recipesIn := []recipes.CatalogRecipe{
		{
			Title:        "Leftover Fried Rice",
			Cuisine:      "asian",
			Diets:        []string{"vegetarian"},
			ReadyMinutes: 15,
			Servings:     2,
			HealthScore:  60,
			Ingredients:  []string{"rice", "egg", "green onion"},
		},
		{
			Title:       "Pantry Pasta",
			Ingredients: []string{"pasta", "olive oil", "garlic"},
		},
	}
	for _, r := range recipesIn {
		require.NoError(t, store.AddCatalogRecipe(r))
	}

	got, err := store.CatalogRecipes()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Leftover Fried Rice", got[0].Title)
	assert.Equal(t, []string{"vegetarian"}, got[0].Diets)
	assert.ElementsMatch(t, []string{"rice", "egg", "green onion"}, got[0].Ingredients)
	assert.NotZero(t, got[0].ID)

	assert.Equal(t, "Pantry Pasta", got[1].Title)
	assert.Empty(t, got[1].Diets)
}

func TestAddCatalogRecipeValidation(t *testing.T) {
	store := newTestStore(t)

	assert.Error(t, store.AddCatalogRecipe(recipes.CatalogRecipe{Title: "No Ingredients"}))
	assert.Error(t, store.AddCatalogRecipe(recipes.CatalogRecipe{Ingredients: []string{"rice"}}))
}

func TestCatalogRecipesEmpty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.CatalogRecipes()
	require.NoError(t, err)
	assert.Empty(t, got)
}
