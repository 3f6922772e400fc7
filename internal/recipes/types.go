// Package recipes matches an ingredient list against a recipe corpus. The
// live service and the local fallback catalog both normalize to the same
// Candidate shape, so ranking downstream is source-agnostic.
package recipes

import (
	"sort"
	"strings"
)

// Candidate is one recommendable recipe, from either the live service or
// the fallback catalog.
type Candidate struct {
	ID                     int64    `json:"id"`
	Title                  string   `json:"title"`
	ImageURL               string   `json:"image_url,omitempty"`
	UsedIngredientCount    int      `json:"used_ingredient_count"`
	MissingIngredientCount int      `json:"missing_ingredient_count"`
	// ReadyMinutes is 0 when the source did not report a time; unknown
	// times sort after known ones.
	ReadyMinutes       int      `json:"ready_minutes,omitempty"`
	Servings           int      `json:"servings,omitempty"`
	SourceURL          string   `json:"source_url,omitempty"`
	HealthScore        float64  `json:"health_score,omitempty"`
	UsedIngredients    []string `json:"used_ingredients,omitempty"`
	MissingIngredients []string `json:"missing_ingredients,omitempty"`
}

// Constraint narrows a recommendation query. Zero values mean "no
// constraint"; Count caps the number of results.
type Constraint struct {
	Cuisine         string
	Diet            string
	MaxReadyMinutes int
	Count           int
}

// CanonicalIngredients lowercases, trims and de-duplicates ingredient
// names, returning them sorted. Underscores become spaces so names stored
// as e.g. "bell_pepper" match the service's expectations.
func CanonicalIngredients(ingredients []string) []string {
	seen := make(map[string]bool, len(ingredients))
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ing))
		name = strings.ReplaceAll(name, "_", " ")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
