package recipes

import "strings"

// CatalogRecipe is one entry in the static fallback corpus consulted when
// the live recipe service is unavailable or quota-exhausted.
type CatalogRecipe struct {
	ID           int64
	Title        string
	Cuisine      string
	Diets        []string
	ReadyMinutes int
	Servings     int
	SourceURL    string
	HealthScore  float64
	Ingredients  []string
}

// Catalog holds the fallback recipe corpus: a compiled-in staple set plus
// any recipes the deployment added through storage.
type Catalog struct {
	recipes []CatalogRecipe
}

// NewCatalog creates a Catalog from the built-in staples plus extra
// recipes. Extras with an unset ID are assigned one after the built-in
// range.
func NewCatalog(extra ...CatalogRecipe) *Catalog {
	recipes := append([]CatalogRecipe(nil), builtinRecipes...)
	nextID := int64(fallbackIDBase + len(builtinRecipes))
	for _, r := range extra {
		if r.ID == 0 {
			r.ID = nextID
			nextID++
		}
		recipes = append(recipes, r)
	}
	return &Catalog{recipes: recipes}
}

// Match filters the catalog by the supplied ingredient list and
// constraints. A recipe qualifies when at least one of its required
// ingredients is present; cuisine, diet and max-time filters apply the same
// way the live service applies them. The ingredient list is expected to be
// canonicalized. Results are not ranked; the engine ranks both sources with
// the shared comparator.
func (c *Catalog) Match(ingredients []string, con Constraint) []Candidate {
	have := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		have[ing] = true
	}

	out := make([]Candidate, 0, len(c.recipes))
	for _, r := range c.recipes {
		if con.Cuisine != "" && !strings.EqualFold(r.Cuisine, con.Cuisine) {
			continue
		}
		if con.Diet != "" && !hasDiet(r.Diets, con.Diet) {
			continue
		}
		if con.MaxReadyMinutes > 0 && r.ReadyMinutes > con.MaxReadyMinutes {
			continue
		}

		var used, missing []string
		for _, req := range r.Ingredients {
			if have[req] {
				used = append(used, req)
			} else {
				missing = append(missing, req)
			}
		}
		if len(used) == 0 {
			continue
		}

		out = append(out, Candidate{
			ID:                     r.ID,
			Title:                  r.Title,
			UsedIngredientCount:    len(used),
			MissingIngredientCount: len(missing),
			ReadyMinutes:           r.ReadyMinutes,
			Servings:               r.Servings,
			SourceURL:              r.SourceURL,
			HealthScore:            r.HealthScore,
			UsedIngredients:        used,
			MissingIngredients:     missing,
		})
	}
	return out
}

func hasDiet(diets []string, want string) bool {
	for _, d := range diets {
		if strings.EqualFold(d, want) {
			return true
		}
	}
	return false
}

// fallbackIDBase keeps catalog IDs clear of anything the live service
// could plausibly return.
const fallbackIDBase = 9_000_000

var builtinRecipes = []CatalogRecipe{
	{
		ID:           fallbackIDBase + 0,
		Title:        "Chicken Stir Fry",
		Cuisine:      "asian",
		ReadyMinutes: 25,
		Servings:     4,
		HealthScore:  72,
		Ingredients:  []string{"chicken", "bell pepper", "onion", "garlic", "soy sauce", "rice"},
	},
	{
		ID:           fallbackIDBase + 1,
		Title:        "Vegetable Omelette",
		Cuisine:      "american",
		Diets:        []string{"vegetarian", "gluten free"},
		ReadyMinutes: 15,
		Servings:     2,
		HealthScore:  65,
		Ingredients:  []string{"egg", "bell pepper", "onion", "cheese", "butter", "mushroom"},
	},
	{
		ID:           fallbackIDBase + 2,
		Title:        "Pasta with Tomato Sauce",
		Cuisine:      "italian",
		Diets:        []string{"vegetarian"},
		ReadyMinutes: 30,
		Servings:     4,
		HealthScore:  58,
		Ingredients:  []string{"pasta", "tomato", "garlic", "onion", "olive oil", "cheese"},
	},
	{
		ID:           fallbackIDBase + 3,
		Title:        "Fresh Fruit Salad",
		Diets:        []string{"vegetarian", "vegan", "gluten free"},
		ReadyMinutes: 10,
		Servings:     4,
		HealthScore:  90,
		Ingredients:  []string{"apple", "banana", "orange", "grape", "honey"},
	},
	{
		ID:           fallbackIDBase + 4,
		Title:        "Grilled Cheese Sandwich",
		Cuisine:      "american",
		Diets:        []string{"vegetarian"},
		ReadyMinutes: 10,
		Servings:     1,
		HealthScore:  35,
		Ingredients:  []string{"bread", "cheese", "butter"},
	},
	{
		ID:           fallbackIDBase + 5,
		Title:        "Hearty Vegetable Soup",
		Diets:        []string{"vegetarian", "vegan"},
		ReadyMinutes: 45,
		Servings:     6,
		HealthScore:  85,
		Ingredients:  []string{"carrot", "celery", "onion", "potato", "tomato", "garlic"},
	},
	{
		ID:           fallbackIDBase + 6,
		Title:        "Chicken Salad",
		Cuisine:      "american",
		Diets:        []string{"gluten free"},
		ReadyMinutes: 20,
		Servings:     2,
		HealthScore:  70,
		Ingredients:  []string{"chicken", "lettuce", "tomato", "cucumber", "olive oil"},
	},
	{
		ID:           fallbackIDBase + 7,
		Title:        "Banana Smoothie",
		Diets:        []string{"vegetarian", "gluten free"},
		ReadyMinutes: 5,
		Servings:     1,
		HealthScore:  75,
		Ingredients:  []string{"banana", "milk", "yogurt", "honey"},
	},
	{
		ID:           fallbackIDBase + 8,
		Title:        "Veggie Rice Bowl",
		Cuisine:      "asian",
		Diets:        []string{"vegetarian", "vegan", "gluten free"},
		ReadyMinutes: 30,
		Servings:     2,
		HealthScore:  80,
		Ingredients:  []string{"rice", "broccoli", "carrot", "soy sauce", "garlic", "tofu"},
	},
	{
		ID:           fallbackIDBase + 9,
		Title:        "Apple Cinnamon Oatmeal",
		Diets:        []string{"vegetarian"},
		ReadyMinutes: 10,
		Servings:     1,
		HealthScore:  82,
		Ingredients:  []string{"oatmeal", "apple", "milk", "honey"},
	},
	{
		ID:           fallbackIDBase + 10,
		Title:        "Beef Tacos",
		Cuisine:      "mexican",
		ReadyMinutes: 25,
		Servings:     4,
		HealthScore:  55,
		Ingredients:  []string{"beef", "tortilla", "cheese", "lettuce", "tomato", "onion", "salsa"},
	},
	{
		ID:           fallbackIDBase + 11,
		Title:        "Caprese Salad",
		Cuisine:      "italian",
		Diets:        []string{"vegetarian", "gluten free"},
		ReadyMinutes: 10,
		Servings:     2,
		HealthScore:  78,
		Ingredients:  []string{"tomato", "cheese", "olive oil", "herbs"},
	},
}
