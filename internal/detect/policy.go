package detect

import "strings"

// LabelPolicy decides what a raw detection label means: a food kept as-is,
// a container resolved to its probable contents, or a non-food dropped.
// The policy is plain data so deployments can swap the tables without code
// changes.
type LabelPolicy struct {
	// Foods are labels accepted directly as ingredients.
	Foods map[string]bool
	// Containers maps ambiguous container labels to a best-guess content,
	// e.g. "bottle" -> "milk". An empty value drops the label.
	Containers map[string]string
	// Synonyms maps label variants to the canonical ingredient name,
	// e.g. "red pepper" -> "bell pepper".
	Synonyms map[string]string
	// NonFood are labels dropped outright (appliances, people, furniture).
	NonFood map[string]bool
	// StripPrefixes and StripSuffixes are trimmed before retrying an
	// unrecognized label, e.g. "fresh apple" -> "apple".
	StripPrefixes []string
	StripSuffixes []string
}

// DefaultLabelPolicy returns the built-in label tables. Food and non-food
// classes cover the common COCO object classes a fridge photo produces plus
// staple groceries; the container map carries the classic bottle/bowl/cup
// guesses.
func DefaultLabelPolicy() LabelPolicy {
	return LabelPolicy{
		Foods: labelSet(
			"apple", "banana", "orange", "grape", "strawberry", "blueberry",
			"lemon", "lime", "peach", "pear", "pineapple", "watermelon",
			"mango", "avocado", "kiwi",
			"broccoli", "carrot", "tomato", "onion", "garlic", "potato",
			"lettuce", "spinach", "cucumber", "bell pepper", "celery",
			"mushroom", "corn", "cabbage", "zucchini", "eggplant",
			"cauliflower", "green onion", "ginger", "cilantro", "herbs",
			"milk", "cheese", "butter", "yogurt", "cream", "egg",
			"chicken", "beef", "pork", "fish", "salmon", "shrimp",
			"bacon", "sausage", "ham", "tofu",
			"bread", "rice", "pasta", "tortilla", "cereal", "oatmeal",
			"flour", "sugar", "honey", "jam", "peanut butter",
			"ketchup", "mustard", "mayonnaise", "salsa", "hot sauce",
			"soy sauce", "olive oil", "vinegar",
			"juice", "soda", "beer", "wine", "coffee", "tea", "water",
			"sandwich", "pizza", "hot dog", "donut", "cake", "leftovers",
			"pickles", "olives", "beans", "hummus",
		),
		Containers: map[string]string{
			"bottle":     "milk",
			"bowl":       "cereal",
			"cup":        "coffee",
			"wine glass": "wine",
			"carton":     "milk",
			"jug":        "juice",
			"can":        "soda",
			"jar":        "jam",
		},
		Synonyms: map[string]string{
			"red pepper":   "bell pepper",
			"green pepper": "bell pepper",
			"capsicum":     "bell pepper",
			"scallion":     "green onion",
			"spring onion": "green onion",
			"courgette":    "zucchini",
			"aubergine":    "eggplant",
			"coriander":    "cilantro",
			"eggs":         "egg",
			"maize":        "corn",
		},
		NonFood: labelSet(
			"refrigerator", "oven", "microwave", "toaster", "sink",
			"person", "dining table", "chair", "couch", "bed",
			"book", "clock", "vase", "scissors", "tv", "laptop",
			"cell phone", "remote", "potted plant", "backpack", "handbag",
			"knife", "fork", "spoon", "shelf", "drawer",
		),
		StripPrefixes: []string{
			"fresh ", "organic ", "raw ", "whole ", "sliced ", "chopped ",
			"frozen ", "ripe ",
		},
		StripSuffixes: []string{
			" container", " carton", " bottle", " jar", " can", " pack",
			" packet", " box", " bag",
		},
	}
}

func labelSet(labels ...string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

// Resolve maps a raw detection label to its ingredient name. ok is false
// when the label is non-food or unrecognized.
func (p LabelPolicy) Resolve(label string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" {
		return "", false
	}
	if canonical, ok := p.Synonyms[name]; ok {
		name = canonical
	}
	if p.NonFood[name] {
		return "", false
	}
	if p.Foods[name] {
		return name, true
	}
	if content, ok := p.Containers[name]; ok {
		if content == "" {
			return "", false
		}
		return content, true
	}
	if singular := singularize(name); singular != name && p.Foods[singular] {
		return singular, true
	}
	// Retry once with decorations stripped ("fresh apple", "milk carton").
	if stripped := p.strip(name); stripped != name {
		return p.Resolve(stripped)
	}
	return "", false
}

func (p LabelPolicy) strip(name string) string {
	for _, prefix := range p.StripPrefixes {
		name = strings.TrimPrefix(name, prefix)
	}
	for _, suffix := range p.StripSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

// singularize handles plain plural forms; irregular plurals go in Synonyms.
func singularize(name string) string {
	if strings.HasSuffix(name, "oes") || strings.HasSuffix(name, "shes") || strings.HasSuffix(name, "ches") {
		return strings.TrimSuffix(name, "es")
	}
	if strings.HasSuffix(name, "ies") {
		return strings.TrimSuffix(name, "ies") + "y"
	}
	if strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") {
		return strings.TrimSuffix(name, "s")
	}
	return name
}
