package detect

import "sort"

// Pass records which detection pass produced a Detection. It is provenance
// only: passes are pooled before normalization and the pass is used solely
// to break exact confidence ties (the original image wins).
type Pass int

const (
	PassOriginal Pass = iota
	PassEnhanced
)

func (p Pass) String() string {
	if p == PassEnhanced {
		return "enhanced"
	}
	return "original"
}

// Detection is a single (label, confidence, bounding box) output from the
// vision classifier for one image region. Detections are request-scoped and
// never persisted by this package.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Pass       Pass    `json:"pass"`
}

// Ingredient is a normalized, de-duplicated food item derived from one or
// more merged detections.
type Ingredient struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Occurrences int     `json:"occurrences"`
}

// Normalizer filters, resolves and merges raw detections according to a
// label policy. It is pure and safe for concurrent use.
type Normalizer struct {
	policy LabelPolicy
}

// NewNormalizer creates a Normalizer with the given label policy.
func NewNormalizer(policy LabelPolicy) *Normalizer {
	return &Normalizer{policy: policy}
}

type resolved struct {
	name string
	det  Detection
}

// Normalize turns raw detections into a ranked ingredient list. Detections
// below confThreshold, with non-food or unrecognized labels, or with
// malformed boxes are dropped. Near-duplicate boxes of the same resolved
// label (IoU >= iouThreshold) are merged, highest confidence wins. Two
// different foods overlapping spatially are both kept.
//
// The result is ordered by confidence descending, ties alphabetical. Empty
// input or everything filtered out yields an empty slice, never an error.
func (n *Normalizer) Normalize(dets []Detection, confThreshold, iouThreshold float64) []Ingredient {
	pool := make([]resolved, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < confThreshold || d.Confidence < 0 || d.Confidence > 1 {
			continue
		}
		if !d.Box.Valid() {
			continue
		}
		name, ok := n.policy.Resolve(d.Label)
		if !ok {
			continue
		}
		pool = append(pool, resolved{name: name, det: d})
	}

	// Greedy per-label non-max suppression: highest confidence first, the
	// original pass preferred on exact ties for determinism.
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.det.Confidence != b.det.Confidence {
			return a.det.Confidence > b.det.Confidence
		}
		if a.det.Pass != b.det.Pass {
			return a.det.Pass < b.det.Pass
		}
		return a.name < b.name
	})

	keptBoxes := make(map[string][]Box)
	counts := make(map[string]int)
	maxConf := make(map[string]float64)
	for _, r := range pool {
		suppressed := false
		for _, kept := range keptBoxes[r.name] {
			if kept.IoU(r.det.Box) >= iouThreshold {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		keptBoxes[r.name] = append(keptBoxes[r.name], r.det.Box)
		counts[r.name]++
		if r.det.Confidence > maxConf[r.name] {
			maxConf[r.name] = r.det.Confidence
		}
	}

	out := make([]Ingredient, 0, len(counts))
	for name, count := range counts {
		out = append(out, Ingredient{
			Name:        name,
			Confidence:  maxConf[name],
			Occurrences: count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns just the ingredient names, preserving order.
func Names(ingredients []Ingredient) []string {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.Name
	}
	return names
}
