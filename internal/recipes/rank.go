package recipes

import "sort"

// rankCandidates sorts candidates in place with the one comparator both the
// live and fallback paths share: used ingredients descending, missing
// ingredients ascending, ready time ascending with unknown (0) last, then
// title for full determinism.
func rankCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.UsedIngredientCount != b.UsedIngredientCount {
			return a.UsedIngredientCount > b.UsedIngredientCount
		}
		if a.MissingIngredientCount != b.MissingIngredientCount {
			return a.MissingIngredientCount < b.MissingIngredientCount
		}
		if a.ReadyMinutes != b.ReadyMinutes {
			if a.ReadyMinutes == 0 {
				return false
			}
			if b.ReadyMinutes == 0 {
				return true
			}
			return a.ReadyMinutes < b.ReadyMinutes
		}
		return a.Title < b.Title
	})
}

// truncate caps the slice at n entries; n <= 0 leaves it untouched.
func truncate(cands []Candidate, n int) []Candidate {
	if n > 0 && len(cands) > n {
		return cands[:n]
	}
	return cands
}
