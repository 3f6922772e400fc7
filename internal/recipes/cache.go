package recipes

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"
)

// ResultCache is a process-wide, concurrency-safe TTL cache of ranked
// recommendation results keyed by (ingredient set, constraints). Expired
// entries are treated as absent, never served. Entries are replaced
// wholesale; readers get copies so a cached slice can never be mutated
// through a returned value.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	now func() time.Time
}

type cacheEntry struct {
	candidates []Candidate
	expiresAt  time.Time
}

// NewResultCache creates a ResultCache with the given TTL.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// CacheKey derives a deterministic cache key from a canonicalized
// ingredient list and the query constraints. Names are length-prefixed so
// boundary collisions cannot alias two different lists.
func CacheKey(ingredients []string, c Constraint) string {
	h := sha256.New()
	for _, name := range ingredients {
		binary.Write(h, binary.LittleEndian, int64(len(name)))
		h.Write([]byte(name))
	}
	binary.Write(h, binary.LittleEndian, int64(len(c.Cuisine)))
	h.Write([]byte(c.Cuisine))
	binary.Write(h, binary.LittleEndian, int64(len(c.Diet)))
	h.Write([]byte(c.Diet))
	binary.Write(h, binary.LittleEndian, int64(c.MaxReadyMinutes))
	binary.Write(h, binary.LittleEndian, int64(c.Count))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached candidates for key, or ok=false when the key is
// absent or expired. Expired entries are evicted on access.
func (c *ResultCache) Get(key string) ([]Candidate, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check: another writer may have refreshed the entry.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return copyCandidates(entry.candidates), true
}

// Set stores candidates under key with the configured TTL, replacing any
// previous entry wholesale.
func (c *ResultCache) Set(key string, candidates []Candidate) {
	entry := cacheEntry{
		candidates: copyCandidates(candidates),
		expiresAt:  c.now().Add(c.ttl),
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// copyCandidates deep-copies the candidates, including the ingredient
// slices, so neither side can mutate the other's view.
func copyCandidates(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		out[i].UsedIngredients = append([]string(nil), out[i].UsedIngredients...)
		out[i].MissingIngredients = append([]string(nil), out[i].MissingIngredients...)
	}
	return out
}
