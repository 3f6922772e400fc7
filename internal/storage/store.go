// Package storage persists detection results and user-added fallback
// recipes in SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/dansheikh28/fridgevision/internal/recipes"
)

// Store defines the persistence interface.
type Store interface {
	// Detection cache methods; entries older than maxAge count as absent.
	GetDetections(hash string, maxAge time.Duration) ([]detect.Detection, bool, error)
	PutDetections(hash string, dets []detect.Detection) error
	PruneDetectionCache(maxAge time.Duration) (int64, error)

	// Catalog recipe methods (deployment-added fallback recipes).
	CatalogRecipes() ([]recipes.CatalogRecipe, error)
	AddCatalogRecipe(r recipes.CatalogRecipe) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a SQLite-backed store at dbPath, creating the
// schema when missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and a busy timeout so concurrent readers don't trip over
	// the occasional writer.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	detectionQuery := `
	CREATE TABLE IF NOT EXISTS detection_cache (
		image_hash TEXT PRIMARY KEY,
		detections TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(detectionQuery); err != nil {
		return fmt.Errorf("failed to create detection_cache table: %w", err)
	}

	catalogQuery := `
	CREATE TABLE IF NOT EXISTS catalog_recipes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL UNIQUE,
		cuisine TEXT NOT NULL DEFAULT '',
		diets TEXT NOT NULL DEFAULT '[]',
		ready_minutes INTEGER NOT NULL DEFAULT 0,
		servings INTEGER NOT NULL DEFAULT 0,
		source_url TEXT NOT NULL DEFAULT '',
		health_score REAL NOT NULL DEFAULT 0,
		ingredients TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(catalogQuery); err != nil {
		return fmt.Errorf("failed to create catalog_recipes table: %w", err)
	}
	return nil
}

// GetDetections retrieves cached detections by image hash. found is false
// when the hash is absent or the entry is older than maxAge.
func (s *SQLiteStore) GetDetections(hash string, maxAge time.Duration) ([]detect.Detection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var detectionsJSON string
	var createdAt int64
	err := s.db.QueryRow(
		"SELECT detections, created_at FROM detection_cache WHERE image_hash = ?",
		hash,
	).Scan(&detectionsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get detections: %w", err)
	}
	if maxAge > 0 && time.Since(time.Unix(createdAt, 0)) > maxAge {
		return nil, false, nil
	}

	var dets []detect.Detection
	if err := json.Unmarshal([]byte(detectionsJSON), &dets); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal detections: %w", err)
	}
	return dets, true, nil
}

// PutDetections stores detections for an image hash, replacing any
// previous entry.
func (s *SQLiteStore) PutDetections(hash string, dets []detect.Detection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dets == nil {
		dets = []detect.Detection{}
	}
	detectionsJSON, err := json.Marshal(dets)
	if err != nil {
		return fmt.Errorf("failed to marshal detections: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO detection_cache (image_hash, detections, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(image_hash) DO UPDATE SET detections = excluded.detections, created_at = excluded.created_at`,
		hash, string(detectionsJSON), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to put detections: %w", err)
	}
	return nil
}

// PruneDetectionCache deletes entries older than maxAge and returns the
// number removed. Callers decide when to prune; the store never runs
// background work.
func (s *SQLiteStore) PruneDetectionCache(maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.db.Exec("DELETE FROM detection_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune detection cache: %w", err)
	}
	return res.RowsAffected()
}

// CatalogRecipes returns all deployment-added fallback recipes.
func (s *SQLiteStore) CatalogRecipes() ([]recipes.CatalogRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, title, cuisine, diets, ready_minutes, servings, source_url, health_score, ingredients FROM catalog_recipes ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog recipes: %w", err)
	}
	defer rows.Close()

	var out []recipes.CatalogRecipe
	for rows.Next() {
		var r recipes.CatalogRecipe
		var dietsJSON, ingredientsJSON string
		if err := rows.Scan(&r.ID, &r.Title, &r.Cuisine, &dietsJSON, &r.ReadyMinutes, &r.Servings, &r.SourceURL, &r.HealthScore, &ingredientsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan catalog recipe: %w", err)
		}
		if err := json.Unmarshal([]byte(dietsJSON), &r.Diets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diets for %q: %w", r.Title, err)
		}
		if err := json.Unmarshal([]byte(ingredientsJSON), &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients for %q: %w", r.Title, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddCatalogRecipe stores a fallback recipe. The stored ID is assigned by
// the database; the ID on r is ignored.
func (s *SQLiteStore) AddCatalogRecipe(r recipes.CatalogRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Title == "" || len(r.Ingredients) == 0 {
		return fmt.Errorf("catalog recipe needs a title and at least one ingredient")
	}
	diets := r.Diets
	if diets == nil {
		diets = []string{}
	}
	dietsJSON, err := json.Marshal(diets)
	if err != nil {
		return fmt.Errorf("failed to marshal diets: %w", err)
	}
	ingredientsJSON, err := json.Marshal(recipes.CanonicalIngredients(r.Ingredients))
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO catalog_recipes (title, cuisine, diets, ready_minutes, servings, source_url, health_score, ingredients)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.Cuisine, string(dietsJSON), r.ReadyMinutes, r.Servings, r.SourceURL, r.HealthScore, string(ingredientsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to add catalog recipe: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
