// Package cache memoizes remote completion calls. Entries are content
// addressed: the key is a stable digest over everything that can affect a
// completion's output, so identical requests are served locally with zero
// network activity.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"shellm/model"
)

// Cache is a SQLite-backed LRU store of completion responses. Access is safe
// for concurrent use within one process; cross-process writers may produce
// duplicate entries, which the eviction policy tolerates.
type Cache struct {
	db         *sql.DB
	maxEntries int
	mu         sync.Mutex
}

// New opens (or creates) the cache database at dbPath. maxEntries bounds the
// stored entry count; least-recently-used entries are dropped beyond it.
func New(dbPath string, maxEntries int) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	// WAL keeps readers of other keys unaffected while evicting.
	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	c := &Cache{db: db, maxEntries: maxEntries}
	if err := c.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return c, nil
}

func (c *Cache) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS completions (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_used INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_completions_last_used ON completions(last_used);
	`
	_, err := c.db.Exec(query)
	return err
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// fingerprintPayload is the canonical JSON shape hashed into a cache key.
// Tool schemas are part of the payload: two calls with identical messages but
// different offered functions must not collide.
type fingerprintPayload struct {
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p"`
	Messages    []model.Message `json:"messages"`
	Tools       []toolDigest    `json:"tools,omitempty"`
}

type toolDigest struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

// Fingerprint derives the cache key for a completion request against the
// given model identifier.
func Fingerprint(req model.Request, modelID string) string {
	payload := fingerprintPayload{
		Model:       modelID,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Messages:    req.Messages,
	}

	for _, tool := range req.Tools {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			schema = []byte(tool.Description)
		}
		payload.Tools = append(payload.Tools, toolDigest{
			Name:   tool.Name,
			Schema: string(schema),
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshal of plain structs cannot fail; fall back to an unshared key.
		data = []byte(fmt.Sprintf("%v", payload))
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached value for key, or invokes compute, stores
// its result and returns it. The second return value reports whether the
// value came from the cache. Failed computes are never stored.
func (c *Cache) GetOrCompute(key string, compute func() (string, error)) (string, bool, error) {
	if value, ok, err := c.Get(key); err != nil {
		return "", false, err
	} else if ok {
		return value, true, nil
	}

	value, err := compute()
	if err != nil {
		return "", false, err
	}

	if err := c.Put(key, value); err != nil {
		return "", false, err
	}

	return value, false, nil
}

// Get looks up a cached value and refreshes its recency on hit.
func (c *Cache) Get(key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var value string
	err := c.db.QueryRow(`SELECT value FROM completions WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}

	_, err = c.db.Exec(`UPDATE completions SET last_used = ? WHERE key = ?`, time.Now().UnixNano(), key)
	if err != nil {
		return "", false, fmt.Errorf("cache touch: %w", err)
	}

	return value, true, nil
}

// Put stores a value and evicts least-recently-used entries beyond the
// configured ceiling.
func (c *Cache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	_, err := c.db.Exec(
		`INSERT INTO completions (key, value, created_at, last_used) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, last_used = excluded.last_used`,
		key, value, now, now,
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	return c.evict()
}

// Len reports the current entry count.
func (c *Cache) Len() (int, error) {
	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return count, nil
}

func (c *Cache) evict() error {
	if c.maxEntries <= 0 {
		return nil
	}

	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&count); err != nil {
		return fmt.Errorf("cache count: %w", err)
	}

	excess := count - c.maxEntries
	if excess <= 0 {
		return nil
	}

	_, err := c.db.Exec(
		`DELETE FROM completions WHERE key IN (
			SELECT key FROM completions ORDER BY last_used ASC LIMIT ?
		)`, excess,
	)
	if err != nil {
		return fmt.Errorf("cache eviction: %w", err)
	}
	return nil
}
