package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache stores scraped page content as JSON files with a wall-clock TTL.
// Entries that are expired or unreadable are treated as misses.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a Cache rooted at dir.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl}
}

type cacheEntry struct {
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
}

// Get returns the cached content for the given URL, if present and fresh.
func (c *Cache) Get(url string) (string, bool) {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		return "", false
	}
	return entry.Content, true
}

// Put stores content for the given URL with the current timestamp.
func (c *Cache) Put(url, content string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.MarshalIndent(cacheEntry{
		Timestamp: time.Now(),
		URL:       url,
		Content:   content,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling cache entry: %w", err)
	}

	if err := os.WriteFile(c.path(url), data, 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(url string) string {
	sum := md5.Sum([]byte(url))
	return filepath.Join(c.dir, "web_cache_"+hex.EncodeToString(sum[:])+".json")
}
