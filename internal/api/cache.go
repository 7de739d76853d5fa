package api

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/districtscope/districtscope/pkg/pipeline"
)

// DocumentCache caches scored documents by run ID.
type DocumentCache interface {
	Get(ctx context.Context, runID string) (*pipeline.Document, bool)
	Put(ctx context.Context, runID string, doc *pipeline.Document)
}

// MemoryCache is a thread-safe LRU cache for loaded run documents.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*pipeline.Document
	order   []string // oldest first
}

// NewMemoryCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 20.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &MemoryCache{
		maxSize: maxSize,
		entries: make(map[string]*pipeline.Document),
	}
}

// NewMemoryCacheFromEnv creates a cache with size from RUN_CACHE_SIZE env var.
func NewMemoryCacheFromEnv() *MemoryCache {
	size := 20
	if v := os.Getenv("RUN_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewMemoryCache(size)
}

// Get retrieves a document from the cache.
func (c *MemoryCache) Get(_ context.Context, runID string) (*pipeline.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.entries[runID]
	if !ok {
		return nil, false
	}

	c.moveToEnd(runID)
	return doc, true
}

// Put adds a document to the cache, evicting the least recently used if full.
func (c *MemoryCache) Put(_ context.Context, runID string, doc *pipeline.Document) {
	if doc == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[runID]; ok {
		c.entries[runID] = doc
		c.moveToEnd(runID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[runID] = doc
	c.order = append(c.order, runID)
}

// Len reports the number of cached documents.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) moveToEnd(runID string) {
	for i, k := range c.order {
		if k == runID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, runID)
			return
		}
	}
}
