package assistant

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
)

// Cache bounds for generated responses. Repeated questions are common
// enough that a short-TTL cache cuts noticeable latency.
const (
	DefaultCacheTTL     = 30 * time.Minute
	DefaultCacheEntries = 100
)

type cacheEntry struct {
	response Response
	storedAt time.Time
}

// Cache is a bounded in-memory response cache. Entries expire after the
// TTL; when the cache grows past its size bound the oldest entry is
// evicted first. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	order      []string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewCache creates a cache with the given TTL and entry bound.
// Non-positive arguments fall back to the defaults.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached response for key, if present and not expired.
func (c *Cache) Get(key string) (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Response{}, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.remove(key)
		return Response{}, false
	}
	return entry.response, true
}

// Put stores a response under key, evicting the oldest entry when the
// size bound is exceeded.
func (c *Cache) Put(key string, resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.remove(key)
	}

	c.entries[key] = cacheEntry{response: resp, storedAt: c.now()}
	c.order = append(c.order, key)

	if len(c.entries) > c.maxEntries {
		c.remove(c.order[0])
	}
}

// Len reports the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove must be called with the mutex held.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// cacheKey fingerprints a query together with the context it was answered
// against: the same question over different retrieved chunks must not share
// a cache entry. Only the first 50 characters of each chunk participate,
// matching how distinct chunks actually differ in practice.
func cacheKey(query string, docs []rag.ContextChunk) string {
	var b strings.Builder
	b.WriteString(query)
	b.WriteByte(':')
	for i, doc := range docs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(prefix(doc.Content, 50))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
