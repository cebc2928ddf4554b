package assistant

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
)

func TestCache_GetPut(t *testing.T) {
	c := NewCache(DefaultCacheTTL, DefaultCacheEntries)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("empty cache should miss")
	}

	want := Response{Content: "H-1B answers"}
	c.Put("k", want)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Content != want.Content {
		t.Errorf("got %q, want %q", got.Content, want.Content)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(30*time.Minute, DefaultCacheEntries)

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put("k", Response{Content: "answer"})

	current = current.Add(29 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired before TTL")
	}

	current = current.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry survived past TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", c.Len())
	}
}

func TestCache_EvictsOldestFirst(t *testing.T) {
	c := NewCache(DefaultCacheTTL, 3)

	for i := range 4 {
		c.Put(fmt.Sprintf("k%d", i), Response{Content: fmt.Sprintf("v%d", i)})
	}

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	for i := 1; i < 4; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("entry k%d missing", i)
		}
	}
}

func TestCache_PutSameKeyRefreshes(t *testing.T) {
	c := NewCache(DefaultCacheTTL, 2)

	c.Put("a", Response{Content: "one"})
	c.Put("a", Response{Content: "two"})
	c.Put("b", Response{Content: "three"})

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got.Content != "two" {
		t.Errorf("Get(a) = %+v, %v", got, ok)
	}
}

func TestCacheKey(t *testing.T) {
	docs := []rag.ContextChunk{
		{Content: "H-1B cap details for fiscal year 2025", Source: "USCIS"},
	}

	if cacheKey("q", docs) != cacheKey("q", docs) {
		t.Error("identical inputs should share a key")
	}
	if cacheKey("q", docs) == cacheKey("other", docs) {
		t.Error("different queries should not share a key")
	}
	if cacheKey("q", docs) == cacheKey("q", nil) {
		t.Error("different context should not share a key")
	}

	// Only the first 50 characters of each chunk participate.
	base := strings.Repeat("x", 50)
	a := []rag.ContextChunk{{Content: base + "tail one"}}
	b := []rag.ContextChunk{{Content: base + "different tail"}}
	if cacheKey("q", a) != cacheKey("q", b) {
		t.Error("chunks identical in their first 50 chars should share a key")
	}
}
