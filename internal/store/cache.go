package store

import "sort"

// Cache is an in-memory stroke-count mapping owned by a single run.
//
// Thread-safety: Cache is not safe for concurrent use. The pipeline is
// single-threaded and owns the cache for the duration of a run.
type Cache struct {
	entries map[string]int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]int)}
}

// NewCacheFrom returns a cache seeded with entries.
// Non-positive counts are dropped; they could never be served as a
// valid stroke count and are re-resolved instead.
func NewCacheFrom(entries map[string]int) *Cache {
	c := NewCache()
	for k, v := range entries {
		c.Put(k, v)
	}
	return c
}

// Get returns the cached count for kanji.
func (c *Cache) Get(kanji string) (int, bool) {
	n, ok := c.entries[kanji]
	return n, ok
}

// Has reports whether kanji is cached.
func (c *Cache) Has(kanji string) bool {
	_, ok := c.entries[kanji]
	return ok
}

// Put records a stroke count. Empty keys and non-positive counts are ignored.
func (c *Cache) Put(kanji string, strokes int) {
	if kanji == "" || strokes <= 0 {
		return
	}
	c.entries[kanji] = strokes
}

// Len returns the number of cached characters.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns the cached characters in byte order.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the mapping.
func (c *Cache) Snapshot() map[string]int {
	out := make(map[string]int, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into c. Existing entries are overwritten.
func (c *Cache) Merge(other *Cache) {
	for k, v := range other.entries {
		c.Put(k, v)
	}
}
