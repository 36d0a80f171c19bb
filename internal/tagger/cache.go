package tagger

import "sync"

// Cache maps lookup keys to resolved tag lists. Entries are never evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[LookupKey]TagList
}

func NewCache() *Cache {
	return &Cache{entries: make(map[LookupKey]TagList)}
}

// Lookup returns the cached list for key.
func (c *Cache) Lookup(key LookupKey) (TagList, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tags, ok := c.entries[key]
	return tags, ok
}

// Store records tags for key, replacing any previous entry.
func (c *Cache) Store(key LookupKey, tags TagList) {
	if tags == nil {
		tags = TagList{}
	}
	c.mu.Lock()
	c.entries[key] = tags
	c.mu.Unlock()
}

// Len reports the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
