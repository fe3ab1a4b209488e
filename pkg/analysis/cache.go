package analysis

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores reports keyed by an external text id. A capacity of 0 keeps every
// entry; a positive capacity evicts the least recently used entry when full.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Report
	lru     *lru.Cache[string, Report]
}

// NewCache returns a cache with the given capacity. Negative capacities are treated as 0.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		return &Cache{entries: make(map[string]Report)}
	}
	l, err := lru.New[string, Report](capacity)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{lru: l}
}

func (c *Cache) Get(id string) (Report, bool) {
	if c.lru != nil {
		return c.lru.Get(id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[id]
	return r, ok
}

func (c *Cache) Put(id string, r Report) {
	if c.lru != nil {
		c.lru.Add(id, r)
		return
	}
	c.mu.Lock()
	c.entries[id] = r
	c.mu.Unlock()
}

func (c *Cache) Remove(id string) {
	if c.lru != nil {
		c.lru.Remove(id)
		return
	}
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	if c.lru != nil {
		return c.lru.Len()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
