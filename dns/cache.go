package dns

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry pairs a resolved agent with its expiry deadline. TTL is
// per entry: each fresh resolution carries its own lifetime.
type cacheEntry struct {
	name      string
	agent     ResolvedAgent
	expiresAt time.Time
}

// resolveCache is a thread-safe LRU cache keyed by canonical agent name.
// One entry per name; a fresh resolution overwrites rather than merges.
type resolveCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List
}

func newResolveCache(capacity int) *resolveCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &resolveCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// get returns the cached agent for name if present and not expired.
func (c *resolveCache) get(name string, now time.Time) (ResolvedAgent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[name]
	if !ok {
		return ResolvedAgent{}, false
	}
	ent := elem.Value.(*cacheEntry)
	if !now.Before(ent.expiresAt) {
		c.lru.Remove(elem)
		delete(c.items, name)
		return ResolvedAgent{}, false
	}
	c.lru.MoveToFront(elem)
	return ent.agent, true
}

// set stores or overwrites the entry for name with the given expiry.
func (c *resolveCache) set(name string, agent ResolvedAgent, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[name]; ok {
		c.lru.MoveToFront(elem)
		ent := elem.Value.(*cacheEntry)
		ent.agent = agent
		ent.expiresAt = expiresAt
		return
	}

	elem := c.lru.PushFront(&cacheEntry{name: name, agent: agent, expiresAt: expiresAt})
	c.items[name] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).name)
		}
	}
}

func (c *resolveCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

func (c *resolveCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
