package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a stored payload plus its expiry and group tags.
type entry struct {
	value     []byte
	tags      []string
	expiresAt time.Time // zero => no TTL
}

// MemoryCache is an in-process Cache backed by a mutex-guarded map with a
// secondary index from group tag to member keys, so group invalidation is a
// single map walk rather than a full scan.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	byTag   map[string]map[string]struct{}
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache. A zero ttl disables expiry; entries
// then live until their group is invalidated.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		byTag:   make(map[string]map[string]struct{}),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the payload stored under key, if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		// Expired entries are dropped lazily on the next read. A Set may
		// have refreshed the key since the read lock was released, so only
		// remove the entry if it is still expired.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !cur.expiresAt.IsZero() && c.now().After(cur.expiresAt) {
			c.removeLocked(key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key, tagged with the given invalidation groups.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-setting a key under different tags must not leave it reachable
	// through its old groups.
	c.removeLocked(key)

	e := entry{value: value, tags: tags}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = e
	for _, tag := range tags {
		if c.byTag[tag] == nil {
			c.byTag[tag] = make(map[string]struct{})
		}
		c.byTag[tag][key] = struct{}{}
	}
	return nil
}

// InvalidateGroup drops every entry tagged with the group.
func (c *MemoryCache) InvalidateGroup(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.byTag[tag] {
		c.removeLocked(key)
	}
	delete(c.byTag, tag)
	return nil
}

// removeLocked deletes an entry and its tag index memberships. Callers must
// hold the write lock.
func (c *MemoryCache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	for _, tag := range e.tags {
		if members := c.byTag[tag]; members != nil {
			delete(members, key)
			if len(members) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
	delete(c.entries, key)
}

var _ Cache = (*MemoryCache)(nil)
