// Package cache contains a small thread-safe LRU wrapper used to cache
// decoded envelopes read out of packfiles.
package cache

import (
	"sync"

	lru "github.com/golang/groupcache/lru"
)

// Key may be any comparable value. See http://golang.org/ref/spec#Comparison_operators
type Key = lru.Key

// LRU is a thread-safe, fixed-capacity least-recently-used cache.
type LRU struct {
	cache *lru.Cache
	mu    sync.Mutex
}

// NewLRU creates an LRU cache. If maxEntries is zero the cache has no
// limit, and eviction is left to the caller.
func NewLRU(maxEntries int) *LRU {
	return &LRU{
		cache: lru.New(maxEntries),
	}
}

// Get looks up a key's value.
func (c *LRU) Get(key Key) (value interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Get(key)
}

// Add adds a value to the cache, evicting the oldest entry if needed.
func (c *LRU) Add(key Key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(key, value)
}

// Len returns the number of items currently cached.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}
