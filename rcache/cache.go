// Package rcache provides a small key-value cache whose entries expire a fixed
// time after they are stored.
//
// Expiry is lazy. An entry whose age has reached the time-to-live is treated
// as absent and evicted by the Get that notices it; there is no background
// sweeper and nothing to stop when done with the cache.
package rcache

import (
	"sync"
	"time"
)

// Cache maps string keys to values of type V.
//
// Safe to be used concurrently. Two callers that miss on the same key will
// both compute and Set the value; the last Set wins.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	lock    sync.Mutex
	entries map[string]entry[V]
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// New creates a new Cache.
func New[V any](options ...Option) (*Cache[V], error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{
		ttl:     opts.ttl,
		now:     opts.now,
		entries: make(map[string]entry[V]),
	}, nil
}

// Get returns the value stored for key. If there is no entry, or the entry
// has expired, the zero value and false are returned. An expired entry is
// removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for key, replacing any existing entry and restarting its
// time-to-live.
func (c *Cache[V]) Set(key string, value V) {
	c.lock.Lock()
	c.entries[key] = entry[V]{
		value:    value,
		storedAt: c.now(),
	}
	c.lock.Unlock()
}

// Delete removes the entry for key, if any.
func (c *Cache[V]) Delete(key string) {
	c.lock.Lock()
	delete(c.entries, key)
	c.lock.Unlock()
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.lock.Lock()
	clear(c.entries)
	c.lock.Unlock()
}

// Len returns the number of stored entries, including expired entries that
// have not yet been noticed by Get.
func (c *Cache[V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}

// TTL returns the cache's time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}
