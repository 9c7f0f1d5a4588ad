// Package cache provides a process-local, time-boxed memoization of
// upstream responses. Entries are idempotent snapshots of server state;
// there is no size bound, no eviction policy beyond lazy expiry on read,
// and no persistence across restarts.
package cache

import (
	"sync"
	"time"
)

// DefaultMaxAge bounds how long a cached response is served by default.
const DefaultMaxAge = 10 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is an explicitly constructed instance; callers inject it into
// whatever layer performs data fetching so tests can use isolated caches.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New returns an empty cache using the wall clock.
func New() *Cache {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty cache reading time from now. Tests use
// this to drive expiry deterministically.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Set stores value under key, unconditionally overwriting any previous
// entry and stamping the current time.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Get returns the stored value if an entry exists and is no older than
// maxAge. A maxAge of zero or less means the entry never expires. An
// expired entry is evicted as a side effect of the read.
func (c *Cache) Get(key string, maxAge time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if maxAge > 0 && c.now().Sub(e.storedAt) > maxAge {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Clear removes one entry. Clearing an absent key is not an error.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// ClearAll removes every entry. Used on sign-in changes so a different
// account never sees the previous session's data.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Has reports whether an entry exists for key, ignoring expiry.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
