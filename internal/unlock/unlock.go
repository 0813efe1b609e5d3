// Package unlock remembers which PIN-protected entries were recently opened.
package unlock

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays readable after a correct PIN.
const DefaultTTL = 5 * time.Minute

// IsUnlocked reports whether an unlock expiring at until still holds at now.
func IsUnlocked(until, now time.Time) bool {
	return !now.After(until)
}

// Cache maps an entry key (its date key) to the moment its unlock expires.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func NewCache() *Cache {
	return &Cache{until: make(map[string]time.Time)}
}

// Unlock makes key readable until now+ttl.
func (c *Cache) Unlock(key string, now time.Time, ttl time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	until := now.Add(ttl)
	c.until[key] = until
	return until
}

// IsUnlocked reports whether key is readable at now. Expired records are
// dropped.
func (c *Cache) IsUnlocked(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	until, ok := c.until[key]
	if !ok {
		return false
	}
	if !IsUnlocked(until, now) {
		delete(c.until, key)
		return false
	}
	return true
}

// Lock forgets any unlock for key.
func (c *Cache) Lock(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.until, key)
}
