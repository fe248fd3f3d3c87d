package distance

import (
	"fmt"
	"sync"
	"time"

	"cs-store-backend/internal/models"
)

// Cache is a TTL-bounded map of computed distances. It is advisory only:
// two misses racing on the same key may both compute, which is fine because
// the computation is idempotent and side-effect free.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	km        float64
	method    string
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(warehouseID string, dest models.LatLng) string {
	return fmt.Sprintf("%s|%.6f|%.6f", warehouseID, dest.Lat, dest.Lng)
}

// Get returns a still-fresh entry. Expired entries are lazily evicted.
func (c *Cache) Get(warehouseID string, dest models.LatLng) (float64, string, bool) {
	key := cacheKey(warehouseID, dest)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return 0, "", false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return 0, "", false
	}
	return e.km, e.method, true
}

func (c *Cache) Put(warehouseID string, dest models.LatLng, km float64, method string) {
	key := cacheKey(warehouseID, dest)
	c.mu.Lock()
	c.entries[key] = cacheEntry{km: km, method: method, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
