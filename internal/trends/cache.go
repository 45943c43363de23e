package trends

import (
	"sync"

	"github.com/atarjan/memebet/internal/models"
)

// Cache holds the most recent trend item set. The set is replaced wholesale
// on every refresh; items are never patched in place.
type Cache struct {
	mu    sync.RWMutex
	items []models.TrendItem
}

// NewCache creates an empty trend cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps in a freshly fetched item set.
func (c *Cache) Replace(items []models.TrendItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// Current returns a snapshot of the latest item set.
func (c *Cache) Current() []models.TrendItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make([]models.TrendItem, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}

// Lookup returns the item with the given ID from the current set.
func (c *Cache) Lookup(id string) (models.TrendItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.TrendItem{}, false
}
