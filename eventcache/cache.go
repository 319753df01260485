// Package eventcache provides a read cache of fetched events keyed by
// organization and calendar month.
package eventcache

import (
	"sync"
	"time"

	"github.com/bandroom/schedule"
)

// DefaultTTL is how long an entry is served before it is treated as a miss.
const DefaultTTL = 5 * time.Minute

type entry struct {
	events   []*schedule.Event
	storedAt time.Time
}

// Cache maps (organization, month) to the events last fetched for that month.
// Entries expire after the TTL; any mutation for an organization invalidates
// all of its entries. There is no other eviction — the entry count is bounded
// by organizations times months actually viewed.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]map[string]entry // orgID -> month -> entry
	ttl     time.Duration

	now func() time.Time // test hook
}

// New creates a cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached events for one organization-month, or a miss when
// the entry is absent or older than the TTL. Expired entries are dropped on
// the spot.
func (c *Cache) Get(orgID, month string) ([]*schedule.Event, bool) {
	c.mu.RLock()
	e, ok := c.entries[orgID][month]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		if months, ok := c.entries[orgID]; ok {
			delete(months, month)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.events, true
}

// Put stores the fetched events for one organization-month.
func (c *Cache) Put(orgID, month string, events []*schedule.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	months, ok := c.entries[orgID]
	if !ok {
		months = make(map[string]entry)
		c.entries[orgID] = months
	}
	months[month] = entry{events: events, storedAt: c.now()}
}

// Invalidate removes every entry belonging to the organization, regardless of
// month. Entries of other organizations are untouched.
func (c *Cache) Invalidate(orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orgID)
}

// Len reports the number of live organizations with at least one entry.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
