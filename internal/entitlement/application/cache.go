package application

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// tierCache holds loaded records, not resolved tiers, so that expiry is
// still evaluated against the clock on every read.
//
// Each user has a generation that invalidate bumps. A load captures the
// generation before reading the store and only caches its result if the
// generation is unchanged, so a read that raced a purchase is never cached.
type tierCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[sharedDomain.UserID]cacheEntry
	gens    map[sharedDomain.UserID]uint64
}

type cacheEntry struct {
	record   *domain.Entitlement
	loadedAt time.Time
}

func newTierCache(ttl time.Duration) *tierCache {
	return &tierCache{
		ttl:     ttl,
		entries: make(map[sharedDomain.UserID]cacheEntry),
		gens:    make(map[sharedDomain.UserID]uint64),
	}
}

func (c *tierCache) enabled() bool {
	return c.ttl > 0
}

func (c *tierCache) get(userID sharedDomain.UserID, now time.Time) (*domain.Entitlement, bool) {
	if !c.enabled() {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || now.Sub(entry.loadedAt) >= c.ttl {
		return nil, false
	}
	return entry.record, true
}

func (c *tierCache) generation(userID sharedDomain.UserID) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[userID]
}

// putIfCurrent caches record unless the user was invalidated after gen was
// taken. It reports whether the record was stored.
func (c *tierCache) putIfCurrent(userID sharedDomain.UserID, record *domain.Entitlement, gen uint64, now time.Time) bool {
	if !c.enabled() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return false
	}
	c.entries[userID] = cacheEntry{record: record, loadedAt: now}
	return true
}

func (c *tierCache) invalidate(userID sharedDomain.UserID) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.gens[userID]++
	c.mu.Unlock()
}

func (c *tierCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
