package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/reelgate/internal/quota/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

type counterKey struct {
	user sharedDomain.UserID
	day  sharedDomain.Day
}

type counter struct {
	mu    sync.Mutex
	views int
}

// InMemoryTracker keeps counters in process memory. Each (user, day) key
// has its own lock, so increments for different users never contend.
type InMemoryTracker struct {
	mu       sync.Mutex
	counters map[counterKey]*counter
}

// NewInMemoryTracker creates an empty tracker.
func NewInMemoryTracker() *InMemoryTracker {
	return &InMemoryTracker{counters: make(map[counterKey]*counter)}
}

func (t *InMemoryTracker) counter(userID sharedDomain.UserID, day sharedDomain.Day, create bool) *counter {
	key := counterKey{user: userID, day: day}
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.counters[key]
	if !ok && create {
		c = &counter{}
		t.counters[key] = c
	}
	return c
}

func (t *InMemoryTracker) ConsumedToday(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	c := t.counter(userID, day, false)
	if c == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views, nil
}

func (t *InMemoryTracker) Increment(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	c := t.counter(userID, day, true)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views++
	return c.views, nil
}

func (t *InMemoryTracker) IncrementIfBelow(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (int, bool, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, false, err
	}
	c := t.counter(userID, day, true)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.views >= ceiling {
		return c.views, false, nil
	}
	c.views++
	return c.views, true, nil
}

var _ domain.Tracker = (*InMemoryTracker)(nil)
