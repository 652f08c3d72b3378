package infrastructure

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/reelgate/internal/membership/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// StaticChecker answers from an in-process membership table. It backs local
// mode, where no bot API is configured.
type StaticChecker struct {
	mu       sync.RWMutex
	allowAll bool
	members  map[string]map[sharedDomain.UserID]bool
}

// NewStaticChecker creates a checker with no members.
func NewStaticChecker() *StaticChecker {
	return &StaticChecker{members: make(map[string]map[sharedDomain.UserID]bool)}
}

// NewAllowAllChecker creates a checker that reports every user as a member.
func NewAllowAllChecker() *StaticChecker {
	c := NewStaticChecker()
	c.allowAll = true
	return c
}

// Add records userID as a member of groupRef.
func (c *StaticChecker) Add(groupRef string, userID sharedDomain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.members[groupRef] == nil {
		c.members[groupRef] = make(map[sharedDomain.UserID]bool)
	}
	c.members[groupRef][userID] = true
}

// Remove drops userID from groupRef.
func (c *StaticChecker) Remove(groupRef string, userID sharedDomain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.members[groupRef], userID)
}

func (c *StaticChecker) IsMember(ctx context.Context, userID sharedDomain.UserID, groupRef string) (bool, error) {
	if c.allowAll {
		return true, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.members[groupRef][userID], nil
}

var _ domain.Checker = (*StaticChecker)(nil)
