package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// InMemoryEntitlementRepository is a process-local repository for tests and
// single-process deployments.
type InMemoryEntitlementRepository struct {
	mu      sync.RWMutex
	records map[sharedDomain.UserID]domain.Entitlement
}

// NewInMemoryEntitlementRepository creates an empty repository.
func NewInMemoryEntitlementRepository() *InMemoryEntitlementRepository {
	return &InMemoryEntitlementRepository{records: make(map[sharedDomain.UserID]domain.Entitlement)}
}

func (r *InMemoryEntitlementRepository) FindByUserID(ctx context.Context, userID sharedDomain.UserID) (*domain.Entitlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *InMemoryEntitlementRepository) Save(ctx context.Context, e *domain.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *e
	stored.UpdatedAt = updatedAt(e)
	r.records[e.UserID] = stored
	return nil
}

func (r *InMemoryEntitlementRepository) NormalizeLegacy(ctx context.Context, userID sharedDomain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[userID]
	if !ok || !e.IsLegacy() {
		return false, nil
	}
	e.Tier = domain.TierLegacyUltra
	e.UpdatedAt = time.Now().UTC()
	r.records[userID] = e
	return true, nil
}

var _ domain.Repository = (*InMemoryEntitlementRepository)(nil)

// nullableTier stores the empty legacy tier as NULL.
func nullableTier(tier domain.PlanTier) any {
	if tier == "" {
		return nil
	}
	return string(tier)
}

func updatedAt(e *domain.Entitlement) time.Time {
	if e.UpdatedAt.IsZero() {
		return time.Now().UTC()
	}
	return e.UpdatedAt.UTC()
}
