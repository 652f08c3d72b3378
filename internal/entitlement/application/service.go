package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// Config tunes the entitlement service.
type Config struct {
	PlanDuration time.Duration
	// CacheTTL of zero disables the tier cache.
	CacheTTL time.Duration
}

// PlanStatus summarizes a user's plan at a point in time.
type PlanStatus struct {
	UserID    sharedDomain.UserID `json:"user_id"`
	Tier      domain.PlanTier     `json:"tier"`
	Active    bool                `json:"active"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	Remaining time.Duration       `json:"remaining_ns"`
}

// Service provides plan lookups and purchase recording.
type Service struct {
	repo         domain.Repository
	clock        sharedDomain.Clock
	planDuration time.Duration
	cache        *tierCache
	group        singleflight.Group
	metrics      observability.Metrics
	logger       *slog.Logger
}

// NewService creates a new entitlement service.
func NewService(repo domain.Repository, clock sharedDomain.Clock, cfg Config, metrics observability.Metrics, logger *slog.Logger) *Service {
	if clock == nil {
		clock = sharedDomain.SystemClock{}
	}
	if cfg.PlanDuration <= 0 {
		cfg.PlanDuration = domain.DefaultPlanDuration
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		clock:        clock,
		planDuration: cfg.PlanDuration,
		cache:        newTierCache(cfg.CacheTTL),
		metrics:      metrics,
		logger:       logger,
	}
}

// GetTier returns the user's effective tier: free when no record exists or
// the plan has expired.
func (s *Service) GetTier(ctx context.Context, userID sharedDomain.UserID) (domain.PlanTier, error) {
	record, err := s.load(ctx, userID)
	if err != nil {
		return domain.TierFree, err
	}
	return record.EffectiveTier(s.clock.Now()), nil
}

// IsActive reports whether the user is on a paid tier right now.
func (s *Service) IsActive(ctx context.Context, userID sharedDomain.UserID) (bool, error) {
	tier, err := s.GetTier(ctx, userID)
	if err != nil {
		return false, err
	}
	return tier != domain.TierFree, nil
}

// RecordPurchase sets the user's tier with a fresh expiry of now plus the
// plan duration. Earlier purchases are overwritten, never extended.
func (s *Service) RecordPurchase(ctx context.Context, userID sharedDomain.UserID, tier domain.PlanTier) (*domain.Entitlement, error) {
	record, err := domain.NewPurchase(userID, tier, s.clock.Now(), s.planDuration)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: save entitlement: %v", sharedDomain.ErrStoreUnavailable, err)
	}
	s.Invalidate(userID)

	s.metrics.Counter(observability.MetricPaymentsRecorded, 1, observability.T("tier", tier.String()))
	s.logger.Info("plan purchase recorded",
		observability.UserIDKey, userID.String(),
		"tier", tier.String(),
		"expires_at", record.ExpiresAt,
	)
	return record, nil
}

// Status returns the user's plan summary.
func (s *Service) Status(ctx context.Context, userID sharedDomain.UserID) (PlanStatus, error) {
	record, err := s.load(ctx, userID)
	if err != nil {
		return PlanStatus{}, err
	}
	now := s.clock.Now()
	status := PlanStatus{
		UserID:    userID,
		Tier:      record.EffectiveTier(now),
		Active:    record.IsActive(now),
		Remaining: record.Remaining(now),
	}
	if record != nil {
		expiresAt := record.ExpiresAt
		status.ExpiresAt = &expiresAt
	}
	return status, nil
}

// Invalidate drops any cached record for the user. A lookup already in
// flight is detached so later callers start a fresh read.
func (s *Service) Invalidate(userID sharedDomain.UserID) {
	s.cache.invalidate(userID)
	s.group.Forget(userID.String())
}

// load returns the user's record via the cache. Concurrent misses for the
// same user share one repository read, which runs detached from any single
// caller's cancellation; each caller still stops waiting when its own ctx is
// done. Legacy records are normalized here, with a conditional write-back
// that cannot overwrite a purchase made after the read.
func (s *Service) load(ctx context.Context, userID sharedDomain.UserID) (*domain.Entitlement, error) {
	if record, ok := s.cache.get(userID, s.clock.Now()); ok {
		s.metrics.Counter(observability.MetricTierCacheHits, 1)
		return record, nil
	}
	s.metrics.Counter(observability.MetricTierCacheMisses, 1)

	readCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(userID.String(), func() (any, error) {
		gen := s.cache.generation(userID)
		record, err := s.repo.FindByUserID(readCtx, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: find entitlement: %v", sharedDomain.ErrStoreUnavailable, err)
		}
		if record.IsLegacy() {
			changed, err := s.repo.NormalizeLegacy(readCtx, userID)
			if err != nil {
				return nil, fmt.Errorf("%w: migrate legacy entitlement: %v", sharedDomain.ErrStoreUnavailable, err)
			}
			record.Normalize()
			if changed {
				s.logger.Info("migrated legacy entitlement",
					observability.UserIDKey, userID.String(),
					"expires_at", record.ExpiresAt,
				)
			}
		}
		s.cache.putIfCurrent(userID, record, gen, s.clock.Now())
		return record, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		record, _ := res.Val.(*domain.Entitlement)
		return record, nil
	}
}
