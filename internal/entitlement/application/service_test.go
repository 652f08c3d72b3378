package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	"github.com/felixgeelhaar/reelgate/internal/entitlement/infrastructure/persistence"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

var start = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type countingRepo struct {
	domain.Repository
	finds      atomic.Int32
	saves      atomic.Int32
	normalizes atomic.Int32
	err        error
	block      chan struct{}
}

func (r *countingRepo) FindByUserID(ctx context.Context, userID sharedDomain.UserID) (*domain.Entitlement, error) {
	r.finds.Add(1)
	if r.block != nil {
		<-r.block
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.FindByUserID(ctx, userID)
}

func (r *countingRepo) Save(ctx context.Context, e *domain.Entitlement) error {
	r.saves.Add(1)
	if r.err != nil {
		return r.err
	}
	return r.Repository.Save(ctx, e)
}

func (r *countingRepo) NormalizeLegacy(ctx context.Context, userID sharedDomain.UserID) (bool, error) {
	r.normalizes.Add(1)
	return r.Repository.NormalizeLegacy(ctx, userID)
}

// stallingRepo holds its first read open after the store has answered, until
// release is closed. Later reads pass straight through.
type stallingRepo struct {
	domain.Repository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newStallingRepo(inner domain.Repository) *stallingRepo {
	return &stallingRepo{Repository: inner, read: make(chan struct{}), release: make(chan struct{})}
}

func (r *stallingRepo) FindByUserID(ctx context.Context, userID sharedDomain.UserID) (*domain.Entitlement, error) {
	record, err := r.Repository.FindByUserID(ctx, userID)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return record, err
}

func newTestService(repo domain.Repository, clock sharedDomain.Clock, ttl time.Duration) *Service {
	return NewService(repo, clock, Config{CacheTTL: ttl}, observability.NewInMemoryMetrics(), nil)
}

func TestGetTier_NoRecordIsFree(t *testing.T) {
	svc := newTestService(persistence.NewInMemoryEntitlementRepository(), sharedDomain.NewFixedClock(start), 0)

	tier, err := svc.GetTier(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, tier)

	active, err := svc.IsActive(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRecordPurchase_ExpiresAfterThirtyDays(t *testing.T) {
	clock := sharedDomain.NewFixedClock(start)
	svc := newTestService(persistence.NewInMemoryEntitlementRepository(), clock, time.Minute)
	ctx := context.Background()

	record, err := svc.RecordPurchase(ctx, 5, domain.TierPro)
	require.NoError(t, err)
	assert.Equal(t, start.Add(30*24*time.Hour), record.ExpiresAt)

	active, err := svc.IsActive(ctx, 5)
	require.NoError(t, err)
	assert.True(t, active)

	clock.Set(record.ExpiresAt.Add(-time.Second))
	tier, err := svc.GetTier(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, tier)

	// Crossing expiry flips the tier even while the record is cached.
	clock.Set(record.ExpiresAt)
	tier, err = svc.GetTier(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, tier)
}

func TestRecordPurchase_NoStacking(t *testing.T) {
	clock := sharedDomain.NewFixedClock(start)
	repo := persistence.NewInMemoryEntitlementRepository()
	svc := newTestService(repo, clock, time.Minute)
	ctx := context.Background()

	_, err := svc.RecordPurchase(ctx, 8, domain.TierPro)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.RecordPurchase(ctx, 8, domain.TierUltra)
	require.NoError(t, err)

	stored, err := repo.FindByUserID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.TierUltra, stored.Tier)
	assert.Equal(t, clock.Now().Add(30*24*time.Hour), stored.ExpiresAt)
}

func TestRecordPurchase_InvalidatesCache(t *testing.T) {
	clock := sharedDomain.NewFixedClock(start)
	svc := newTestService(persistence.NewInMemoryEntitlementRepository(), clock, time.Hour)
	ctx := context.Background()

	tier, err := svc.GetTier(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, tier)

	_, err = svc.RecordPurchase(ctx, 3, domain.TierUltra)
	require.NoError(t, err)

	tier, err = svc.GetTier(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.TierUltra, tier)
}

func TestRecordPurchase_RejectsFree(t *testing.T) {
	svc := newTestService(persistence.NewInMemoryEntitlementRepository(), sharedDomain.NewFixedClock(start), 0)
	_, err := svc.RecordPurchase(context.Background(), 3, domain.TierFree)
	assert.ErrorIs(t, err, domain.ErrNotPurchasable)
}

func TestGetTier_CachesWithinTTL(t *testing.T) {
	clock := sharedDomain.NewFixedClock(start)
	repo := &countingRepo{Repository: persistence.NewInMemoryEntitlementRepository()}
	svc := newTestService(repo, clock, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.GetTier(ctx, 2)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), repo.finds.Load())

	clock.Advance(time.Minute)
	_, err := svc.GetTier(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.finds.Load())
}

func TestGetTier_CollapsesConcurrentMisses(t *testing.T) {
	repo := &countingRepo{Repository: persistence.NewInMemoryEntitlementRepository(), block: make(chan struct{})}
	svc := newTestService(repo, sharedDomain.NewFixedClock(start), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.GetTier(context.Background(), 11)
		}()
	}
	// Let the goroutines pile onto the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(repo.block)
	wg.Wait()

	assert.LessOrEqual(t, repo.finds.Load(), int32(2))
}

func TestGetTier_MigratesLegacyRecordOnce(t *testing.T) {
	inner := persistence.NewInMemoryEntitlementRepository()
	require.NoError(t, inner.Save(context.Background(), &domain.Entitlement{UserID: 6, ExpiresAt: start.Add(time.Hour)}))
	repo := &countingRepo{Repository: inner}
	svc := newTestService(repo, sharedDomain.NewFixedClock(start), 0)
	ctx := context.Background()

	tier, err := svc.GetTier(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.TierLegacyUltra, tier)
	assert.True(t, tier.Unlimited())

	_, err = svc.GetTier(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.normalizes.Load())
	assert.Zero(t, repo.saves.Load())

	stored, err := inner.FindByUserID(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.TierLegacyUltra, stored.Tier)
}

func TestGetTier_StoreError(t *testing.T) {
	repo := &countingRepo{Repository: persistence.NewInMemoryEntitlementRepository(), err: errors.New("down")}
	svc := newTestService(repo, sharedDomain.NewFixedClock(start), time.Minute)

	_, err := svc.GetTier(context.Background(), 1)
	require.ErrorIs(t, err, sharedDomain.ErrStoreUnavailable)
	assert.Zero(t, svc.cache.size())

	_, err = svc.Status(context.Background(), 1)
	assert.ErrorIs(t, err, sharedDomain.ErrStoreUnavailable)

	_, err = svc.RecordPurchase(context.Background(), 1, domain.TierPro)
	assert.ErrorIs(t, err, sharedDomain.ErrStoreUnavailable)
}

func TestGetTier_ReadRacingPurchaseIsNotCached(t *testing.T) {
	repo := newStallingRepo(persistence.NewInMemoryEntitlementRepository())
	svc := newTestService(repo, sharedDomain.NewFixedClock(start), time.Hour)
	ctx := context.Background()

	stale := make(chan domain.PlanTier, 1)
	go func() {
		tier, _ := svc.GetTier(ctx, 7)
		stale <- tier
	}()
	<-repo.read

	_, err := svc.RecordPurchase(ctx, 7, domain.TierUltra)
	require.NoError(t, err)

	// A lookup starting after the purchase must not join the stale read.
	tier, err := svc.GetTier(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.TierUltra, tier)

	close(repo.release)
	assert.Equal(t, domain.TierFree, <-stale)

	tier, err = svc.GetTier(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.TierUltra, tier)
}

func TestGetTier_LegacyWriteBackKeepsRacingPurchase(t *testing.T) {
	inner := persistence.NewInMemoryEntitlementRepository()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, &domain.Entitlement{UserID: 8, ExpiresAt: start.Add(time.Hour)}))
	repo := newStallingRepo(inner)
	svc := newTestService(repo, sharedDomain.NewFixedClock(start), time.Hour)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.GetTier(ctx, 8)
	}()
	<-repo.read

	_, err := svc.RecordPurchase(ctx, 8, domain.TierPro)
	require.NoError(t, err)
	close(repo.release)
	<-done

	stored, err := inner.FindByUserID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, stored.Tier)
	assert.Equal(t, start.Add(30*24*time.Hour), stored.ExpiresAt)

	tier, err := svc.GetTier(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, tier)
}

func TestGetTier_CancelledCallerDoesNotFailJoiners(t *testing.T) {
	repo := &countingRepo{Repository: persistence.NewInMemoryEntitlementRepository(), block: make(chan struct{})}
	svc := newTestService(repo, sharedDomain.NewFixedClock(start), time.Minute)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetTier(firstCtx, 12)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return repo.finds.Load() == 1 }, time.Second, time.Millisecond)

	joinerErr := make(chan error, 1)
	go func() {
		_, err := svc.GetTier(context.Background(), 12)
		joinerErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(repo.block)
	assert.NoError(t, <-joinerErr)
	assert.Equal(t, int32(1), repo.finds.Load())
}

func TestStatus(t *testing.T) {
	clock := sharedDomain.NewFixedClock(start)
	svc := newTestService(persistence.NewInMemoryEntitlementRepository(), clock, 0)
	ctx := context.Background()

	status, err := svc.Status(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, status.Tier)
	assert.Nil(t, status.ExpiresAt)

	_, err = svc.RecordPurchase(ctx, 9, domain.TierPro)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)

	status, err = svc.Status(ctx, 9)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, domain.TierPro, status.Tier)
	assert.Equal(t, 29*24*time.Hour, status.Remaining)
}
