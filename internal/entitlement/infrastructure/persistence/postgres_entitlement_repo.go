package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
)

// PostgresEntitlementRepository implements domain.Repository with PostgreSQL.
type PostgresEntitlementRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEntitlementRepository creates a new repository.
func NewPostgresEntitlementRepository(pool *pgxpool.Pool) *PostgresEntitlementRepository {
	return &PostgresEntitlementRepository{pool: pool}
}

// FindByUserID returns the user's record, or nil if none exists.
func (r *PostgresEntitlementRepository) FindByUserID(ctx context.Context, userID sharedDomain.UserID) (*domain.Entitlement, error) {
	query := `
		SELECT user_id, COALESCE(tier, ''), expires_at, updated_at
		FROM entitlements
		WHERE user_id = $1
	`
	var (
		id        int64
		tier      string
		expiresAt time.Time
		updatedAt time.Time
	)
	if err := r.pool.QueryRow(ctx, query, int64(userID)).Scan(&id, &tier, &expiresAt, &updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Entitlement{
		UserID:    sharedDomain.UserID(id),
		Tier:      domain.PlanTier(tier),
		ExpiresAt: expiresAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

// Save upserts the record.
func (r *PostgresEntitlementRepository) Save(ctx context.Context, e *domain.Entitlement) error {
	query := `
		INSERT INTO entitlements (user_id, tier, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, int64(e.UserID), nullableTier(e.Tier), e.ExpiresAt, updatedAt(e))
	return err
}

// NormalizeLegacy rewrites an empty tier to legacy_ultra, leaving any other row alone.
func (r *PostgresEntitlementRepository) NormalizeLegacy(ctx context.Context, userID sharedDomain.UserID) (bool, error) {
	query := `
		UPDATE entitlements
		SET tier = $1, updated_at = NOW()
		WHERE user_id = $2 AND (tier IS NULL OR tier = '')
	`
	tag, err := r.pool.Exec(ctx, query, string(domain.TierLegacyUltra), int64(userID))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

var _ domain.Repository = (*PostgresEntitlementRepository)(nil)
