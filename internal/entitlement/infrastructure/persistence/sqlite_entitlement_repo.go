package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
)

// SQLiteEntitlementRepository implements domain.Repository with SQLite.
// Timestamps are stored as RFC3339 text in UTC.
type SQLiteEntitlementRepository struct {
	dbConn *sql.DB
}

// NewSQLiteEntitlementRepository creates a new repository.
func NewSQLiteEntitlementRepository(dbConn *sql.DB) *SQLiteEntitlementRepository {
	return &SQLiteEntitlementRepository{dbConn: dbConn}
}

// FindByUserID returns the user's record, or nil if none exists.
func (r *SQLiteEntitlementRepository) FindByUserID(ctx context.Context, userID sharedDomain.UserID) (*domain.Entitlement, error) {
	query := `
		SELECT user_id, COALESCE(tier, ''), expires_at, updated_at
		FROM entitlements
		WHERE user_id = ?
	`
	var (
		id        int64
		tier      string
		expiresAt string
		updatedAt string
	)
	if err := r.dbConn.QueryRowContext(ctx, query, int64(userID)).Scan(&id, &tier, &expiresAt, &updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	expires, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.Entitlement{
		UserID:    sharedDomain.UserID(id),
		Tier:      domain.PlanTier(tier),
		ExpiresAt: expires.UTC(),
		UpdatedAt: updated.UTC(),
	}, nil
}

// Save upserts the record.
func (r *SQLiteEntitlementRepository) Save(ctx context.Context, e *domain.Entitlement) error {
	query := `
		INSERT INTO entitlements (user_id, tier, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = excluded.tier,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`
	_, err := r.dbConn.ExecContext(ctx, query,
		int64(e.UserID),
		nullableTier(e.Tier),
		e.ExpiresAt.UTC().Format(time.RFC3339Nano),
		updatedAt(e).Format(time.RFC3339Nano),
	)
	return err
}

// NormalizeLegacy rewrites an empty tier to legacy_ultra, leaving any other row alone.
func (r *SQLiteEntitlementRepository) NormalizeLegacy(ctx context.Context, userID sharedDomain.UserID) (bool, error) {
	query := `
		UPDATE entitlements
		SET tier = ?, updated_at = ?
		WHERE user_id = ? AND (tier IS NULL OR tier = '')
	`
	res, err := r.dbConn.ExecContext(ctx, query,
		string(domain.TierLegacyUltra),
		time.Now().UTC().Format(time.RFC3339Nano),
		int64(userID),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ domain.Repository = (*SQLiteEntitlementRepository)(nil)
