package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/reelgate/internal/quota/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
)

// PostgresTracker stores counters in the daily_quota table. Increments are
// single upsert statements, so the row lock serializes concurrent writers.
type PostgresTracker struct {
	pool *pgxpool.Pool
}

// NewPostgresTracker creates a new tracker.
func NewPostgresTracker(pool *pgxpool.Pool) *PostgresTracker {
	return &PostgresTracker{pool: pool}
}

func (t *PostgresTracker) ConsumedToday(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	query := `SELECT views FROM daily_quota WHERE user_id = $1 AND day = $2`
	var views int
	if err := t.pool.QueryRow(ctx, query, int64(userID), day.Start()).Scan(&views); err != nil {
		if database.IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get quota: %w", err)
	}
	return views, nil
}

func (t *PostgresTracker) Increment(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	query := `
		INSERT INTO daily_quota (user_id, day, views)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET views = daily_quota.views + 1
		RETURNING views
	`
	var views int
	if err := t.pool.QueryRow(ctx, query, int64(userID), day.Start()).Scan(&views); err != nil {
		return 0, fmt.Errorf("increment quota: %w", err)
	}
	return views, nil
}

func (t *PostgresTracker) IncrementIfBelow(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (int, bool, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, false, err
	}
	if ceiling <= 0 {
		views, err := t.ConsumedToday(ctx, userID, day)
		return views, false, err
	}
	// The WHERE on the conflict branch suppresses the update, and with it
	// the returned row, once the ceiling is reached.
	query := `
		INSERT INTO daily_quota (user_id, day, views)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET views = daily_quota.views + 1
		WHERE daily_quota.views < $3
		RETURNING views
	`
	var views int
	err := t.pool.QueryRow(ctx, query, int64(userID), day.Start(), ceiling).Scan(&views)
	if database.IsNoRows(err) {
		current, err := t.ConsumedToday(ctx, userID, day)
		return current, false, err
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment quota: %w", err)
	}
	return views, true, nil
}

var _ domain.Tracker = (*PostgresTracker)(nil)
