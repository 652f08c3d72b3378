package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/reelgate/internal/quota/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
)

// SQLiteTracker stores counters in the daily_quota table, keyed by the
// ISO date string of the day.
type SQLiteTracker struct {
	dbConn *sql.DB
}

// NewSQLiteTracker creates a new tracker.
func NewSQLiteTracker(dbConn *sql.DB) *SQLiteTracker {
	return &SQLiteTracker{dbConn: dbConn}
}

func (t *SQLiteTracker) ConsumedToday(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	query := `SELECT views FROM daily_quota WHERE user_id = ? AND day = ?`
	var views int
	if err := t.dbConn.QueryRowContext(ctx, query, int64(userID), day.String()).Scan(&views); err != nil {
		if database.IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get quota: %w", err)
	}
	return views, nil
}

func (t *SQLiteTracker) Increment(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	query := `
		INSERT INTO daily_quota (user_id, day, views)
		VALUES (?, ?, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET views = views + 1
		RETURNING views
	`
	var views int
	if err := t.dbConn.QueryRowContext(ctx, query, int64(userID), day.String()).Scan(&views); err != nil {
		return 0, fmt.Errorf("increment quota: %w", err)
	}
	return views, nil
}

func (t *SQLiteTracker) IncrementIfBelow(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (int, bool, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, false, err
	}
	if ceiling <= 0 {
		views, err := t.ConsumedToday(ctx, userID, day)
		return views, false, err
	}
	query := `
		INSERT INTO daily_quota (user_id, day, views)
		VALUES (?, ?, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET views = views + 1
		WHERE views < ?
		RETURNING views
	`
	var views int
	err := t.dbConn.QueryRowContext(ctx, query, int64(userID), day.String(), ceiling).Scan(&views)
	if database.IsNoRows(err) {
		current, err := t.ConsumedToday(ctx, userID, day)
		return current, false, err
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment quota: %w", err)
	}
	return views, true, nil
}

var _ domain.Tracker = (*SQLiteTracker)(nil)
