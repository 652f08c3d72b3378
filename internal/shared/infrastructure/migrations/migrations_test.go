package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database/sqlite"
)

func TestUpFiles_Ordered(t *testing.T) {
	sqliteFiles, err := upFiles(sqliteFS, "sqlite")
	require.NoError(t, err)
	postgresFiles, err := upFiles(postgresFS, "postgres")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sqlite/001_entitlements.up.sql",
		"sqlite/002_daily_quota.up.sql",
		"sqlite/003_catalog.up.sql",
	}, sqliteFiles)
	assert.Len(t, postgresFiles, len(sqliteFiles))
}

func TestRunSQLiteMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunSQLiteMigrations(ctx, db))
	require.NoError(t, RunSQLiteMigrations(ctx, db))

	for _, table := range []string{"entitlements", "daily_quota", "packages", "series", "series_chapters"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
