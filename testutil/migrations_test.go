package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/migrations"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/testutil"
)

// migratedTables lists every table the migrations create.
var migratedTables = []string{"trips", "trip_timeline", "trip_comments", "trip_attachments", "notifications"}

// TestMigrations_UpAndDown applies every migration from a clean database,
// checks the tables, then rolls everything back.
func TestMigrations_UpAndDown(t *testing.T) {
	db := testutil.NewSQLDB(t)
	provider, err := migrations.NewProvider(db)
	require.NoError(t, err)
	ctx := context.Background()

	// Other packages' TestMain may already have migrated the shared database.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Source.Version)
	assert.Equal(t, int64(2), results[1].Source.Version)
	for _, table := range migratedTables {
		assert.True(t, tableExists(t, db, table), "table %q after up", table)
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range migratedTables {
		assert.False(t, tableExists(t, db, table), "table %q after down", table)
	}

	// Leave the schema in place for packages that run after this one.
	_, err = provider.Up(ctx)
	require.NoError(t, err)
}

func TestMigrations_StatusConstraint(t *testing.T) {
	require.NoError(t, testutil.Migrate(context.Background()))
	tx := testutil.NewTx(t)

	_, err := tx.Exec(context.Background(), `
		INSERT INTO trips (requester, destination, start_date, end_date, status)
		VALUES ('Alice', 'London', '2025-10-20', '2025-10-24', 'cancelled')`)

	assert.Error(t, err, "status outside the lifecycle must be rejected")
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}
