package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := NewDatabase(ctx, DriverSQLite, ":memory:", zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RunMigrations(ctx))
	require.NoError(t, db.RunMigrations(ctx))

	var count int
	require.NoError(t, db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.HealthCheck(ctx))
}

func TestNewDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), "mysql", "dsn", zerolog.Nop())
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	sqlite := &Database{driver: DriverSQLite}
	pg := &Database{driver: DriverPostgres}

	q := "SELECT * FROM t WHERE a = $1 AND b = $2"
	assert.Equal(t, "SELECT * FROM t WHERE a = ?1 AND b = ?2", sqlite.Rebind(q))
	assert.Equal(t, q, pg.Rebind(q))
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}
