//go:build integration

package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("murdhanno_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestMigrator_UpDown(t *testing.T) {
	db := startPostgres(t)
	path := filepath.Join("..", "..", "..", "migrations")

	m, err := New(db, path, zap.NewNop())
	require.NoError(t, err)

	st, err := m.Status()
	require.NoError(t, err)
	assert.Zero(t, st.Version)
	assert.Len(t, st.Pending, 5)

	require.NoError(t, m.Up())
	for _, table := range []string{
		"users", "login_attempts", "orders", "order_items", "print_jobs",
		"product_types", "size_groups", "size_group_sizes", "products",
		"courier_cities", "courier_zones", "shipments",
	} {
		assert.True(t, tableExists(t, db, table), table)
	}

	var first, second int64
	require.NoError(t, db.QueryRow("SELECT nextval('order_number_seq')").Scan(&first))
	require.NoError(t, db.QueryRow("SELECT nextval('order_number_seq')").Scan(&second))
	assert.Equal(t, first+1, second)

	st, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(20240301000005), st.Version)
	assert.False(t, st.Dirty)
	assert.Empty(t, st.Pending)

	// re-running is a no-op
	require.NoError(t, m.Up())

	require.NoError(t, m.Steps(-1))
	assert.False(t, tableExists(t, db, "shipments"))
	assert.True(t, tableExists(t, db, "products"))
	assert.True(t, tableExists(t, db, "orders"))

	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, db, "users"))
}
