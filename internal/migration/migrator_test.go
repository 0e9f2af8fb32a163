package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

func openSQLite(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqldb.SetMaxIdleConns(4)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *bun.DB, table string) bool {
	t.Helper()
	var count int
	err := db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(context.Background(), &count)
	require.NoError(t, err)
	return count > 0
}

func TestMigrator_UpAndDown(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	mig, err := NewForDB(db, "sqlite", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, mig.Up(ctx))
	assert.True(t, tableExists(t, db, "orders"))

	// Re-running is a no-op.
	require.NoError(t, mig.Up(ctx))

	require.NoError(t, mig.Down(ctx, 0, false))
	assert.False(t, tableExists(t, db, "orders"))
}

func TestMigrator_DownAll(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	mig, err := NewForDB(db, "sqlite3", nil)
	require.NoError(t, err)

	require.NoError(t, mig.Up(ctx))
	require.NoError(t, mig.Down(ctx, 0, true))
	assert.False(t, tableExists(t, db, "orders"))
}

func TestGooseDialect(t *testing.T) {
	cases := map[string][2]string{
		"postgres": {"postgres", "postgres"},
		"pg":       {"postgres", "postgres"},
		"mysql":    {"mysql", "mysql"},
		"sqlite":   {"sqlite3", "sqlite"},
	}
	for driver, want := range cases {
		dialect, dir, err := gooseDialect(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, want[0], dialect, driver)
		assert.Equal(t, want[1], dir, driver)
	}

	_, _, err := gooseDialect("oracle")
	assert.Error(t, err)
}
