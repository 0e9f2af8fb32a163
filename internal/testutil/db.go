package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/internal/entity"
	"github.com/Additional-Code/orderdemo/internal/migration"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with migrations applied.
// The database lives until the test finishes.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxIdleConns(8)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// A shared in-memory database disappears with its last connection.
	keepAlive, err := sqldb.Conn(context.Background())
	if err != nil {
		t.Fatalf("pin sqlite connection: %v", err)
	}

	t.Cleanup(func() {
		_ = keepAlive.Close()
		_ = db.Close()
	})

	mig, err := migration.NewForDB(db, "sqlite", zap.NewNop())
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := mig.Up(context.Background()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	return db
}

// InsertOrders writes orders straight through bun, bypassing the unit of work.
func InsertOrders(t *testing.T, db *bun.DB, orders ...*entity.Order) {
	t.Helper()
	for _, order := range orders {
		if _, err := db.NewInsert().Model(order).Exec(context.Background()); err != nil {
			t.Fatalf("insert order %s: %v", order.Number, err)
		}
	}
}

// CountOrders returns the number of rows in the orders table.
func CountOrders(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*entity.Order)(nil)).Count(context.Background())
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}
