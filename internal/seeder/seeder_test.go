package seeder

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/internal/entity"
	"github.com/Additional-Code/orderdemo/internal/testutil"
)

func TestOrders_SeedsDefaultOnce(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewForDB(db, zap.NewNop())
	ctx := context.Background()

	n, err := s.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Orders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, testutil.CountOrders(t, db))

	var stored entity.Order
	require.NoError(t, db.NewSelect().Model(&stored).Limit(1).Scan(ctx))
	assert.NotZero(t, stored.ID)
	assert.Equal(t, "123", stored.Number)
	assert.True(t, decimal.NewFromInt(123).Equal(stored.Total))
	assert.Equal(t, "123 Test Street", stored.BillingAddress)
	assert.Equal(t, "456 Test Street", stored.ShippingAddress)
}

func TestOrders_SkipsWhenDataExists(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.InsertOrders(t, db, FakeOrder())
	s := NewForDB(db, nil)

	n, err := s.Orders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, testutil.CountOrders(t, db))
}

func TestFake(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewForDB(db, zap.NewNop())

	n, err := s.Fake(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, testutil.CountOrders(t, db))

	n, err = s.Fake(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFakeOrder(t *testing.T) {
	order := FakeOrder()

	assert.Zero(t, order.ID)
	assert.Regexp(t, `^ORD-[A-Z]{3}[0-9]{8}$`, order.Number)
	assert.True(t, order.Total.GreaterThanOrEqual(decimal.NewFromInt(5)))
	assert.True(t, order.Total.Equal(order.Total.Round(2)))
	assert.NotEmpty(t, order.BillingAddress)
	assert.NotEmpty(t, order.ShippingAddress)
}

func TestInsertDefault_ConcurrentSeedCountsAsSeeded(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.InsertOrders(t, db, DefaultOrder())
	s := NewForDB(db, zap.NewNop())

	n, err := s.withRepository(context.Background(), s.insertDefault)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, testutil.CountOrders(t, db))
}

func TestInsertDefault_OtherFailuresSurface(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := db.ExecContext(context.Background(), "DROP TABLE orders")
	require.NoError(t, err)
	s := NewForDB(db, zap.NewNop())

	_, err = s.withRepository(context.Background(), s.insertDefault)
	assert.Error(t, err)
}
