package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/internal/dto"
	"github.com/Additional-Code/orderdemo/internal/entity"
	service "github.com/Additional-Code/orderdemo/internal/service/order"
	"github.com/Additional-Code/orderdemo/internal/testutil"
)

type errorPayload struct {
	Success bool `json:"success"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestEcho(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()
	svc, err := service.New(db, zap.NewNop())
	require.NoError(t, err)

	e := echo.New()
	Register(e, NewHandler(svc))
	return e
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListRoutes_ReturnIdenticalArrays(t *testing.T) {
	db := testutil.NewDB(t)
	seeded := entity.NewOrder("123", decimal.NewFromInt(123), "123 Test Street", "456 Test Street")
	testutil.InsertOrders(t, db, seeded)
	e := newTestEcho(t, db)

	direct := doGet(e, "/ordersdbContext")
	viaRepo := doGet(e, "/ordersRepositoryPattern")

	require.Equal(t, http.StatusOK, direct.Code)
	require.Equal(t, http.StatusOK, viaRepo.Code)
	assert.JSONEq(t, direct.Body.String(), viaRepo.Body.String())

	var body []map[string]any
	require.NoError(t, json.Unmarshal(direct.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, float64(seeded.ID), body[0]["id"])
	assert.NotZero(t, body[0]["id"])
	assert.Equal(t, "123", body[0]["number"])
	assert.Equal(t, float64(123), body[0]["total"])
	assert.Equal(t, "123 Test Street", body[0]["billingAddress"])
	assert.Equal(t, "456 Test Street", body[0]["shippingAddress"])
}

func TestListRoutes_ProjectionCopiesFieldsExactly(t *testing.T) {
	db := testutil.NewDB(t)
	orders := []*entity.Order{
		entity.NewOrder("A-1", decimal.RequireFromString("10.25"), "1 Bill", "1 Ship"),
		entity.NewOrder("A-2", decimal.RequireFromString("0.01"), "2 Bill", "2 Ship"),
	}
	testutil.InsertOrders(t, db, orders...)
	e := newTestEcho(t, db)

	for _, path := range []string{"/ordersdbContext", "/ordersRepositoryPattern"} {
		rec := doGet(e, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var got []dto.OrderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), path)
		require.Len(t, got, len(orders), path)
		for i, want := range orders {
			assert.Equal(t, want.ID, got[i].ID, path)
			assert.Equal(t, want.Number, got[i].Number, path)
			assert.True(t, want.Total.Equal(got[i].Total), "%s: total %s != %s", path, want.Total, got[i].Total)
			assert.Equal(t, want.BillingAddress, got[i].BillingAddress, path)
			assert.Equal(t, want.ShippingAddress, got[i].ShippingAddress, path)
		}
	}
}

func TestListRoutes_EmptyTable(t *testing.T) {
	db := testutil.NewDB(t)
	e := newTestEcho(t, db)

	for _, path := range []string{"/ordersdbContext", "/ordersRepositoryPattern"} {
		rec := doGet(e, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
	}
}

func TestListRoutes_StorageFailure(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	e := newTestEcho(t, db)

	for _, path := range []string{"/ordersdbContext", "/ordersRepositoryPattern"} {
		mock.ExpectQuery(`SELECT (.+) FROM "orders"`).WillReturnError(errors.New("connection reset"))

		rec := doGet(e, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)

		var body errorPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), path)
		assert.False(t, body.Success)
		assert.Equal(t, "internal", body.Error.Kind)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	db := testutil.NewDB(t)
	order := entity.NewOrder("123", decimal.NewFromInt(123), "123 Test Street", "456 Test Street")
	testutil.InsertOrders(t, db, order)
	e := newTestEcho(t, db)

	t.Run("found", func(t *testing.T) {
		rec := doGet(e, "/orders/"+strconv.FormatInt(order.ID, 10))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool              `json:"success"`
			Data    dto.OrderResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, order.ID, body.Data.ID)
		assert.Equal(t, "123", body.Data.Number)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doGet(e, "/orders/999999")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var body errorPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not_found", body.Error.Kind)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := doGet(e, "/orders/abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body errorPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "bad_request", body.Error.Kind)
	})
}
