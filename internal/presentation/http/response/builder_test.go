package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdemo/pkg/errorbank"
)

func render(t *testing.T, build func(c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, build(c))
	return rec
}

func TestBuild_Envelope(t *testing.T) {
	rec := render(t, func(c echo.Context) error {
		return New(c).WithData(map[string]int{"id": 1}).Build()
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, rec.Body.String())
}

func TestBuild_Bare(t *testing.T) {
	rec := render(t, func(c echo.Context) error {
		return New(c).Bare().WithData([]int{}).Build()
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBuild_Errors(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		rec := render(t, func(c echo.Context) error {
			return New(c).Bare().WithError(errorbank.NotFound("order not found", errorbank.WithDetail("id", 7))).Build()
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t,
			`{"success":false,"error":{"kind":"not_found","message":"order not found","details":{"id":7}}}`,
			rec.Body.String())
	})

	t.Run("plain error hides cause", func(t *testing.T) {
		rec := render(t, func(c echo.Context) error {
			return New(c).WithError(errors.New("pq: password authentication failed")).Build()
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t,
			`{"success":false,"error":{"kind":"internal","message":"internal error"}}`,
			rec.Body.String())
	})
}
