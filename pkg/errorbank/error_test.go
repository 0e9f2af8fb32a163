package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{New(KindConflict, "dup"), http.StatusConflict},
		{NotFound("missing"), http.StatusNotFound},
		{New(KindUnprocessableEntity, "nope"), http.StatusUnprocessableEntity},
		{Unavailable("down"), http.StatusServiceUnavailable},
		{Internal("boom"), http.StatusInternalServerError},
		{New(Kind("other"), ""), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.StatusCode(), string(tc.err.Kind()))
	}

	var nilErr *AppError
	assert.Equal(t, http.StatusInternalServerError, nilErr.StatusCode())
	assert.Equal(t, KindInternal, nilErr.Kind())
}

func TestNew_EmptyMessageUsesKind(t *testing.T) {
	assert.Equal(t, "not_found", New(KindNotFound, "").Message())
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	appErr := From(cause)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, cause)

	known := NotFound("order not found")
	assert.Same(t, known, From(fmt.Errorf("lookup: %w", known)))
	assert.Nil(t, From(nil))
}

func TestOptions(t *testing.T) {
	cause := errors.New("root")
	appErr := BadRequest("invalid id",
		WithCause(cause),
		WithDetail("field", "id"),
		WithDetail("value", "abc"),
	)

	assert.Equal(t, "invalid id: root", appErr.Error())
	assert.Equal(t, "invalid id", appErr.Message())
	assert.Equal(t, map[string]any{"field": "id", "value": "abc"}, appErr.Details())
	assert.True(t, IsKind(fmt.Errorf("wrapped: %w", appErr), KindBadRequest))
	assert.False(t, IsKind(cause, KindBadRequest))
}
