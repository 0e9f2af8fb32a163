package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/orderdemo/pkg/errorbank"
)

// Envelope is the JSON shape of enveloped responses.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the client-visible part of an errorbank.AppError.
type ErrorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Builder writes JSON responses for one request. Success payloads are
// wrapped in an Envelope unless Bare is set; errors are always enveloped.
type Builder struct {
	ctx  echo.Context
	data any
	err  error
	bare bool
}

// New starts a response for ctx.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx}
}

// WithData sets the success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError switches the response to an error rendered through errorbank.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// Bare writes the success payload as-is.
func (b *Builder) Bare() *Builder {
	b.bare = true
	return b
}

// Build writes the response.
func (b *Builder) Build() error {
	if b.err != nil {
		appErr := errorbank.From(b.err)
		return b.ctx.JSON(appErr.StatusCode(), Envelope{
			Error: &ErrorBody{
				Kind:    string(appErr.Kind()),
				Message: appErr.Message(),
				Details: appErr.Details(),
			},
		})
	}
	if b.bare {
		return b.ctx.JSON(http.StatusOK, b.data)
	}
	return b.ctx.JSON(http.StatusOK, Envelope{Success: true, Data: b.data})
}
