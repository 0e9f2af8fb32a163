package order

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdemo/internal/dto"
	"github.com/Additional-Code/orderdemo/internal/presentation/http/response"
	service "github.com/Additional-Code/orderdemo/internal/service/order"
	"github.com/Additional-Code/orderdemo/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdemo/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/ordersdbContext", h.listFromContext)
	e.GET("/ordersRepositoryPattern", h.listFromRepository)
	e.GET("/orders/:id", h.getByID)
}

func (h *Handler) listFromContext(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listFromContext")
	defer span.End()

	orders, err := h.svc.ListFromContext(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.Bare().WithData(dto.NewOrderResponses(orders)).Build()
}

func (h *Handler) listFromRepository(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listFromRepository")
	defer span.End()

	orders, err := h.svc.ListFromRepository(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.Bare().WithData(dto.NewOrderResponses(orders)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithDetail("id", c.Param("id")))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(*order)).Build()
}
