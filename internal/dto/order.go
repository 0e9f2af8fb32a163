package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdemo/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	Total           decimal.Decimal `json:"total"`
	BillingAddress  string          `json:"billingAddress"`
	ShippingAddress string          `json:"shippingAddress"`
}

// MarshalJSON writes total as a JSON number carrying the exact decimal digits.
func (r OrderResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID              int64       `json:"id"`
		Number          string      `json:"number"`
		Total           json.Number `json:"total"`
		BillingAddress  string      `json:"billingAddress"`
		ShippingAddress string      `json:"shippingAddress"`
	}{
		ID:              r.ID,
		Number:          r.Number,
		Total:           json.Number(r.Total.String()),
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
	})
}

// NewOrderResponse copies the fields of a single order.
func NewOrderResponse(order entity.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		Number:          order.Number,
		Total:           order.Total,
		BillingAddress:  order.BillingAddress,
		ShippingAddress: order.ShippingAddress,
	}
}

// NewOrderResponses projects a materialized order list. The result is never nil.
func NewOrderResponses(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}
