package entity

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order represents a purchase order stored in the relational database.
// ID stays zero until the order has been added and saved.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID              int64           `bun:",pk,autoincrement"`
	Number          string          `bun:"number,notnull"`
	Total           decimal.Decimal `bun:"total,type:decimal(18,2),notnull"`
	BillingAddress  string          `bun:"billing_address,notnull"`
	ShippingAddress string          `bun:"shipping_address,notnull"`
}

// NewOrder builds an unsaved order.
func NewOrder(number string, total decimal.Decimal, billingAddress, shippingAddress string) *Order {
	return &Order{
		Number:          number,
		Total:           total,
		BillingAddress:  billingAddress,
		ShippingAddress: shippingAddress,
	}
}
