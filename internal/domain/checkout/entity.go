// internal/domain/checkout/entity.go
package checkout

import (
	"time"

	"github.com/your-org/storefront-bff/internal/domain/cart"
)

// Request is what the storefront sends to place an order
type Request struct {
	Address        string `json:"address" binding:"required"`
	Note           string `json:"note"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
	PaymentGateway string `json:"payment_gateway,omitempty"`
	Email          string `json:"email" binding:"omitempty,email"`
}

// QuoteRequest asks for the shipping fee of an address
type QuoteRequest struct {
	Address string `json:"address" binding:"required"`
}

// Confirmation is the record of a placed order shown on the confirmation
// view and printed on the receipt.
type Confirmation struct {
	OrderID        string          `json:"order_id"`
	Address        string          `json:"address"`
	Note           string          `json:"note,omitempty"`
	Items          []cart.LineItem `json:"items"`
	Subtotal       float64         `json:"subtotal"`
	ShippingFee    int64           `json:"shipping_fee"`
	DistanceKm     float64         `json:"distance_km"`
	FreeShipping   bool            `json:"free_shipping"`
	Amount         float64         `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	PaymentGateway string          `json:"payment_gateway,omitempty"`
	Email          string          `json:"email,omitempty"`
	PlacedAt       time.Time       `json:"placed_at"`

	// Session owns the confirmation; receipts are only served to it
	Session string `json:"-"`
}

// ItemCount returns the number of units ordered
func (c *Confirmation) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
