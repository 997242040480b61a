// internal/infrastructure/api/order.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// OrderRequest is the body of the order submission endpoint
type OrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	Note            string `json:"note,omitempty"`
}

// PaymentRequest is the body of the payment creation endpoint
type PaymentRequest struct {
	OrderID        string  `json:"orderId"`
	PaymentMethod  string  `json:"paymentMethod"`
	Amount         float64 `json:"amount"`
	PaymentGateway string  `json:"paymentGateway,omitempty"`
}

// SubmitOrder turns the caller's server-side cart into an order and returns
// its ID. The server checks availability and empties the cart.
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (string, error) {
	var resp struct {
		OrderID json.RawMessage `json:"orderId"`
	}
	if err := c.do(ctx, http.MethodPost, "/Order/", req, &resp); err != nil {
		return "", err
	}

	id := orderID(resp.OrderID)
	if id == "" {
		return "", errors.New("order submission returned no order id")
	}
	return id, nil
}

// CreatePayment records a payment for an order
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/payment/create", req, nil)
}

// orderID accepts both numeric and string IDs
func orderID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
