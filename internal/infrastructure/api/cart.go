// internal/infrastructure/api/cart.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/your-org/storefront-bff/internal/domain/cart"
)

// GetCart fetches the caller's cart lines
func (c *Client) GetCart(ctx context.Context) ([]cart.LineItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/cart/get", nil, &raw); err != nil {
		return nil, err
	}
	return decodeCartItems(raw)
}

// AddItem adds units of a product (and optional variant) to the cart
func (c *Client) AddItem(ctx context.Context, req cart.AddItemRequest) error {
	return c.do(ctx, http.MethodPost, "/cart/add", req, nil)
}

// UpdateQuantity sets the quantity of one cart line
func (c *Client) UpdateQuantity(ctx context.Context, req cart.UpdateQuantityRequest) error {
	return c.do(ctx, http.MethodPut, "/cart/update-quantity", req, nil)
}

// RemoveItem deletes one cart line
func (c *Client) RemoveItem(ctx context.Context, productID uint, variantID *uint) error {
	endpoint := "/cart/delete/" + strconv.FormatUint(uint64(productID), 10)
	if variantID != nil {
		q := url.Values{}
		q.Set("productVariantId", strconv.FormatUint(uint64(*variantID), 10))
		endpoint += "?" + q.Encode()
	}
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// decodeCartItems accepts a bare array of lines or an object wrapping it
func decodeCartItems(raw json.RawMessage) ([]cart.LineItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []cart.LineItem{}, nil
	}

	if raw[0] == '[' {
		var items []cart.LineItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Items     []cart.LineItem `json:"items"`
		CartItems []cart.LineItem `json:"cartItems"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	switch {
	case envelope.Items != nil:
		return envelope.Items, nil
	case envelope.CartItems != nil:
		return envelope.CartItems, nil
	case len(envelope.Data) > 0:
		return decodeCartItems(envelope.Data)
	default:
		return []cart.LineItem{}, nil
	}
}
