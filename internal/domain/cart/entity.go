// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"
)

// Product is the product summary the commerce API embeds in cart lines
type Product struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	InStock  int     `json:"instock"`
}

// ProductVariant is the optional variant of a cart line
type ProductVariant struct {
	ID            uint   `json:"id"`
	StockQuantity int    `json:"stockQuantity"`
	SKU           string `json:"sku,omitempty"`
	Color         string `json:"color,omitempty"`
	Size          string `json:"size,omitempty"`
}

// LineItem is one row of the cart. A product may appear on several lines
// as long as the variants differ.
type LineItem struct {
	ProductID        uint            `json:"productId"`
	ProductVariantID *uint           `json:"productVariantId,omitempty"`
	Quantity         int             `json:"quantity"`
	Product          Product         `json:"product"`
	ProductVariant   *ProductVariant `json:"productVariant,omitempty"`
}

// Key returns the line's identity
func (l LineItem) Key() LineKey {
	return KeyOf(l.ProductID, l.ProductVariantID)
}

// Subtotal returns price times quantity
func (l LineItem) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// AvailableStock returns the stock that limits this line: the variant's
// when a variant is chosen, otherwise the product's.
func (l LineItem) AvailableStock() int {
	if l.ProductVariant != nil {
		return l.ProductVariant.StockQuantity
	}
	return l.Product.InStock
}

// LineKey identifies a cart line by product and optional variant
type LineKey struct {
	ProductID  uint
	VariantID  uint
	HasVariant bool
}

// KeyOf builds the key for a product and optional variant
func KeyOf(productID uint, variantID *uint) LineKey {
	if variantID == nil {
		return LineKey{ProductID: productID}
	}
	return LineKey{ProductID: productID, VariantID: *variantID, HasVariant: true}
}

func (k LineKey) String() string {
	if !k.HasVariant {
		return fmt.Sprintf("%d", k.ProductID)
	}
	return fmt.Sprintf("%d/%d", k.ProductID, k.VariantID)
}

// AddItemRequest is the body of the commerce API's add endpoint
type AddItemRequest struct {
	ProductID        uint  `json:"productId" binding:"required"`
	Quantity         int   `json:"quantity" binding:"required,min=1"`
	ProductVariantID *uint `json:"productVariantId,omitempty"`
}

// UpdateQuantityRequest is the body of the commerce API's update endpoint
type UpdateQuantityRequest struct {
	ProductID        uint  `json:"productId"`
	Quantity         int   `json:"quantity" binding:"required,min=1"`
	ProductVariantID *uint `json:"productVariantId,omitempty"`
}

// Snapshot is a consistent view of the cart with its derived values
type Snapshot struct {
	Items     []LineItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
	LoadedAt  time.Time  `json:"loaded_at"`
	Error     string     `json:"error,omitempty"`
}
