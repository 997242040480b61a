// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/domain/cart"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	registry *cart.Registry
}

// NewCartHandler creates a new cart handler
func NewCartHandler(registry *cart.Registry) *CartHandler {
	return &CartHandler{
		registry: registry,
	}
}

// updateQuantityBody is the body of PUT /cart/items/:productId. Quantities
// below one are accepted and ignored.
type updateQuantityBody struct {
	Quantity         int   `json:"quantity"`
	ProductVariantID *uint `json:"productVariantId,omitempty"`
}

// GetCart handles GET /cart. ?refresh=true forces a reload from the server.
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var err error
	if c.Query("refresh") == "true" {
		err = store.Load(c.Request.Context())
	} else {
		err = store.EnsureLoaded(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    store.Snapshot(),
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	if err := store.EnsureLoaded(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"count": store.ItemCount(),
			"total": store.Total(),
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	if err := store.EnsureLoaded(ctx); err != nil {
		respondError(c, err)
		return
	}

	if err := store.AddItem(ctx, req.ProductID, req.Quantity, req.ProductVariantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    store.Snapshot(),
	})
}

// UpdateCartItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var body updateQuantityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	if err := store.EnsureLoaded(ctx); err != nil {
		respondError(c, err)
		return
	}

	if err := store.UpdateQuantity(ctx, productID, body.Quantity, body.ProductVariantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    store.Snapshot(),
	})
}

// RemoveFromCart handles DELETE /cart/items/:productId?productVariantId=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var variantID *uint
	if raw := c.Query("productVariantId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid productVariantId",
			})
			return
		}
		v := uint(id)
		variantID = &v
	}

	ctx := c.Request.Context()
	if err := store.EnsureLoaded(ctx); err != nil {
		respondError(c, err)
		return
	}

	if err := store.RemoveItem(ctx, productID, variantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    store.Snapshot(),
	})
}

// ClearCart handles DELETE /cart by removing every line on the server
func (h *CartHandler) ClearCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := store.EnsureLoaded(ctx); err != nil {
		respondError(c, err)
		return
	}

	for _, item := range store.Items() {
		if err := store.RemoveItem(ctx, item.ProductID, item.ProductVariantID); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    store.Snapshot(),
	})
}

func (h *CartHandler) store(c *gin.Context) (*cart.Store, bool) {
	session, ok := sessionKey(c)
	if !ok {
		return nil, false
	}
	return h.registry.Get(session), true
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return uint(id), true
}
