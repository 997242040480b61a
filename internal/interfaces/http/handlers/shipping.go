// internal/interfaces/http/handlers/shipping.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/domain/address"
	"github.com/your-org/storefront-bff/internal/domain/geo"
	"github.com/your-org/storefront-bff/internal/domain/shipping"
)

// ShippingHandler handles address parsing, geocoding and fee quotes
type ShippingHandler struct {
	shipping  *shipping.Service
	resolvers map[string]*geo.Resolver
	fallback  string
}

// NewShippingHandler creates a new shipping handler. resolvers are keyed by
// the ?strategy= value GET /geocode accepts; defaultStrategy names the one
// used when the parameter is absent.
func NewShippingHandler(svc *shipping.Service, resolvers map[string]*geo.Resolver, defaultStrategy string) *ShippingHandler {
	return &ShippingHandler{
		shipping:  svc,
		resolvers: resolvers,
		fallback:  defaultStrategy,
	}
}

type addressBody struct {
	Address string `json:"address" binding:"required"`
}

// GetQuote handles GET /shipping/quote?address=
func (h *ShippingHandler) GetQuote(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("address"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "address is required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": h.shipping.Quote(c.Request.Context(), raw),
	})
}

// ParseAddress handles POST /address/parse
func (h *ShippingHandler) ParseAddress(c *gin.Context) {
	var body addressBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": address.Parse(body.Address),
	})
}

// Geocode handles GET /geocode?address=&strategy=
func (h *ShippingHandler) Geocode(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("address"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "address is required",
		})
		return
	}

	name := c.DefaultQuery("strategy", h.fallback)
	resolver, ok := h.resolvers[name]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown strategy: " + name,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resolver.ResolveDetailed(c.Request.Context(), raw),
	})
}
