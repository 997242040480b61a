// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
	"github.com/your-org/storefront-bff/internal/infrastructure/api"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
)

// respondError maps domain and upstream errors onto HTTP answers. Messages
// from the commerce API are passed through so the storefront can show them.
func respondError(c *gin.Context, err error) {
	var apiErr *api.Error

	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, checkout.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Session expired",
			"code":  "session_expired",
		})
	case errors.Is(err, checkout.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is empty",
			"code":  "cart_empty",
		})
	case errors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "insufficient_stock",
		})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, checkout.ErrConfirmationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": apiErr.Message,
		})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": apiErr.Message,
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "Request timeout",
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

// sessionKey returns the caller's session, answering 401 when it is missing
func sessionKey(c *gin.Context) (string, bool) {
	session, ok := middleware.GetSessionKeyFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return "", false
	}
	return session, true
}
