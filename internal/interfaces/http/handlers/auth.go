// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-bff/internal/socket"
)

// AuthHandler handles session endpoints. Login itself happens against the
// commerce API; the BFF only forgets what it holds for a session.
type AuthHandler struct {
	registry *cart.Registry
	hub      *socket.Hub
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(registry *cart.Registry, hub *socket.Hub) *AuthHandler {
	return &AuthHandler{
		registry: registry,
		hub:      hub,
	}
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}

	h.registry.Drop(session)
	h.hub.Broadcast(session, Event{Type: EventLogout})
	h.hub.CloseSession(session)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetSession handles GET /auth/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	_, active := h.registry.Lookup(identity.SessionKey)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user_id":     identity.UserID,
			"email":       identity.Email,
			"expires_at":  identity.ExpiresAt,
			"cart_active": active,
			"connections": h.hub.Count(identity.SessionKey),
		},
	})
}
