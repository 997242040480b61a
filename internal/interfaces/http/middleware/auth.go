// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

const (
	identityKey = "identity"
	tokenKey    = "bearer_token"
)

// AuthMiddleware requires a bearer token, derives the caller's session from
// it and forwards the token to the commerce API through the request context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		authenticate(c, jwtManager, tokenString)
	}
}

// QueryTokenAuth authenticates with a ?token= parameter. Browsers cannot set
// headers on websocket upgrades.
func QueryTokenAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			tokenString = auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Token required",
			})
			c.Abort()
			return
		}

		authenticate(c, jwtManager, tokenString)
	}
}

func authenticate(c *gin.Context, jwtManager *auth.JWTManager, tokenString string) {
	identity, err := jwtManager.Inspect(tokenString)
	if err != nil {
		message := "Invalid or expired token"
		if errors.Is(err, auth.ErrTokenExpired) {
			message = "Session expired"
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": message,
		})
		c.Abort()
		return
	}

	// Store caller information in context
	c.Set(identityKey, identity)
	c.Set(tokenKey, tokenString)
	c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), tokenString))

	c.Next()
}

// GetIdentityFromContext extracts the caller identity from gin context
func GetIdentityFromContext(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	return identity, ok
}

// GetSessionKeyFromContext extracts the caller's cart session key
func GetSessionKeyFromContext(c *gin.Context) (string, bool) {
	identity, ok := GetIdentityFromContext(c)
	if !ok {
		return "", false
	}
	return identity.SessionKey, true
}
