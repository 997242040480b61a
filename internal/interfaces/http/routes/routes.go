// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

// Handlers bundles every handler the API routes to
type Handlers struct {
	Auth      *handlers.AuthHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Shipping  *handlers.ShippingHandler
	WebSocket *handlers.WebSocketHandler
}

// SetupRoutes registers all API v1 routes
func SetupRoutes(rg *gin.RouterGroup, h Handlers, jwtManager *auth.JWTManager) {
	SetupShippingRoutes(rg, h.Shipping)
	SetupAuthRoutes(rg, h.Auth, jwtManager)
	SetupCartRoutes(rg, h.Cart, h.WebSocket, jwtManager)
	SetupCheckoutRoutes(rg, h.Checkout, jwtManager)
}

// SetupShippingRoutes sets up the public address and shipping routes
func SetupShippingRoutes(rg *gin.RouterGroup, shippingHandler *handlers.ShippingHandler) {
	rg.GET("/shipping/quote", shippingHandler.GetQuote)
	rg.POST("/address/parse", shippingHandler.ParseAddress)
	rg.GET("/geocode", shippingHandler.Geocode)
}

// SetupAuthRoutes sets up session related routes
func SetupAuthRoutes(rg *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtManager *auth.JWTManager) {
	authGroup := rg.Group("/auth")
	authGroup.Use(middleware.AuthMiddleware(jwtManager))
	{
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/session", authHandler.GetSession)
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, cartHandler *handlers.CartHandler, wsHandler *handlers.WebSocketHandler, jwtManager *auth.JWTManager) {
	// Browsers cannot send headers on websocket upgrades
	rg.GET("/cart/ws", middleware.QueryTokenAuth(jwtManager), wsHandler.ServeWs)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.AuthMiddleware(jwtManager))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:productId", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, checkoutHandler *handlers.CheckoutHandler, jwtManager *auth.JWTManager) {
	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.AuthMiddleware(jwtManager))
	{
		checkoutGroup.POST("/quote", checkoutHandler.Quote)
		checkoutGroup.POST("", checkoutHandler.PlaceOrder)
		checkoutGroup.GET("/orders/:orderId/receipt", checkoutHandler.GetReceipt)
	}
}
