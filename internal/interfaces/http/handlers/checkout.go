// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-bff/internal/pkg/pdf"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	registry *cart.Registry
	checkout *checkout.Service
	pdf      *pdf.Service
	logger   logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(registry *cart.Registry, svc *checkout.Service, pdfService *pdf.Service, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		registry: registry,
		checkout: svc,
		pdf:      pdfService,
		logger:   logger,
	}
}

// Quote handles POST /checkout/quote. The quote is remembered and charged
// when the order is placed to the same address.
func (h *CheckoutHandler) Quote(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}

	var req checkout.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := h.registry.Get(session)
	if err := store.EnsureLoaded(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	quote := h.checkout.Quote(c.Request.Context(), session, req.Address)
	subtotal := store.Total()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"shipping": quote,
			"subtotal": subtotal,
			"total":    subtotal + float64(quote.FeeVND),
		},
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}

	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Email == "" {
		if identity, ok := middleware.GetIdentityFromContext(c); ok {
			req.Email = identity.Email
		}
	}

	ctx := c.Request.Context()
	store := h.registry.Get(session)
	if err := store.EnsureLoaded(ctx); err != nil {
		respondError(c, err)
		return
	}

	confirmation, err := h.checkout.PlaceOrder(ctx, session, store, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    confirmation,
	})
}

// GetReceipt handles GET /checkout/orders/:orderId/receipt. ?format=pdf
// answers with the printable receipt.
func (h *CheckoutHandler) GetReceipt(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}

	confirmation, err := h.checkout.Receipt(c.Request.Context(), session, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") != "pdf" {
		c.JSON(http.StatusOK, gin.H{
			"data": confirmation,
		})
		return
	}

	buf, err := h.pdf.GenerateReceipt(confirmation)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", confirmation.OrderID).Error("Failed to render receipt")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", confirmation.OrderID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
