package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 ₫", FormatVND(int64(0)))
	assert.Equal(t, "20.000 ₫", FormatVND(int64(20000)))
	assert.Equal(t, "1.250.000 ₫", FormatVND(1250000))
	assert.Equal(t, "760.000 ₫", FormatVND(759999.6))
	assert.Equal(t, "-20.000 ₫", FormatVND(-20000))
	assert.Equal(t, "999 ₫", FormatVND(999.0))
}

func confirmation(freeShipping bool) *checkout.Confirmation {
	variantID := uint(3)
	c := &checkout.Confirmation{
		OrderID: "1024",
		Address: "Số 5 Lý Thái Tổ, Phường Suối Hoa, Tỉnh Bắc Ninh",
		Note:    "Giao giờ hành chính",
		Items: []cart.LineItem{
			{ProductID: 1, Quantity: 2, Product: cart.Product{Name: "Áo thun", Price: 150000}},
			{
				ProductID:        2,
				ProductVariantID: &variantID,
				Quantity:         1,
				Product:          cart.Product{Name: "Quần jean", Price: 420000},
				ProductVariant:   &cart.ProductVariant{ID: 3, Color: "Xanh", Size: "32"},
			},
		},
		Subtotal:      720000,
		ShippingFee:   50000,
		DistanceKm:    28.96,
		Amount:        770000,
		PaymentMethod: "COD",
		PlacedAt:      time.Date(2024, 5, 1, 3, 30, 0, 0, time.UTC),
	}
	if freeShipping {
		c.ShippingFee = 0
		c.FreeShipping = true
		c.Amount = 720000
	}
	return c
}

func TestRenderReceiptHTML(t *testing.T) {
	svc := NewService(&config.Config{Company: config.CompanyConfig{Name: "Cửa hàng Phúc Đồng", Email: "cskh@example.vn"}})

	html, err := svc.RenderReceiptHTML(confirmation(false))
	assert.NoError(t, err)

	for _, want := range []string{
		"Cửa hàng Phúc Đồng",
		"RC-1024",
		"01/05/2024 10:30",
		"Áo thun",
		"Xanh 32",
		"300.000 ₫",
		"720.000 ₫",
		"50.000 ₫",
		"(29.0 km)",
		"770.000 ₫",
		"Giao giờ hành chính",
	} {
		assert.Contains(t, html, want)
	}
	assert.False(t, strings.Contains(html, "Miễn phí"))
}

func TestRenderReceiptHTMLFreeShipping(t *testing.T) {
	svc := NewService(&config.Config{})

	html, err := svc.RenderReceiptHTML(confirmation(true))
	assert.NoError(t, err)
	assert.Contains(t, html, "Miễn phí")
	assert.False(t, strings.Contains(html, " km)"))
}

func TestRenderReceiptHTMLEscapesInput(t *testing.T) {
	c := confirmation(false)
	c.Note = `<script>alert(1)</script>`

	html, err := NewService(&config.Config{}).RenderReceiptHTML(c)
	assert.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"))
}
