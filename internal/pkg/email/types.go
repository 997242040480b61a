// internal/pkg/email/types.go
package email

import "github.com/your-org/storefront-bff/internal/domain/checkout"

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// OrderConfirmationData is rendered into the order confirmation email
type OrderConfirmationData struct {
	ShopName     string
	ShopEmail    string
	ShopWebsite  string
	Recipient    string
	PlacedAt     string
	Confirmation *checkout.Confirmation
}
