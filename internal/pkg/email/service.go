// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
	"github.com/your-org/storefront-bff/internal/pkg/pdf"
)

// ErrNoRecipient is returned when a confirmation carries no email address
var ErrNoRecipient = errors.New("no recipient address")

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Funcs(template.FuncMap{
	"vnd":      pdf.FormatVND,
	"subtotal": func(price float64, qty int) float64 { return price * float64(qty) },
}).Parse(orderConfirmationTemplate))

var vietnamTime = time.FixedZone("ICT", 7*60*60)

// Service sends order confirmation emails through the configured provider
type Service struct {
	config  config.EmailConfig
	company config.CompanyConfig
	client  *http.Client
	logger  logrus.FieldLogger
}

// NewService creates a new email service
func NewService(cfg config.EmailConfig, company config.CompanyConfig, logger logrus.FieldLogger) *Service {
	return &Service{
		config:  cfg,
		company: company,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Enabled reports whether a provider is configured
func (s *Service) Enabled() bool {
	return s.config.Provider != "" && s.config.Provider != "none"
}

// SendEmail sends an email using the configured provider
func (s *Service) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Provider {
	case "", "none":
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
		}).Debug("Email provider disabled, not sending")
		return nil
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	case "sendgrid":
		return s.sendSendGridEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// OrderPlaced mails the order confirmation to the shopper
func (s *Service) OrderPlaced(ctx context.Context, confirmation *checkout.Confirmation) error {
	if confirmation.Email == "" {
		return ErrNoRecipient
	}

	htmlContent, err := s.RenderOrderConfirmation(confirmation)
	if err != nil {
		return err
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{confirmation.Email},
		Subject:     fmt.Sprintf("Xác nhận đơn hàng #%s", confirmation.OrderID),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	})
}

// RenderOrderConfirmation renders the order confirmation email body
func (s *Service) RenderOrderConfirmation(confirmation *checkout.Confirmation) (string, error) {
	data := OrderConfirmationData{
		ShopName:     s.company.Name,
		ShopEmail:    s.company.Email,
		ShopWebsite:  s.company.Website,
		Recipient:    confirmation.Email,
		PlacedAt:     confirmation.PlacedAt.In(vietnamTime).Format("02/01/2006 15:04"),
		Confirmation: confirmation,
	}

	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", orderConfirmationTmpl.Name(), err)
	}
	return buf.String(), nil
}

func (s *Service) from() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html lang="vi">
<head>
    <meta charset="UTF-8">
    <title>{{.ShopName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #2c3e50;">{{.ShopName}}</h1>
        <p>Xin chào {{.Recipient}},</p>
        <p>Cảm ơn bạn đã đặt hàng. Đơn hàng <strong>#{{.Confirmation.OrderID}}</strong> đã được ghi nhận lúc {{.PlacedAt}}.</p>

        <table style="width: 100%; border-collapse: collapse;">
            {{range .Confirmation.Items}}
            <tr>
                <td style="padding: 6px 0; border-bottom: 1px solid #eee;">{{.Product.Name}} × {{.Quantity}}</td>
                <td style="padding: 6px 0; border-bottom: 1px solid #eee; text-align: right;">{{vnd (subtotal .Product.Price .Quantity)}}</td>
            </tr>
            {{end}}
            <tr><td>Tạm tính</td><td style="text-align: right;">{{vnd .Confirmation.Subtotal}}</td></tr>
            <tr>
                <td>Phí vận chuyển</td>
                <td style="text-align: right;">{{if .Confirmation.FreeShipping}}Miễn phí{{else}}{{vnd .Confirmation.ShippingFee}}{{end}}</td>
            </tr>
            <tr><td><strong>Tổng cộng</strong></td><td style="text-align: right;"><strong>{{vnd .Confirmation.Amount}}</strong></td></tr>
        </table>

        <p><strong>Giao đến:</strong> {{.Confirmation.Address}}</p>
        <p><strong>Thanh toán:</strong> {{.Confirmation.PaymentMethod}}</p>
        <hr>
        <p style="font-size: 12px; color: #666;">{{.ShopName}} · {{.ShopEmail}}{{if .ShopWebsite}} · {{.ShopWebsite}}{{end}}</p>
    </div>
</body>
</html>`
