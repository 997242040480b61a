// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"vnd":      FormatVND,
	"subtotal": func(price float64, qty int) float64 { return price * float64(qty) },
}).Parse(receiptTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateReceipt renders the receipt of a placed order as PDF. It needs the
// wkhtmltopdf binary on PATH.
func (s *Service) GenerateReceipt(confirmation *checkout.Confirmation) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderReceiptHTML(confirmation)
	if err != nil {
		return nil, err
	}

	// Convert HTML to PDF
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderReceiptHTML renders the receipt page that GenerateReceipt converts
func (s *Service) RenderReceiptHTML(confirmation *checkout.Confirmation) (string, error) {
	data := ReceiptData{
		ReceiptNumber: "RC-" + confirmation.OrderID,
		PlacedAt:      confirmation.PlacedAt.In(vietnamTime).Format("02/01/2006 15:04"),
		Order:         confirmation,
		Company: CompanyInfo{
			Name:    s.config.Company.Name,
			Address: s.config.Company.Address,
			Phone:   s.config.Company.Phone,
			Email:   s.config.Company.Email,
			Website: s.config.Company.Website,
		},
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string                 `json:"receipt_number"`
	PlacedAt      string                 `json:"placed_at"`
	Order         *checkout.Confirmation `json:"order"`
	Company       CompanyInfo            `json:"company"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

var vietnamTime = time.FixedZone("ICT", 7*60*60)

// FormatVND formats an amount of dong with dot thousand separators, e.g.
// 1.250.000 ₫.
func FormatVND(amount interface{}) string {
	var v float64
	switch a := amount.(type) {
	case int64:
		v = float64(a)
	case int:
		v = float64(a)
	case float64:
		v = a
	}

	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + " ₫"
}

const receiptTemplate = `
<!DOCTYPE html>
<html lang="vi">
<head>
    <meta charset="UTF-8">
    <title>Hóa đơn {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 16px; color: #333; font-size: 12px; }
        .header { border-bottom: 2px solid #2c3e50; padding-bottom: 12px; margin-bottom: 16px; }
        .company-name { font-size: 20px; font-weight: bold; color: #2c3e50; }
        .meta p, .delivery p { margin: 2px 0; }
        .items-table { width: 100%; border-collapse: collapse; margin: 16px 0; }
        .items-table th { background: #f8f9fa; padding: 8px; text-align: left; border-bottom: 1px solid #ddd; }
        .items-table td { padding: 8px; border-bottom: 1px solid #eee; }
        .num { text-align: right; }
        .totals td { padding: 4px 8px; }
        .total-row td { font-weight: bold; font-size: 14px; border-top: 2px solid #2c3e50; }
        .footer { margin-top: 24px; text-align: center; color: #777; font-size: 10px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-name">{{.Company.Name}}</div>
        <div>{{.Company.Address}}</div>
        <div>{{.Company.Phone}} · {{.Company.Email}}</div>
    </div>

    <div class="meta">
        <p><strong>Số hóa đơn:</strong> {{.ReceiptNumber}}</p>
        <p><strong>Mã đơn hàng:</strong> {{.Order.OrderID}}</p>
        <p><strong>Ngày đặt:</strong> {{.PlacedAt}}</p>
        <p><strong>Thanh toán:</strong> {{.Order.PaymentMethod}}{{if .Order.PaymentGateway}} ({{.Order.PaymentGateway}}){{end}}</p>
    </div>

    <div class="delivery">
        <p><strong>Giao đến:</strong> {{.Order.Address}}</p>
        {{if .Order.Note}}<p><strong>Ghi chú:</strong> {{.Order.Note}}</p>{{end}}
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Sản phẩm</th>
                <th class="num">SL</th>
                <th class="num">Đơn giá</th>
                <th class="num">Thành tiền</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>
                    {{.Product.Name}}
                    {{with .ProductVariant}}<br><small>{{.Color}} {{.Size}}</small>{{end}}
                </td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{vnd .Product.Price}}</td>
                <td class="num">{{vnd (subtotal .Product.Price .Quantity)}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals" align="right">
        <tr><td>Tạm tính:</td><td class="num">{{vnd .Order.Subtotal}}</td></tr>
        <tr>
            <td>Phí vận chuyển{{if not .Order.FreeShipping}} ({{printf "%.1f" .Order.DistanceKm}} km){{end}}:</td>
            <td class="num">{{if .Order.FreeShipping}}Miễn phí{{else}}{{vnd .Order.ShippingFee}}{{end}}</td>
        </tr>
        <tr class="total-row"><td>Tổng cộng:</td><td class="num">{{vnd .Order.Amount}}</td></tr>
    </table>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Cảm ơn quý khách đã mua hàng!</p>
        <p>{{.Company.Website}}</p>
    </div>
</body>
</html>
`
