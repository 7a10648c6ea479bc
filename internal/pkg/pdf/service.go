// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config config.InvoiceConfig
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg.Invoice,
		now:    time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Currency      string
	Company       config.InvoiceConfig
}

// InvoiceNumber derives a stable, human-readable number from the order id
func InvoiceNumber(o *order.Order) string {
	return "INV-" + strings.ToUpper(strings.ReplaceAll(o.ID.String(), "-", "")[:10])
}

// GenerateInvoice renders the order as a PDF
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML produces the invoice markup
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         o,
		Currency:      s.config.Currency,
		Company:       s.config,
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(invoiceHTML))

const invoiceHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-info { text-align: right; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .totals { float: right; width: 320px; }
        .totals table { width: 100%; border-collapse: collapse; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.Company.CompanyName}}</h1>
            <p>{{.Company.CompanyAddress}}</p>
            <p>Phone: {{.Company.CompanyPhone}}</p>
            <p>Email: {{.Company.CompanyEmail}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order Date:</strong> {{.Order.CreatedAt.Format "January 2, 2006"}}</p>
            <p><strong>Status:</strong> {{.Order.Status}}</p>
            <p><strong>Payment:</strong> {{.Order.PaymentMethod}}</p>
        </div>
    </div>

    <div>
        <div class="section-title">Ship To:</div>
        {{with .Order.CustomerName}}<p><strong>{{.}}</strong></p>{{end}}
        <p>{{.Order.ShippingAddress}}</p>
        <p>Phone: {{.Order.Phone}}</p>
        {{with .Order.TrackingNumber}}<p>Tracking: {{.}}</p>{{end}}
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="num">Qty</th>
                <th class="num">Unit Price ({{.Currency}})</th>
                <th class="num">Total ({{.Currency}})</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{if .ProductName}}{{deref .ProductName}}{{else}}{{.ProductID}}{{end}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{money .LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td>Subtotal:</td><td class="num">{{money .Order.Subtotal}}</td></tr>
            {{if .Order.DiscountAmount.IsPositive}}
            <tr><td>Discount{{with .Order.CouponCode}} ({{.}}){{end}}:</td><td class="num">-{{money .Order.DiscountAmount}}</td></tr>
            {{end}}
            <tr class="total-row"><td>Total:</td><td class="num">{{.Currency}} {{money .Order.TotalAmount}}</td></tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your business!</p>
        <p>If you have any questions about this invoice, please contact us at {{.Company.CompanyEmail}} or {{.Company.CompanyPhone}}</p>
    </div>
</body>
</html>
`
