// Package invoice renders order invoices as PDF documents.
package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	domain "github.com/blendaura/api/internal/domain"
)

const (
	defaultBrand  = "BlenDaura"
	defaultFooter = "Thank you for shopping with BlenDaura."
)

// amounts are stored in paise; invoices print rupees with Indian digit
// grouping. The core PDF fonts cannot encode the rupee sign, so "Rs" is used.
var inr = message.NewPrinter(language.MustParse("en-IN"))

// Renderer produces invoice PDFs for orders.
type Renderer struct {
	brand  string
	footer string
}

// RendererOption customises the rendered document.
type RendererOption func(*Renderer)

// WithBrand overrides the storefront name printed on the invoice.
func WithBrand(brand string) RendererOption {
	return func(r *Renderer) {
		if strings.TrimSpace(brand) != "" {
			r.brand = strings.TrimSpace(brand)
		}
	}
}

// WithFooter overrides the closing line.
func WithFooter(footer string) RendererOption {
	return func(r *Renderer) {
		if strings.TrimSpace(footer) != "" {
			r.footer = strings.TrimSpace(footer)
		}
	}
}

// NewRenderer constructs a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	renderer := &Renderer{
		brand:  defaultBrand,
		footer: defaultFooter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(renderer)
		}
	}
	return renderer
}

// Filename returns the download name for an order's invoice.
func Filename(order domain.Order) string {
	return fmt.Sprintf("invoice-%s.pdf", order.ID)
}

// Render produces the PDF bytes for the order.
func (r *Renderer) Render(order domain.Order) ([]byte, error) {
	if len(order.Items) == 0 {
		return nil, errors.New("invoice: order has no items")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 36

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(contentWidth, 12, r.brand, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(contentWidth, 9, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(18, pdf.GetY(), pageWidth-18, pdf.GetY())
	pdf.Ln(6)

	// Customer block on the left, order metadata on the right.
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth/2, 6, "Billed To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(contentWidth/2, 5, strings.Join([]string{
		order.Shipping.Name,
		order.Shipping.Email,
		order.Shipping.Phone,
		order.Shipping.Address,
	}, "\n"), "", "L", false)
	bottom := pdf.GetY()

	pdf.SetY(top)
	pdf.SetX(18 + contentWidth/2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth/2, 6, "Order Details", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Order No: %s", order.OrderNumber),
		fmt.Sprintf("Date: %s", order.CreatedAt.Format("02 Jan 2006")),
		fmt.Sprintf("Payment: %s (%s)", order.PaymentMethod, order.PaymentStatus),
	} {
		pdf.SetX(18 + contentWidth/2)
		pdf.CellFormat(contentWidth/2, 5, line, "", 1, "R", false, 0, "")
	}
	if pdf.GetY() > bottom {
		bottom = pdf.GetY()
	}
	pdf.SetY(bottom + 8)

	// Items table.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(12, 7, "No.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(contentWidth-92, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(18, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(31, 7, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(31, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for idx, item := range order.Items {
		amount := item.UnitPrice * int64(item.Quantity)
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", idx+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(contentWidth-92, 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(18, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(31, 7, FormatAmount(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(31, 7, FormatAmount(amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth-31, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(31, 8, FormatAmount(order.Total), "1", 1, "R", false, 0, "")

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentWidth, 6, r.footer, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatAmount renders a paise amount as rupees with Indian digit grouping,
// e.g. 12345678 becomes "Rs 1,23,456.78".
func FormatAmount(paise int64) string {
	rupees := float64(paise) / 100
	return inr.Sprintf("Rs %v", number.Decimal(rupees,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}
