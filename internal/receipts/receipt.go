// Package receipts renders the plain-text slip handed to the customer.
package receipts

import (
	"fmt"
	"strings"

	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/money"
)

// width matches an 80mm thermal printer at the default font.
const width = 40

// Renderer formats committed sales as printable receipts.
type Renderer struct {
	business config.BusinessConfig
}

// NewRenderer builds a renderer with the business header burned in.
func NewRenderer(business config.BusinessConfig) *Renderer {
	return &Renderer{business: business}
}

// Render produces the full receipt text for a sale. The sale is an immutable
// snapshot, so rendering the same sale always yields the same slip.
func (r *Renderer) Render(sale *models.Sale) string {
	var b strings.Builder

	writeCentered(&b, r.business.Name)
	if r.business.Address != "" {
		writeCentered(&b, r.business.Address)
	}
	if r.business.Phone != "" {
		writeCentered(&b, "Tel: "+r.business.Phone)
	}
	if r.business.TaxID != "" {
		writeCentered(&b, "GSTIN: "+r.business.TaxID)
	}
	writeRule(&b)

	writePair(&b, "Invoice", sale.InvoiceNumber)
	writePair(&b, "Date", sale.CreatedAt.Format("02 Jan 2006 15:04"))
	writePair(&b, "Payment", strings.ToUpper(sale.PaymentMethod.String()))
	writeRule(&b)

	for _, item := range sale.Items {
		b.WriteString(item.Name)
		b.WriteByte('\n')
		qtyLine := fmt.Sprintf("  %d x %s", item.Qty, money.FormatCents(item.UnitPriceCents))
		writePair(&b, qtyLine, money.FormatCents(item.TotalCents))
	}
	writeRule(&b)

	writePair(&b, "Subtotal", money.FormatCents(sale.SubtotalCents))
	writePair(&b, "CGST", money.FormatCents(sale.CGSTCents))
	writePair(&b, "SGST", money.FormatCents(sale.SGSTCents))
	writePair(&b, "TOTAL", money.FormatCents(sale.TotalCents))
	writeRule(&b)

	writeCentered(&b, "Thank you for your purchase!")
	return b.String()
}

// writePair prints a label left-aligned and a value right-aligned on one line.
func writePair(b *strings.Builder, label, value string) {
	gap := width - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(value)
	b.WriteByte('\n')
}

func writeCentered(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	pad := (width - len(text)) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text)
	b.WriteByte('\n')
}

func writeRule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", width))
	b.WriteByte('\n')
}
