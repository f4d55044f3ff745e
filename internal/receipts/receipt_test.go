package receipts

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

func sampleSale() *models.Sale {
	return &models.Sale{
		ID:            uuid.New(),
		InvoiceNumber: "INV-20260828-000042",
		LocationID:    uuid.New(),
		CreatedBy:     uuid.New(),
		PaymentMethod: enums.PaymentMethodCash,
		SubtotalCents: 30000,
		CGSTCents:     750,
		SGSTCents:     750,
		TotalCents:    31500,
		Items: []models.SaleItem{
			{Name: "Basmati Rice 5kg", UnitPriceCents: 10000, Qty: 2, TotalCents: 20000},
			{Name: "Masala Chai 250g", UnitPriceCents: 10000, Qty: 1, TotalCents: 10000},
		},
		CreatedAt: time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC),
	}
}

func TestRenderIncludesHeaderAndTotals(t *testing.T) {
	renderer := NewRenderer(config.BusinessConfig{
		Name:    "Spice Route Stores",
		Address: "12 MG Road, Pune",
		TaxID:   "27AAAPL1234C1ZV",
		Phone:   "+91 98765 43210",
	})

	text := renderer.Render(sampleSale())

	assert.Contains(t, text, "Spice Route Stores")
	assert.Contains(t, text, "12 MG Road, Pune")
	assert.Contains(t, text, "GSTIN: 27AAAPL1234C1ZV")
	assert.Contains(t, text, "INV-20260828-000042")
	assert.Contains(t, text, "28 Aug 2026 14:30")
	assert.Contains(t, text, "CASH")
	assert.Contains(t, text, "Basmati Rice 5kg")
	assert.Contains(t, text, "2 x 100.00")
	assert.Contains(t, text, "300.00")
	assert.Contains(t, text, "7.50")
	assert.Contains(t, text, "315.00")
}

func TestRenderOmitsEmptyBusinessFields(t *testing.T) {
	renderer := NewRenderer(config.BusinessConfig{Name: "Franchise POS"})

	text := renderer.Render(sampleSale())

	assert.NotContains(t, text, "Tel:")
	assert.NotContains(t, text, "GSTIN:")
}

func TestRenderLinesFitPrinterWidth(t *testing.T) {
	renderer := NewRenderer(config.BusinessConfig{Name: "Franchise POS"})

	text := renderer.Render(sampleSale())
	for _, line := range strings.Split(text, "\n") {
		require.LessOrEqual(t, len(line), 40, "line too wide: %q", line)
	}
}

func TestRenderDeterministic(t *testing.T) {
	renderer := NewRenderer(config.BusinessConfig{Name: "Franchise POS"})
	sale := sampleSale()

	assert.Equal(t, renderer.Render(sale), renderer.Render(sale))
}
