package sales

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
)

const invoiceCounterName = "invoice"

// InvoiceIssuer hands out invoice numbers from a single global sequence. The
// number never resets; the date in the formatted string is presentation only.
type InvoiceIssuer interface {
	WithTx(tx *gorm.DB) InvoiceIssuer
	Next(ctx context.Context, at time.Time) (string, error)
}

type invoiceIssuer struct {
	db *gorm.DB
}

// NewInvoiceIssuer returns an issuer bound to the provided database.
func NewInvoiceIssuer(db *gorm.DB) InvoiceIssuer {
	return &invoiceIssuer{db: db}
}

func (i *invoiceIssuer) WithTx(tx *gorm.DB) InvoiceIssuer {
	if tx == nil {
		return i
	}
	return &invoiceIssuer{db: tx}
}

// Next increments the counter row atomically and formats the result. Two
// concurrent checkouts serialize on the row lock, so duplicates are impossible
// even across instances.
func (i *invoiceIssuer) Next(ctx context.Context, at time.Time) (string, error) {
	var value int64
	res := i.db.WithContext(ctx).Raw(
		"UPDATE invoice_counters SET value = value + 1, updated_at = ? WHERE name = ? RETURNING value",
		at.UTC(), invoiceCounterName,
	).Scan(&value)
	if res.Error != nil {
		return "", fmt.Errorf("incrementing invoice counter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Counter row missing (fresh database); seed it at 1.
		if err := i.db.WithContext(ctx).Create(&models.InvoiceCounter{
			Name:  invoiceCounterName,
			Value: 1,
		}).Error; err != nil {
			return "", fmt.Errorf("seeding invoice counter: %w", err)
		}
		value = 1
	}
	return FormatInvoiceNumber(at, value), nil
}

// FormatInvoiceNumber renders "INV-20260828-000042": the date the sale was
// committed plus the global sequence value.
func FormatInvoiceNumber(at time.Time, value int64) string {
	return fmt.Sprintf("INV-%s-%06d", at.UTC().Format("20060102"), value)
}
