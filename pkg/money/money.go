// Package money holds cents-based arithmetic for sale totals. All amounts are
// int64 paise/cents; decimals only appear transiently during tax math.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const basisPointsDenominator = 10000

// TaxBreakdown is the GST split applied to a sale subtotal. CGST and SGST are
// always equal and Total is exactly Subtotal + CGST + SGST.
type TaxBreakdown struct {
	SubtotalCents int64
	CGSTCents     int64
	SGSTCents     int64
	TotalCents    int64
}

// SplitTax applies the combined GST rate (in basis points) to a subtotal. The
// combined amount is halved before rounding so the two components cannot
// drift apart by a cent.
func SplitTax(subtotalCents int64, combinedRateBasisPoints int64) (TaxBreakdown, error) {
	if subtotalCents < 0 {
		return TaxBreakdown{}, fmt.Errorf("subtotal cannot be negative: %d", subtotalCents)
	}
	if combinedRateBasisPoints < 0 {
		return TaxBreakdown{}, fmt.Errorf("tax rate cannot be negative: %d", combinedRateBasisPoints)
	}

	half := decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromInt(combinedRateBasisPoints)).
		Div(decimal.NewFromInt(2 * basisPointsDenominator)).
		Round(0).
		IntPart()

	return TaxBreakdown{
		SubtotalCents: subtotalCents,
		CGSTCents:     half,
		SGSTCents:     half,
		TotalCents:    subtotalCents + 2*half,
	}, nil
}

// FormatCents renders a cents amount as a plain decimal string ("1234.50").
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
