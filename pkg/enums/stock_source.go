package enums

import "fmt"

// StockSource names the operation that produced an inventory delta.
type StockSource string

const (
	StockSourceCart        StockSource = "cart"
	StockSourceSale        StockSource = "sale"
	StockSourceReturn      StockSource = "return"
	StockSourcePurchase    StockSource = "purchase"
	StockSourceAdjustment  StockSource = "adjustment"
	StockSourceCartRelease StockSource = "cart_release"
)

var validStockSources = []StockSource{
	StockSourceCart,
	StockSourceSale,
	StockSourceReturn,
	StockSourcePurchase,
	StockSourceAdjustment,
	StockSourceCartRelease,
}

func (s StockSource) String() string {
	return string(s)
}

func (s StockSource) IsValid() bool {
	for _, candidate := range validStockSources {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseStockSource(value string) (StockSource, error) {
	for _, candidate := range validStockSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock source %q", value)
}
