package enums

// CartStatus tracks the reservation lifecycle of a cart.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusCommitted CartStatus = "committed"
	CartStatusAbandoned CartStatus = "abandoned"
)

func (c CartStatus) String() string {
	return string(c)
}

func (c CartStatus) IsValid() bool {
	switch c {
	case CartStatusActive, CartStatusCommitted, CartStatusAbandoned:
		return true
	default:
		return false
	}
}
