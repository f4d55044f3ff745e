package enums

import "fmt"

// RefundMethod is how a return was paid back to the customer.
type RefundMethod string

const (
	RefundMethodCash        RefundMethod = "cash"
	RefundMethodCard        RefundMethod = "card"
	RefundMethodStoreCredit RefundMethod = "store_credit"
)

var validRefundMethods = []RefundMethod{
	RefundMethodCash,
	RefundMethodCard,
	RefundMethodStoreCredit,
}

func (r RefundMethod) String() string {
	return string(r)
}

func (r RefundMethod) IsValid() bool {
	for _, candidate := range validRefundMethods {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseRefundMethod(value string) (RefundMethod, error) {
	for _, candidate := range validRefundMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund method %q", value)
}
