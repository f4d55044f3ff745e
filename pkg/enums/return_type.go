package enums

import "fmt"

// ReturnType distinguishes customer sale returns from vendor purchase returns.
type ReturnType string

const (
	ReturnTypeSale     ReturnType = "sale"
	ReturnTypePurchase ReturnType = "purchase"
)

var validReturnTypes = []ReturnType{
	ReturnTypeSale,
	ReturnTypePurchase,
}

func (r ReturnType) String() string {
	return string(r)
}

func (r ReturnType) IsValid() bool {
	for _, candidate := range validReturnTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseReturnType(value string) (ReturnType, error) {
	for _, candidate := range validReturnTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return type %q", value)
}
