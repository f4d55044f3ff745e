package cart

// AddItemInput adds units of one product to the caller's active cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

// UpdateItemInput sets the absolute quantity of a cart line. Zero removes
// the line and releases its reservation.
type UpdateItemInput struct {
	Qty int `json:"qty" validate:"min=0"`
}

// CheckoutInput commits the active cart as a sale.
type CheckoutInput struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}
