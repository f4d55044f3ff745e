package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

// Sale is an immutable committed transaction. Totals are integer cents and
// satisfy subtotal + cgst + sgst == total exactly.
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex"`
	LocationID    uuid.UUID           `gorm:"column:location_id;type:uuid;not null;index"`
	CreatedBy     uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	SubtotalCents int64               `gorm:"column:subtotal_cents;not null"`
	CGSTCents     int64               `gorm:"column:cgst_cents;not null"`
	SGSTCents     int64               `gorm:"column:sgst_cents;not null"`
	TotalCents    int64               `gorm:"column:total_cents;not null"`
	Items         []SaleItem          `gorm:"foreignKey:SaleID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

// SaleItem is a line snapshot taken at checkout. ReturnedQty accumulates as
// returns are accepted and never exceeds Qty.
type SaleItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	ReturnedQty    int       `gorm:"column:returned_qty;not null;default:0"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
}
