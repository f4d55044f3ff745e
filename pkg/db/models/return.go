package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

// Return records goods coming back from a sale (customer refund) or going
// back to a vendor (purchase return).
type Return struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type         enums.ReturnType   `gorm:"column:type;not null"`
	ReferenceID  uuid.UUID          `gorm:"column:reference_id;type:uuid;not null;index"`
	LocationID   uuid.UUID          `gorm:"column:location_id;type:uuid;not null;index"`
	CreatedBy    uuid.UUID          `gorm:"column:created_by;type:uuid;not null"`
	RefundMethod enums.RefundMethod `gorm:"column:refund_method;not null"`
	Reason       *string            `gorm:"column:reason"`
	TotalCents   int64              `gorm:"column:total_cents;not null"`
	Items        []ReturnItem       `gorm:"foreignKey:ReturnID"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}

// ReturnItem points at the original line it reverses. RefItemID is the sale
// item id for sale returns, or the purchase id for purchase returns.
type ReturnItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID       uuid.UUID `gorm:"column:return_id;type:uuid;not null;index"`
	RefItemID      uuid.UUID `gorm:"column:ref_item_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
}
