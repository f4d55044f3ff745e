package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is an inbound stock receipt from a vendor. ReturnedQty accumulates
// as purchase returns are accepted and never exceeds Qty.
type Purchase struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	VendorID       uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index"`
	LocationID     uuid.UUID `gorm:"column:location_id;type:uuid;not null;index"`
	CreatedBy      uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	ReturnedQty    int       `gorm:"column:returned_qty;not null;default:0"`
	CostPriceCents int64     `gorm:"column:cost_price_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index"`
}
