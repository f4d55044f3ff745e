package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

// StockUpdate is one immutable ledger entry. QtyDelta is signed and nonzero;
// the sum of a product's entries always equals its current quantity.
type StockUpdate struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	LocationID uuid.UUID         `gorm:"column:location_id;type:uuid;not null;index"`
	VendorID   *uuid.UUID        `gorm:"column:vendor_id;type:uuid"`
	CreatedBy  uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	QtyDelta   int               `gorm:"column:qty_delta;not null"`
	Source     enums.StockSource `gorm:"column:source;not null"`
	Note       *string           `gorm:"column:note"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}
