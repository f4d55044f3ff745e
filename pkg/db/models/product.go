package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a sellable item at one location. Quantity is the authoritative
// on-hand count and is only ever written through the inventory ledger.
type Product struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string         `gorm:"column:name;not null"`
	SKU        *string        `gorm:"column:sku"`
	PriceCents int64          `gorm:"column:price_cents;not null"`
	Quantity   int            `gorm:"column:quantity;not null;default:0"`
	CategoryID uuid.UUID      `gorm:"column:category_id;type:uuid;not null;index"`
	LocationID uuid.UUID      `gorm:"column:location_id;type:uuid;not null;index"`
	Tags       pq.StringArray `gorm:"column:tags;type:text[]"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
