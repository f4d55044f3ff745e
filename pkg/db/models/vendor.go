package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor supplies stock to a location.
type Vendor struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Phone      *string   `gorm:"column:phone"`
	Address    *string   `gorm:"column:address"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null;index"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
