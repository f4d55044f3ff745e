package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

// CartRecord is an open basket. At most one active cart exists per user, and
// every unit in it is already subtracted from product stock (reserved).
type CartRecord struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	LocationID uuid.UUID        `gorm:"column:location_id;type:uuid;not null;index"`
	Status     enums.CartStatus `gorm:"column:status;not null;default:active"`
	Items      []CartItem       `gorm:"foreignKey:CartID"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
