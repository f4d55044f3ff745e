package models

import "time"

// InvoiceCounter is a single-row global sequence incremented atomically at
// checkout. The row is keyed by name so future sequences can share the table.
type InvoiceCounter struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Value     int64     `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
