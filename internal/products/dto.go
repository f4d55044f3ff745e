package products

import (
	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

// CreateProductInput captures the fields a manager supplies for a new product.
// Initial stock arrives through the ledger so the opening quantity is audited
// like any other movement.
type CreateProductInput struct {
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	SKU             *string  `json:"sku,omitempty" validate:"omitempty,max=64"`
	PriceCents      int64    `json:"price_cents" validate:"gte=0"`
	CategoryID      string   `json:"category_id" validate:"required,uuid"`
	Tags            []string `json:"tags,omitempty" validate:"max=20,dive,min=1,max=40"`
	InitialQuantity int      `json:"initial_quantity" validate:"gte=0"`
}

// UpdateProductInput carries partial edits. Quantity is deliberately absent:
// stock moves only through the ledger.
type UpdateProductInput struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	SKU        *string  `json:"sku,omitempty" validate:"omitempty,max=64"`
	PriceCents *int64   `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	CategoryID *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// AdjustStockInput is a manual signed correction.
type AdjustStockInput struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	QtyDelta  int     `json:"qty_delta" validate:"required"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ListFilters narrows product listings.
type ListFilters struct {
	Query      string
	CategoryID *uuid.UUID
	Tag        string
	ActiveOnly bool
}

// ListQuery bundles scope-independent listing inputs.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one page of products.
type ListResult struct {
	Products   []models.Product
	NextCursor string
}
