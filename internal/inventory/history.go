package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

// HistoryQuery bundles pagination and filters for ledger listings.
type HistoryQuery struct {
	Pagination pagination.Params
	ProductID  *uuid.UUID
	Source     string
}

// HistoryResult is one cursor page of ledger entries.
type HistoryResult struct {
	Updates    []models.StockUpdate `json:"stock_updates"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// History reads the stock ledger. Entries are immutable, so this side never
// needs a transaction.
type History interface {
	List(ctx context.Context, sc scope.Scope, query HistoryQuery) (*HistoryResult, error)
}

type history struct {
	db *gorm.DB
}

// NewHistory returns a ledger reader bound to the provided database.
func NewHistory(db *gorm.DB) History {
	return &history{db: db}
}

// List returns one cursor page of scoped ledger entries, newest first.
func (h *history) List(ctx context.Context, sc scope.Scope, query HistoryQuery) (*HistoryResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := sc.Apply(h.db.WithContext(ctx).Model(&models.StockUpdate{}), "location_id")
	if query.ProductID != nil {
		qb = qb.Where("product_id = ?", *query.ProductID)
	}
	if query.Source != "" {
		qb = qb.Where("source = ?", query.Source)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StockUpdate
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &HistoryResult{Updates: rows, NextCursor: nextCursor}, nil
}
