package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

// Repository manages purchase receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error)
	FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Purchase, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
	AddReturnedQty(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

// ListQuery bundles pagination and filters for purchase listings.
type ListQuery struct {
	Pagination pagination.Params
	VendorID   *uuid.UUID
	ProductID  *uuid.UUID
}

// ListResult is one cursor page of purchases.
type ListResult struct {
	Purchases  []models.Purchase `json:"purchases"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *repository) FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	q := sc.Apply(r.db.WithContext(ctx), "location_id")
	if err := q.First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// List returns one cursor page of scoped purchases, newest first.
func (r *repository) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := sc.Apply(r.db.WithContext(ctx).Model(&models.Purchase{}), "location_id")
	if query.VendorID != nil {
		qb = qb.Where("vendor_id = ?", *query.VendorID)
	}
	if query.ProductID != nil {
		qb = qb.Where("product_id = ?", *query.ProductID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Purchase
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Purchases: rows, NextCursor: nextCursor}, nil
}

// AddReturnedQty bumps the returned counter only while it stays within the
// purchased quantity. A false return means the guard rejected the increment.
func (r *repository) AddReturnedQty(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Where("returned_qty + ? <= qty", qty).
		Updates(map[string]any{
			"returned_qty": gorm.Expr("returned_qty + ?", qty),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
