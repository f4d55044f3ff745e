package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

// Repository manages return rows and the returned-quantity counters on the
// original lines they reverse.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ret *models.Return) (*models.Return, error)
	FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Return, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
	ReturnedItems(ctx context.Context, referenceID uuid.UUID) ([]models.ReturnItem, error)
	TotalReturnAmount(ctx context.Context, referenceID uuid.UUID) (int64, error)
	HasReturns(ctx context.Context, referenceID uuid.UUID) (bool, error)
	AddSaleItemReturnedQty(ctx context.Context, saleItemID uuid.UUID, qty int) (bool, error)
}

// ListQuery bundles pagination and filters for return listings.
type ListQuery struct {
	Pagination  pagination.Params
	Type        string
	ReferenceID *uuid.UUID
}

// ListResult is one cursor page of returns.
type ListResult struct {
	Returns    []models.Return `json:"returns"`
	NextCursor string          `json:"next_cursor,omitempty"`
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

func (r *repository) Create(ctx context.Context, ret *models.Return) (*models.Return, error) {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	for i := range ret.Items {
		if ret.Items[i].ID == uuid.Nil {
			ret.Items[i].ID = uuid.New()
		}
		ret.Items[i].ReturnID = ret.ID
	}
	if err := r.db.WithContext(ctx).Create(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *repository) FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Return, error) {
	var ret models.Return
	q := sc.Apply(r.db.WithContext(ctx).Preload("Items"), "location_id")
	if err := q.First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

// List returns one cursor page of scoped returns, newest first.
func (r *repository) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := sc.Apply(r.db.WithContext(ctx).Model(&models.Return{}).Preload("Items"), "location_id")
	if query.Type != "" {
		qb = qb.Where("type = ?", query.Type)
	}
	if query.ReferenceID != nil {
		qb = qb.Where("reference_id = ?", *query.ReferenceID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Return
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Returns: rows, NextCursor: nextCursor}, nil
}

// ReturnedItems lists every line already returned against a reference.
func (r *repository) ReturnedItems(ctx context.Context, referenceID uuid.UUID) ([]models.ReturnItem, error) {
	var items []models.ReturnItem
	err := r.db.WithContext(ctx).
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.reference_id = ?", referenceID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// TotalReturnAmount sums the refunds already paid out against a reference.
func (r *repository) TotalReturnAmount(ctx context.Context, referenceID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Select("SUM(total_cents)").
		Where("reference_id = ?", referenceID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) HasReturns(ctx context.Context, referenceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Where("reference_id = ?", referenceID).
		Count(&count).Error
	return count > 0, err
}

// AddSaleItemReturnedQty bumps the sale line's returned counter only while it
// stays within the sold quantity. A false return means the guard rejected it.
func (r *repository) AddSaleItemReturnedQty(ctx context.Context, saleItemID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SaleItem{}).
		Where("id = ?", saleItemID).
		Where("returned_qty + ? <= qty", qty).
		Updates(map[string]any{
			"returned_qty": gorm.Expr("returned_qty + ?", qty),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
