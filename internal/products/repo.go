package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

// Repository manages product persistence. Reads take an explicit scope so
// location visibility is decided by the caller, never by hidden state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
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

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update writes the catalog columns only. Quantity belongs to the ledger, so
// a stale read held across a concurrent stock movement must never clobber it.
func (r *repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	updates := map[string]any{
		"name":        product.Name,
		"sku":         product.SKU,
		"price_cents": product.PriceCents,
		"category_id": product.CategoryID,
		"tags":        product.Tags,
		"is_active":   product.IsActive,
	}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	var fresh models.Product
	if err := r.db.WithContext(ctx).First(&fresh, "id = ?", product.ID).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

func (r *repository) FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	q := sc.Apply(r.db.WithContext(ctx), "location_id")
	if err := q.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns one cursor page of scoped products, newest first.
func (r *repository) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := sc.Apply(r.db.WithContext(ctx).Model(&models.Product{}), "location_id")

	filter := query.Filters
	if filter.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		qb = qb.Where("is_active = ?", true)
	}
	if filter.Tag != "" {
		qb = qb.Where("? = ANY(tags)", filter.Tag)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Products: rows, NextCursor: nextCursor}, nil
}
