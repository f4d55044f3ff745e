package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

// Aggregate is one side of the reconciliation: either everything sold or
// everything refunded in a window.
type Aggregate struct {
	Count      int64
	TotalCents int64
	ItemQty    int64
}

// Repository runs the aggregate queries behind the dashboards.
type Repository interface {
	SalesAggregate(ctx context.Context, sc scope.Scope, from, to *time.Time) (Aggregate, error)
	SaleReturnsAggregate(ctx context.Context, sc scope.Scope, from, to *time.Time) (Aggregate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func applyWindow(q *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", *from)
	}
	if to != nil {
		q = q.Where(column+" < ?", *to)
	}
	return q
}

// SalesAggregate totals the committed sales in the window.
func (r *repository) SalesAggregate(ctx context.Context, sc scope.Scope, from, to *time.Time) (Aggregate, error) {
	var agg Aggregate

	q := sc.Apply(r.db.WithContext(ctx).Model(&models.Sale{}), "location_id")
	q = applyWindow(q, "created_at", from, to)
	var row struct {
		Count      int64
		TotalCents int64
	}
	if err := q.Select("COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS total_cents").Scan(&row).Error; err != nil {
		return agg, err
	}
	agg.Count = row.Count
	agg.TotalCents = row.TotalCents

	iq := r.db.WithContext(ctx).
		Model(&models.SaleItem{}).
		Joins("JOIN sales ON sales.id = sale_items.sale_id")
	iq = sc.Apply(iq, "sales.location_id")
	iq = applyWindow(iq, "sales.created_at", from, to)
	if err := iq.Select("COALESCE(SUM(sale_items.qty), 0)").Scan(&agg.ItemQty).Error; err != nil {
		return agg, err
	}
	return agg, nil
}

// SaleReturnsAggregate totals the sale-type returns in the window. Purchase
// returns are vendor-side and never count against revenue.
func (r *repository) SaleReturnsAggregate(ctx context.Context, sc scope.Scope, from, to *time.Time) (Aggregate, error) {
	var agg Aggregate

	q := sc.Apply(r.db.WithContext(ctx).Model(&models.Return{}), "location_id").
		Where("type = ?", enums.ReturnTypeSale)
	q = applyWindow(q, "created_at", from, to)
	var row struct {
		Count      int64
		TotalCents int64
	}
	if err := q.Select("COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS total_cents").Scan(&row).Error; err != nil {
		return agg, err
	}
	agg.Count = row.Count
	agg.TotalCents = row.TotalCents

	iq := r.db.WithContext(ctx).
		Model(&models.ReturnItem{}).
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.type = ?", enums.ReturnTypeSale)
	iq = sc.Apply(iq, "returns.location_id")
	iq = applyWindow(iq, "returns.created_at", from, to)
	if err := iq.Select("COALESCE(SUM(return_items.qty), 0)").Scan(&agg.ItemQty).Error; err != nil {
		return agg, err
	}
	return agg, nil
}
