package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  invoice_number TEXT NOT NULL UNIQUE,
  location_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  cgst_cents INTEGER NOT NULL,
  sgst_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sale_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  returned_qty INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS returns (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  reference_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  refund_method TEXT NOT NULL,
  reason TEXT,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS return_items (
  id TEXT PRIMARY KEY,
  return_id TEXT NOT NULL,
  ref_item_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func seedSale(t *testing.T, db *gorm.DB, locationID uuid.UUID, totalCents int64, itemQty int, at time.Time) *models.Sale {
	t.Helper()
	sale := &models.Sale{
		ID:            uuid.New(),
		InvoiceNumber: "INV-" + uuid.NewString()[:13],
		LocationID:    locationID,
		CreatedBy:     uuid.New(),
		PaymentMethod: enums.PaymentMethodCash,
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
		Items: []models.SaleItem{{
			ID:             uuid.New(),
			ProductID:      uuid.New(),
			Name:           "line",
			UnitPriceCents: totalCents / int64(itemQty),
			Qty:            itemQty,
			TotalCents:     totalCents,
		}},
		CreatedAt: at,
	}
	sale.Items[0].SaleID = sale.ID
	require.NoError(t, db.Create(sale).Error)
	require.NoError(t, db.Model(sale).Update("created_at", at).Error)
	return sale
}

func seedReturn(t *testing.T, db *gorm.DB, locationID uuid.UUID, returnType enums.ReturnType, referenceID uuid.UUID, totalCents int64, itemQty int, at time.Time) {
	t.Helper()
	ret := &models.Return{
		ID:           uuid.New(),
		Type:         returnType,
		ReferenceID:  referenceID,
		LocationID:   locationID,
		CreatedBy:    uuid.New(),
		RefundMethod: enums.RefundMethodCash,
		TotalCents:   totalCents,
		Items: []models.ReturnItem{{
			ID:             uuid.New(),
			RefItemID:      uuid.New(),
			ProductID:      uuid.New(),
			Name:           "line",
			UnitPriceCents: totalCents / int64(itemQty),
			Qty:            itemQty,
			TotalCents:     totalCents,
		}},
		CreatedAt: at,
	}
	ret.Items[0].ReturnID = ret.ID
	require.NoError(t, db.Create(ret).Error)
	require.NoError(t, db.Model(ret).Update("created_at", at).Error)
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestSummarizeNetsSalesAgainstReturns(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	locationID := uuid.New()
	now := time.Now().UTC()

	saleA := seedSale(t, db, locationID, 30000, 3, now.Add(-2*time.Hour))
	seedSale(t, db, locationID, 20000, 2, now.Add(-time.Hour))
	seedReturn(t, db, locationID, enums.ReturnTypeSale, saleA.ID, 10000, 1, now.Add(-30*time.Minute))

	// Purchase returns are vendor-side and must not dent revenue.
	seedReturn(t, db, locationID, enums.ReturnTypePurchase, uuid.New(), 5000, 5, now.Add(-20*time.Minute))

	summary, err := svc.Summarize(ctx, scope.Single(locationID), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(50000), summary.GrossSalesCents)
	assert.Equal(t, int64(10000), summary.ReturnsCents)
	assert.Equal(t, int64(40000), summary.NetSalesCents)
	assert.Equal(t, int64(2), summary.SaleCount)
	assert.Equal(t, int64(1), summary.ReturnCount)
	assert.Equal(t, int64(1), summary.NetTransactions)
	assert.Equal(t, int64(5), summary.ItemsSold)
	assert.Equal(t, int64(1), summary.ItemsReturned)
	assert.Equal(t, int64(4), summary.NetItems)
	assert.Equal(t, int64(40000), summary.AvgNetSaleCents)
}

func TestSummarizeRespectsWindowAndScope(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	locationID := uuid.New()
	otherLocation := uuid.New()
	now := time.Now().UTC()

	seedSale(t, db, locationID, 10000, 1, now.Add(-48*time.Hour))
	seedSale(t, db, locationID, 20000, 2, now.Add(-time.Hour))
	seedSale(t, db, otherLocation, 99000, 9, now.Add(-time.Hour))

	from := now.Add(-24 * time.Hour)
	summary, err := svc.Summarize(ctx, scope.Single(locationID), &from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), summary.GrossSalesCents)
	assert.Equal(t, int64(1), summary.SaleCount)

	all, err := svc.Summarize(ctx, scope.All(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(129000), all.GrossSalesCents)
	assert.Equal(t, int64(3), all.SaleCount)
}

func TestSummarizeEmptyScope(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)

	summary, err := svc.Summarize(context.Background(), scope.Single(uuid.New()), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.GrossSalesCents)
	assert.Zero(t, summary.NetTransactions)
	assert.Zero(t, summary.AvgNetSaleCents)
}

func TestSummarizeRejectsInvertedWindow(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err := svc.Summarize(context.Background(), scope.Single(uuid.New()), &from, &to)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}
