package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT,
  price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  tags TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	stockUpdates := `
CREATE TABLE IF NOT EXISTS stock_updates (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  vendor_id TEXT,
  created_by TEXT NOT NULL,
  qty_delta INTEGER NOT NULL,
  source TEXT NOT NULL,
  note TEXT,
  created_at DATETIME
);`

	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(stockUpdates).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, locationID uuid.UUID, qty int) models.Product {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		Name:       "Masala Chai 250g",
		PriceCents: 24900,
		Quantity:   qty,
		CategoryID: uuid.New(),
		LocationID: locationID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestLedgerApplyDecrementsAndRecords(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	locationID := uuid.New()
	actorID := uuid.New()
	product := seedProduct(t, db, locationID, 10)

	entry, err := ledger.Apply(ctx, Delta{
		ProductID:  product.ID,
		LocationID: locationID,
		ActorID:    actorID,
		Qty:        -3,
		Source:     enums.StockSourceCart,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, -3, entry.QtyDelta)

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 7, updated.Quantity)

	var facts []models.StockUpdate
	require.NoError(t, db.Find(&facts, "product_id = ?", product.ID).Error)
	require.Len(t, facts, 1)
	assert.Equal(t, enums.StockSourceCart, facts[0].Source)
}

func TestLedgerApplyRejectsOverdraw(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	locationID := uuid.New()
	product := seedProduct(t, db, locationID, 2)

	_, err := ledger.Apply(ctx, Delta{
		ProductID:  product.ID,
		LocationID: locationID,
		ActorID:    uuid.New(),
		Qty:        -3,
		Source:     enums.StockSourceSale,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	// Quantity untouched and no ledger row written.
	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 2, updated.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.StockUpdate{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLedgerApplyExactDepletion(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	locationID := uuid.New()
	product := seedProduct(t, db, locationID, 5)

	_, err := ledger.Apply(ctx, Delta{
		ProductID:  product.ID,
		LocationID: locationID,
		ActorID:    uuid.New(),
		Qty:        -5,
		Source:     enums.StockSourceSale,
	})
	require.NoError(t, err)

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Zero(t, updated.Quantity)
}

func TestLedgerApplyUnknownProduct(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)

	_, err := ledger.Apply(context.Background(), Delta{
		ProductID:  uuid.New(),
		LocationID: uuid.New(),
		ActorID:    uuid.New(),
		Qty:        1,
		Source:     enums.StockSourceAdjustment,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestLedgerApplyWrongLocation(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	product := seedProduct(t, db, uuid.New(), 5)

	_, err := ledger.Apply(ctx, Delta{
		ProductID:  product.ID,
		LocationID: uuid.New(),
		ActorID:    uuid.New(),
		Qty:        -1,
		Source:     enums.StockSourceSale,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestLedgerApplyValidation(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, Delta{
		LocationID: uuid.New(),
		ActorID:    uuid.New(),
		Qty:        1,
		Source:     enums.StockSourcePurchase,
	})
	assert.Error(t, err)

	_, err = ledger.Apply(ctx, Delta{
		ProductID:  uuid.New(),
		LocationID: uuid.New(),
		ActorID:    uuid.New(),
		Qty:        0,
		Source:     enums.StockSourcePurchase,
	})
	assert.Error(t, err)

	_, err = ledger.Apply(ctx, Delta{
		ProductID:  uuid.New(),
		LocationID: uuid.New(),
		ActorID:    uuid.New(),
		Qty:        1,
		Source:     "teleport",
	})
	assert.Error(t, err)
}

func TestLedgerEntriesSumToQuantity(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	locationID := uuid.New()
	actorID := uuid.New()
	product := seedProduct(t, db, locationID, 0)

	deltas := []int{10, -4, -2, 5, -1}
	sources := []enums.StockSource{
		enums.StockSourcePurchase,
		enums.StockSourceCart,
		enums.StockSourceSale,
		enums.StockSourceReturn,
		enums.StockSourceAdjustment,
	}
	for i, qty := range deltas {
		_, err := ledger.Apply(ctx, Delta{
			ProductID:  product.ID,
			LocationID: locationID,
			ActorID:    actorID,
			Qty:        qty,
			Source:     sources[i],
		})
		require.NoError(t, err)
	}

	var sum int
	require.NoError(t, db.Model(&models.StockUpdate{}).
		Select("COALESCE(SUM(qty_delta), 0)").
		Where("product_id = ?", product.ID).
		Scan(&sum).Error)

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, updated.Quantity, sum)
	assert.Equal(t, 8, updated.Quantity)
}
