package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/internal/products"
	"github.com/hbarretto/franchisepos-backend/internal/sales"
	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
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
);`, `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
);`, `
CREATE TABLE IF NOT EXISTS invoice_counters (
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	require.NoError(t, db.Exec("INSERT INTO invoice_counters (name, value) VALUES ('invoice', 0)").Error)
	return db
}

type cartTestEnv struct {
	db         *gorm.DB
	svc        Service
	repo       Repository
	locationID uuid.UUID
	userID     uuid.UUID
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()
	db := setupCartTestDB(t)

	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{
		TxRunner:      gormTxRunner{db: db},
		Repo:          repo,
		ProductRepo:   products.NewRepository(db),
		Ledger:        inventory.NewLedger(db),
		SalesRepo:     sales.NewRepository(db),
		InvoiceIssuer: sales.NewInvoiceIssuer(db),
		TaxConfig:     config.TaxConfig{CombinedRateBasisPoints: 500},
	})
	require.NoError(t, err)

	return &cartTestEnv{
		db:         db,
		svc:        svc,
		repo:       repo,
		locationID: uuid.New(),
		userID:     uuid.New(),
	}
}

func (e *cartTestEnv) seedProduct(t *testing.T, name string, priceCents int64, qty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		Quantity:   qty,
		CategoryID: uuid.New(),
		LocationID: e.locationID,
		IsActive:   true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *cartTestEnv) productQty(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, e.db.First(&product, "id = ?", id).Error)
	return product.Quantity
}

func TestAddItemReservesStock(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	cart, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{
		ProductID: product.ID.String(),
		Qty:       3,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Qty)
	assert.Equal(t, int64(10000), cart.Items[0].UnitPriceCents)
	assert.Equal(t, 7, env.productQty(t, product.ID))

	var entry models.StockUpdate
	require.NoError(t, env.db.First(&entry, "product_id = ?", product.ID).Error)
	assert.Equal(t, -3, entry.QtyDelta)
	assert.Equal(t, enums.StockSourceCart, entry.Source)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 2})
	require.NoError(t, err)
	cart, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 3})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Qty)
	assert.Equal(t, 5, env.productQty(t, product.ID))
}

func TestAddItemInsufficientStockRollsBack(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Saffron 1g", 49900, 2)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{
		ProductID: product.ID.String(),
		Qty:       5,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	assert.Equal(t, 2, env.productQty(t, product.ID))
	_, err = env.repo.FindActiveByUser(ctx, env.userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveItemReleasesStock(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, env.productQty(t, product.ID))

	cart, err := env.svc.RemoveItem(ctx, env.userID, env.locationID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 10, env.productQty(t, product.ID))
}

func TestUpdateItemQtyAppliesDiffDelta(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 4})
	require.NoError(t, err)

	// Growing the line reserves two more units.
	cart, err := env.svc.UpdateItemQty(ctx, env.userID, env.locationID, product.ID, UpdateItemInput{Qty: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, cart.Items[0].Qty)
	assert.Equal(t, 4, env.productQty(t, product.ID))

	// Shrinking releases five back.
	cart, err = env.svc.UpdateItemQty(ctx, env.userID, env.locationID, product.ID, UpdateItemInput{Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Qty)
	assert.Equal(t, 9, env.productQty(t, product.ID))
}

func TestUpdateItemQtyZeroRemovesLine(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, env.productQty(t, product.ID))

	cart, err := env.svc.UpdateItemQty(ctx, env.userID, env.locationID, product.ID, UpdateItemInput{Qty: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 10, env.productQty(t, product.ID))

	_, err = env.svc.UpdateItemQty(ctx, env.userID, env.locationID, product.ID, UpdateItemInput{Qty: -1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestCheckoutCommitsCartAndSplitsTax(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 1})
	require.NoError(t, err)

	sale, err := env.svc.Checkout(ctx, env.userID, env.locationID, CheckoutInput{PaymentMethod: "cash"})
	require.NoError(t, err)

	// 5% combined GST on 10000 splits into 250 + 250.
	assert.Equal(t, int64(10000), sale.SubtotalCents)
	assert.Equal(t, int64(250), sale.CGSTCents)
	assert.Equal(t, int64(250), sale.SGSTCents)
	assert.Equal(t, int64(10500), sale.TotalCents)
	assert.Equal(t, sale.SubtotalCents+sale.CGSTCents+sale.SGSTCents, sale.TotalCents)
	assert.Contains(t, sale.InvoiceNumber, "-000001")

	// Stock does not move at checkout; it moved at add time.
	assert.Equal(t, 9, env.productQty(t, product.ID))

	// The cart is gone; a second checkout has nothing to commit.
	_, err = env.svc.Checkout(ctx, env.userID, env.locationID, CheckoutInput{PaymentMethod: "cash"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 1})
	require.NoError(t, err)
	_, err = env.svc.RemoveItem(ctx, env.userID, env.locationID, product.ID)
	require.NoError(t, err)

	_, err = env.svc.Checkout(ctx, env.userID, env.locationID, CheckoutInput{PaymentMethod: "cash"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

// Two salespeople race for the last unit. Whoever adds it first holds the
// reservation; the loser gets a stock error at add time, long before checkout.
func TestLastUnitGoesToFirstReserver(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Saffron 1g", 49900, 1)
	ctx := context.Background()

	winner := env.userID
	loser := uuid.New()

	_, err := env.svc.AddItem(ctx, winner, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 1})
	require.NoError(t, err)

	_, err = env.svc.AddItem(ctx, loser, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	sale, err := env.svc.Checkout(ctx, winner, env.locationID, CheckoutInput{PaymentMethod: "upi"})
	require.NoError(t, err)
	assert.Equal(t, 1, sale.Items[0].Qty)
	assert.Equal(t, 0, env.productQty(t, product.ID))
}

func TestFetchReturnsEmptyCartWhenNoneOpen(t *testing.T) {
	env := newCartTestEnv(t)

	cart, err := env.svc.Fetch(context.Background(), env.userID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, cart.Status)
	assert.Empty(t, cart.Items)
	assert.Equal(t, uuid.Nil, cart.ID)
}

func TestCheckoutInvoiceNumbersAreSequential(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	otherUser := uuid.New()
	_, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 1})
	require.NoError(t, err)
	_, err = env.svc.AddItem(ctx, otherUser, env.locationID, AddItemInput{ProductID: product.ID.String(), Qty: 1})
	require.NoError(t, err)

	first, err := env.svc.Checkout(ctx, env.userID, env.locationID, CheckoutInput{PaymentMethod: "cash"})
	require.NoError(t, err)
	second, err := env.svc.Checkout(ctx, otherUser, env.locationID, CheckoutInput{PaymentMethod: "card"})
	require.NoError(t, err)

	prefix := "INV-" + time.Now().UTC().Format("20060102") + "-"
	assert.Equal(t, prefix+"000001", first.InvoiceNumber)
	assert.Equal(t, prefix+"000002", second.InvoiceNumber)
}
