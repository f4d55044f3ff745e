package products

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
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, db.Exec(products).Error)
	return db
}

func seedCatalog(t *testing.T, repo Repository, locationID uuid.UUID, names []string) []models.Product {
	t.Helper()
	categoryID := uuid.New()
	created := make([]models.Product, 0, len(names))
	for i, name := range names {
		product := &models.Product{
			Name:       name,
			PriceCents: int64(1000 * (i + 1)),
			CategoryID: categoryID,
			LocationID: locationID,
			IsActive:   true,
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Second),
		}
		got, err := repo.Create(context.Background(), product)
		require.NoError(t, err)
		created = append(created, *got)
	}
	return created
}

func TestRepositoryCreateAndFindScoped(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	created := seedCatalog(t, repo, locationID, []string{"Darjeeling 500g"})

	found, err := repo.FindByID(ctx, scope.Single(locationID), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Darjeeling 500g", found.Name)

	// Same product is invisible from another location's scope.
	_, err = repo.FindByID(ctx, scope.Single(uuid.New()), created[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// And invisible through an empty scope.
	_, err = repo.FindByID(ctx, scope.Empty(), created[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// But visible to an unrestricted scope.
	found, err = repo.FindByID(ctx, scope.All(), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, found.ID)
}

func TestRepositoryListScopesAndFilters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locA := uuid.New()
	locB := uuid.New()
	seedCatalog(t, repo, locA, []string{"Assam Gold", "Nilgiri Green"})
	seedCatalog(t, repo, locB, []string{"Assam Gold"})

	result, err := repo.List(ctx, scope.Single(locA), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)

	result, err = repo.List(ctx, scope.All(), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Products, 3)

	result, err = repo.List(ctx, scope.Empty(), ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, result.Products)

	result, err = repo.List(ctx, scope.Single(locA), ListQuery{
		Filters: ListFilters{Query: "nilgiri"},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Nilgiri Green", result.Products[0].Name)
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	seedCatalog(t, repo, locationID, []string{"a", "b", "c", "d", "e"})

	first, err := repo.List(ctx, scope.Single(locationID), ListQuery{
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, scope.Single(locationID), ListQuery{
		Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)

	for _, p := range second.Products {
		for _, q := range first.Products {
			assert.NotEqual(t, q.ID, p.ID)
		}
	}

	third, err := repo.List(ctx, scope.Single(locationID), ListQuery{
		Pagination: pagination.Params{Limit: 2, Cursor: second.NextCursor},
	})
	require.NoError(t, err)
	assert.Len(t, third.Products, 1)
	assert.Empty(t, third.NextCursor)
}

func TestRepositoryUpdatePersists(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	created := seedCatalog(t, repo, locationID, []string{"Cardamom 100g"})

	product := created[0]
	product.PriceCents = 31500
	product.IsActive = false
	_, err := repo.Update(ctx, &product)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, scope.Single(locationID), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(31500), found.PriceCents)
	assert.False(t, found.IsActive)
}

func TestRepositoryUpdateLeavesQuantityToLedger(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	created := seedCatalog(t, repo, locationID, []string{"Cardamom 100g"})
	require.NoError(t, db.Exec("UPDATE products SET quantity = 5 WHERE id = ?", created[0].ID).Error)

	stale, err := repo.FindByID(ctx, scope.Single(locationID), created[0].ID)
	require.NoError(t, err)
	require.Equal(t, 5, stale.Quantity)

	// A sale lands between the read and the rename.
	require.NoError(t, db.Exec("UPDATE products SET quantity = quantity - 3 WHERE id = ?", created[0].ID).Error)

	stale.Name = "Cardamom 100g (premium)"
	updated, err := repo.Update(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, "Cardamom 100g (premium)", updated.Name)
	assert.Equal(t, 2, updated.Quantity)

	found, err := repo.FindByID(ctx, scope.Single(locationID), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)
}
