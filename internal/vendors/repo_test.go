package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
)

func setupVendorsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  location_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedVendor(t *testing.T, repo Repository, name string, locationID uuid.UUID, active bool) *models.Vendor {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Vendor{
		Name:       name,
		LocationID: locationID,
		IsActive:   active,
	})
	require.NoError(t, err)
	return created
}

func TestRepositoryFindScoped(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	created := seedVendor(t, repo, "Malabar Traders", locationID, true)

	found, err := repo.FindByID(ctx, scope.Single(locationID), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Malabar Traders", found.Name)

	_, err = repo.FindByID(ctx, scope.Single(uuid.New()), created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFiltersActive(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	seedVendor(t, repo, "Malabar Traders", locationID, true)
	seedVendor(t, repo, "Konkan Supplies", locationID, false)

	rows, err := repo.List(ctx, scope.Single(locationID), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Malabar Traders", rows[0].Name)

	rows, err = repo.List(ctx, scope.Single(locationID), false)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryExistsInLocation(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	active := seedVendor(t, repo, "Malabar Traders", locationID, true)
	inactive := seedVendor(t, repo, "Konkan Supplies", locationID, false)

	ok, err := repo.ExistsInLocation(ctx, active.ID, locationID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsInLocation(ctx, inactive.ID, locationID)
	require.NoError(t, err)
	assert.False(t, ok)
}
