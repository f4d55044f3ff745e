package categories

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

func setupCategoriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedCategory(t *testing.T, repo Repository, name string, locationID uuid.UUID, active bool) *models.Category {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Category{
		Name:       name,
		LocationID: locationID,
		IsActive:   active,
	})
	require.NoError(t, err)
	return created
}

func TestRepositoryListScoped(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locA := uuid.New()
	locB := uuid.New()
	seedCategory(t, repo, "Teas", locA, true)
	seedCategory(t, repo, "Spices", locA, false)
	seedCategory(t, repo, "Teas", locB, true)

	rows, err := repo.List(ctx, scope.Single(locA), false)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, scope.Single(locA), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Teas", rows[0].Name)

	rows, err = repo.List(ctx, scope.All(), false)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = repo.List(ctx, scope.Empty(), false)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryExistsInLocation(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	active := seedCategory(t, repo, "Teas", locationID, true)
	inactive := seedCategory(t, repo, "Spices", locationID, false)

	ok, err := repo.ExistsInLocation(ctx, active.ID, locationID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Inactive categories do not count.
	ok, err = repo.ExistsInLocation(ctx, inactive.ID, locationID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Neither do categories from another location.
	ok, err = repo.ExistsInLocation(ctx, active.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryNameTakenInLocation(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationID := uuid.New()
	seedCategory(t, repo, "Teas", locationID, true)

	taken, err := repo.NameTakenInLocation(ctx, "teas", locationID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.NameTakenInLocation(ctx, "Teas", uuid.New())
	require.NoError(t, err)
	assert.False(t, taken)
}
