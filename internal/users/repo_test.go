package users

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
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  location_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedUser(t *testing.T, repo Repository, email string, role enums.UserRole, locationID *uuid.UUID) *models.User {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hash",
		Role:         role,
		LocationID:   locationID,
		IsActive:     true,
	})
	require.NoError(t, err)
	return created
}

func TestRepositoryFindByEmailIsCaseInsensitive(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "asha@franchise.test", enums.UserRoleSuperadmin, nil)

	found, err := repo.FindByEmail(ctx, "Asha@Franchise.Test")
	require.NoError(t, err)
	assert.Equal(t, "asha@franchise.test", found.Email)

	_, err = repo.FindByEmail(ctx, "nobody@franchise.test")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateRejectsDuplicateEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	seedUser(t, repo, "asha@franchise.test", enums.UserRoleAdmin, ptr(uuid.New()))

	_, err := repo.Create(context.Background(), &models.User{
		Email:        "asha@franchise.test",
		FullName:     "Duplicate",
		PasswordHash: "hash",
		Role:         enums.UserRoleManager,
		LocationID:   ptr(uuid.New()),
	})
	assert.Error(t, err)
}

func TestRepositoryListScoped(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locA := uuid.New()
	locB := uuid.New()
	seedUser(t, repo, "a@franchise.test", enums.UserRoleManager, &locA)
	seedUser(t, repo, "b@franchise.test", enums.UserRoleSalesperson, &locA)
	seedUser(t, repo, "c@franchise.test", enums.UserRoleManager, &locB)
	seedUser(t, repo, "root@franchise.test", enums.UserRoleSuperadmin, nil)

	rows, err := repo.List(ctx, scope.Single(locA), false)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, scope.All(), false)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	rows, err = repo.List(ctx, scope.Empty(), false)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryTouchLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@franchise.test", enums.UserRoleSuperadmin, nil)
	require.Nil(t, user.LastLoginAt)

	require.NoError(t, repo.TouchLastLogin(ctx, user.ID))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.LastLoginAt)
}

func ptr[T any](v T) *T { return &v }
