package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
)

// Repository manages location persistence. Locations are the scoping targets
// themselves, so lookups here are unscoped.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
	Update(ctx context.Context, location *models.Location) (*models.Location, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, activeOnly bool) ([]models.Location, error)
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (r *repository) Update(ctx context.Context, location *models.Location) (*models.Location, error) {
	if err := r.db.WithContext(ctx).Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	var rows []models.Location
	q := r.db.WithContext(ctx).Model(&models.Location{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsActive reports whether the location exists and is active. Used to
// validate superadmin location selection and staff assignment.
func (r *repository) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count > 0, err
}
