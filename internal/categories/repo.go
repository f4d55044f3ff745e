package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
)

// Repository manages category persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) (*models.Category, error)
	FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Category, error)
	ExistsInLocation(ctx context.Context, id, locationID uuid.UUID) (bool, error)
	NameTakenInLocation(ctx context.Context, name string, locationID uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	q := sc.Apply(r.db.WithContext(ctx), "location_id")
	if err := q.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Category, error) {
	var rows []models.Category
	q := sc.Apply(r.db.WithContext(ctx).Model(&models.Category{}), "location_id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsInLocation reports whether an active category lives at the location.
func (r *repository) ExistsInLocation(ctx context.Context, id, locationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND location_id = ? AND is_active = ?", id, locationID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) NameTakenInLocation(ctx context.Context, name string, locationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND location_id = ?", name, locationID).
		Count(&count).Error
	return count > 0, err
}
