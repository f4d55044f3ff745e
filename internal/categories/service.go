package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

// CreateCategoryInput names a new category.
type CreateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateCategoryInput carries partial category edits.
type UpdateCategoryInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Service defines category operations.
type Service interface {
	Create(ctx context.Context, locationID uuid.UUID, input CreateCategoryInput) (*models.Category, error)
	Update(ctx context.Context, locationID, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error)
	List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Category, error)
	Deactivate(ctx context.Context, locationID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the category service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, locationID uuid.UUID, input CreateCategoryInput) (*models.Category, error) {
	taken, err := s.repo.NameTakenInLocation(ctx, input.Name, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use at this location")
	}

	category := &models.Category{
		Name:       input.Name,
		LocationID: locationID,
		IsActive:   true,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating category")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, locationID, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, scope.Single(locationID), id)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	if input.Name != nil && *input.Name != category.Name {
		taken, err := s.repo.NameTakenInLocation(ctx, *input.Name, locationID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category name")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use at this location")
		}
		category.Name = *input.Name
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating category")
	}
	return updated, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Category, error) {
	rows, err := s.repo.List(ctx, sc, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories")
	}
	return rows, nil
}

func (s *service) Deactivate(ctx context.Context, locationID, id uuid.UUID) error {
	category, err := s.repo.FindByID(ctx, scope.Single(locationID), id)
	if err != nil {
		return mapLookupErr(err)
	}
	if !category.IsActive {
		return nil
	}
	category.IsActive = false
	if _, err := s.repo.Update(ctx, category); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating category")
	}
	return nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading category")
}
