package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/pkg/db"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

// CreateLocationInput describes a new store.
type CreateLocationInput struct {
	Name    string  `json:"name" validate:"required,min=1,max=150"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

// UpdateLocationInput carries partial location edits.
type UpdateLocationInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=300"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Service defines location management. All mutations are superadmin only;
// role enforcement happens at the transport layer.
type Service interface {
	Create(ctx context.Context, input CreateLocationInput) (*models.Location, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLocationInput) (*models.Location, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, activeOnly bool) ([]models.Location, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
}

// NewService wires the location service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("location repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateLocationInput) (*models.Location, error) {
	location := &models.Location{
		Name:     input.Name,
		Address:  input.Address,
		IsActive: true,
	}
	created, err := s.repo.Create(ctx, location)
	if err != nil {
		if db.IsUniqueViolation(err, "locations_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "location name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating location")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateLocationInput) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	if input.Name != nil {
		location.Name = *input.Name
	}
	if input.Address != nil {
		location.Address = input.Address
	}
	if input.IsActive != nil {
		location.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, location)
	if err != nil {
		if db.IsUniqueViolation(err, "locations_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "location name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating location")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return location, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing locations")
	}
	return rows, nil
}

// Deactivate soft-deletes a location. Historical sales, staff rows, and stock
// history keep their references; the location just stops being selectable.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapLookupErr(err)
	}
	if !location.IsActive {
		return nil
	}
	location.IsActive = false
	if _, err := s.repo.Update(ctx, location); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating location")
	}
	return nil
}

func (s *service) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.repo.ExistsActive(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking location")
	}
	return ok, nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading location")
}
