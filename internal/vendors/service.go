package vendors

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

// CreateVendorInput describes a new supplier.
type CreateVendorInput struct {
	Name    string  `json:"name" validate:"required,min=1,max=150"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

// UpdateVendorInput carries partial vendor edits.
type UpdateVendorInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=300"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Service defines vendor operations.
type Service interface {
	Create(ctx context.Context, locationID uuid.UUID, input CreateVendorInput) (*models.Vendor, error)
	Update(ctx context.Context, locationID, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Vendor, error)
	Deactivate(ctx context.Context, locationID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the vendor service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, locationID uuid.UUID, input CreateVendorInput) (*models.Vendor, error) {
	vendor := &models.Vendor{
		Name:       input.Name,
		Phone:      input.Phone,
		Address:    input.Address,
		LocationID: locationID,
		IsActive:   true,
	}
	created, err := s.repo.Create(ctx, vendor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating vendor")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, locationID, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, scope.Single(locationID), id)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	if input.Name != nil {
		vendor.Name = *input.Name
	}
	if input.Phone != nil {
		vendor.Phone = input.Phone
	}
	if input.Address != nil {
		vendor.Address = input.Address
	}
	if input.IsActive != nil {
		vendor.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, vendor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating vendor")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, sc, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return vendor, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Vendor, error) {
	rows, err := s.repo.List(ctx, sc, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing vendors")
	}
	return rows, nil
}

func (s *service) Deactivate(ctx context.Context, locationID, id uuid.UUID) error {
	vendor, err := s.repo.FindByID(ctx, scope.Single(locationID), id)
	if err != nil {
		return mapLookupErr(err)
	}
	if !vendor.IsActive {
		return nil
	}
	vendor.IsActive = false
	if _, err := s.repo.Update(ctx, vendor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating vendor")
	}
	return nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading vendor")
}
