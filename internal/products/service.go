package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type categoryChecker interface {
	ExistsInLocation(ctx context.Context, id, locationID uuid.UUID) (bool, error)
}

// Service defines product catalog operations. Mutations take the already
// resolved mutation location; reads take a scope.
type Service interface {
	Create(ctx context.Context, actorID, locationID uuid.UUID, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, locationID, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
	Deactivate(ctx context.Context, locationID, id uuid.UUID) error
	AdjustStock(ctx context.Context, actorID, locationID uuid.UUID, input AdjustStockInput) (*models.Product, error)
}

type service struct {
	tx         txRunner
	repo       Repository
	categories categoryChecker
	ledger     inventory.Ledger
}

// NewService wires the product service.
func NewService(tx txRunner, repo Repository, categories categoryChecker, ledger inventory.Ledger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category checker required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, categories: categories, ledger: ledger}, nil
}

func (s *service) Create(ctx context.Context, actorID, locationID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	categoryID, err := uuid.Parse(input.CategoryID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id")
	}
	ok, err := s.categories.ExistsInLocation(ctx, categoryID, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist at this location")
	}

	product := &models.Product{
		Name:       input.Name,
		SKU:        input.SKU,
		PriceCents: input.PriceCents,
		CategoryID: categoryID,
		LocationID: locationID,
		Tags:       input.Tags,
		IsActive:   true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
		}
		product = created

		if input.InitialQuantity > 0 {
			note := "initial stock"
			_, err := s.ledger.WithTx(tx).Apply(ctx, inventory.Delta{
				ProductID:  created.ID,
				LocationID: locationID,
				ActorID:    actorID,
				Qty:        input.InitialQuantity,
				Source:     enums.StockSourceAdjustment,
				Note:       &note,
			})
			if err != nil {
				return err
			}
			product.Quantity = input.InitialQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, locationID, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, scope.Single(locationID), id)
	if err != nil {
		return nil, mapLookupErr(err, "product")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.CategoryID != nil {
		categoryID, err := uuid.Parse(*input.CategoryID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id")
		}
		ok, err := s.categories.ExistsInLocation(ctx, categoryID, locationID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist at this location")
		}
		product.CategoryID = categoryID
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, sc, id)
	if err != nil {
		return nil, mapLookupErr(err, "product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, sc, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return result, nil
}

func (s *service) Deactivate(ctx context.Context, locationID, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, scope.Single(locationID), id)
	if err != nil {
		return mapLookupErr(err, "product")
	}
	if !product.IsActive {
		return nil
	}
	product.IsActive = false
	if _, err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating product")
	}
	return nil
}

func (s *service) AdjustStock(ctx context.Context, actorID, locationID uuid.UUID, input AdjustStockInput) (*models.Product, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	if input.QtyDelta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty delta cannot be zero")
	}

	var product *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.ledger.WithTx(tx).Apply(ctx, inventory.Delta{
			ProductID:  productID,
			LocationID: locationID,
			ActorID:    actorID,
			Qty:        input.QtyDelta,
			Source:     enums.StockSourceAdjustment,
			Note:       input.Note,
		}); err != nil {
			return err
		}
		loaded, err := s.repo.WithTx(tx).FindByID(ctx, scope.Single(locationID), productID)
		if err != nil {
			return mapLookupErr(err, "product")
		}
		product = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func mapLookupErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading "+what)
}
