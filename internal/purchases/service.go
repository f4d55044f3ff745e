package purchases

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

type vendorChecker interface {
	ExistsInLocation(ctx context.Context, id, locationID uuid.UUID) (bool, error)
}

// CreatePurchaseInput records stock received from a vendor.
type CreatePurchaseInput struct {
	ProductID      string `json:"product_id" validate:"required,uuid"`
	VendorID       string `json:"vendor_id" validate:"required,uuid"`
	Qty            int    `json:"qty" validate:"required,gt=0"`
	CostPriceCents int64  `json:"cost_price_cents" validate:"gte=0"`
}

// Service defines purchase operations.
type Service interface {
	Create(ctx context.Context, actorID, locationID uuid.UUID, input CreatePurchaseInput) (*models.Purchase, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Purchase, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	vendors vendorChecker
	ledger  inventory.Ledger
}

// NewService wires the purchase service.
func NewService(tx txRunner, repo Repository, vendors vendorChecker, ledger inventory.Ledger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor checker required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, vendors: vendors, ledger: ledger}, nil
}

// Create persists the receipt and applies the +qty stock delta in one
// transaction, so the purchase row and the ledger entry cannot drift.
func (s *service) Create(ctx context.Context, actorID, locationID uuid.UUID, input CreatePurchaseInput) (*models.Purchase, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	vendorID, err := uuid.Parse(input.VendorID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor id")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}
	if input.CostPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost price cannot be negative")
	}

	ok, err := s.vendors.ExistsInLocation(ctx, vendorID, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking vendor")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not exist at this location")
	}

	var purchase *models.Purchase
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.ledger.WithTx(tx).Apply(ctx, inventory.Delta{
			ProductID:  productID,
			LocationID: locationID,
			ActorID:    actorID,
			VendorID:   &vendorID,
			Qty:        input.Qty,
			Source:     enums.StockSourcePurchase,
		}); err != nil {
			return err
		}

		created, err := s.repo.WithTx(tx).Create(ctx, &models.Purchase{
			ProductID:      productID,
			VendorID:       vendorID,
			LocationID:     locationID,
			CreatedBy:      actorID,
			Qty:            input.Qty,
			CostPriceCents: input.CostPriceCents,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating purchase")
		}
		purchase = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, sc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase")
	}
	return purchase, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, sc, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing purchases")
	}
	return result, nil
}
