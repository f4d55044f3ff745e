package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/internal/products"
	"github.com/hbarretto/franchisepos-backend/internal/sales"
	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
	"github.com/hbarretto/franchisepos-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the cart reservation state machine. Adding a unit subtracts it
// from stock immediately; removing or abandoning gives it back; checkout only
// snapshots and commits, because the stock already moved at add time.
type Service interface {
	Fetch(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, userID, locationID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQty(ctx context.Context, userID, locationID, productID uuid.UUID, input UpdateItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID, locationID, productID uuid.UUID) (*models.CartRecord, error)
	Checkout(ctx context.Context, userID, locationID uuid.UUID, input CheckoutInput) (*models.Sale, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	products products.Repository
	ledger   inventory.Ledger
	sales    sales.Repository
	invoices sales.InvoiceIssuer
	taxCfg   config.TaxConfig
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	TxRunner      txRunner
	Repo          Repository
	ProductRepo   products.Repository
	Ledger        inventory.Ledger
	SalesRepo     sales.Repository
	InvoiceIssuer sales.InvoiceIssuer
	TaxConfig     config.TaxConfig
}

// NewService wires the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if params.SalesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.InvoiceIssuer == nil {
		return nil, fmt.Errorf("invoice issuer required")
	}
	return &service{
		tx:       params.TxRunner,
		repo:     params.Repo,
		products: params.ProductRepo,
		ledger:   params.Ledger,
		sales:    params.SalesRepo,
		invoices: params.InvoiceIssuer,
		taxCfg:   params.TaxConfig,
	}, nil
}

// Fetch returns the caller's active cart, or an empty unsaved one when no
// reservation is open.
func (s *service) Fetch(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.CartRecord{
				UserID: userID,
				Status: enums.CartStatusActive,
				Items:  []models.CartItem{},
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, userID, locationID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}

	var result *models.CartRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.activeOrNewCart(ctx, repo, userID, locationID)
		if err != nil {
			return err
		}

		product, err := s.products.WithTx(tx).FindByID(ctx, scope.Single(locationID), productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found at this location")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is inactive")
		}

		// Reserve the units. The CAS guard inside the ledger rejects the add
		// if stock would go negative.
		if _, err := s.ledger.WithTx(tx).Apply(ctx, inventory.Delta{
			ProductID:  productID,
			LocationID: locationID,
			ActorID:    userID,
			Qty:        -input.Qty,
			Source:     enums.StockSourceCart,
		}); err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, productID)
		switch {
		case err == nil:
			if err := repo.UpdateItemQty(ctx, item.ID, item.Qty+input.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart line")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if _, err := repo.CreateItem(ctx, &models.CartItem{
				CartID:         cart.ID,
				ProductID:      productID,
				Name:           product.Name,
				UnitPriceCents: product.PriceCents,
				Qty:            input.Qty,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating cart line")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart line")
		}

		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touching cart")
		}

		result, err = repo.FindActiveByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateItemQty(ctx context.Context, userID, locationID, productID uuid.UUID, input UpdateItemInput) (*models.CartRecord, error) {
	if input.Qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty cannot be negative")
	}
	if input.Qty == 0 {
		// Setting a line to zero is the same gesture as deleting it.
		return s.RemoveItem(ctx, userID, locationID, productID)
	}

	var result *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.activeCartLine(ctx, repo, userID, locationID, productID)
		if err != nil {
			return err
		}

		diff := input.Qty - item.Qty
		if diff != 0 {
			delta := inventory.Delta{
				ProductID:  productID,
				LocationID: locationID,
				ActorID:    userID,
				Qty:        -diff,
				Source:     enums.StockSourceCart,
			}
			if diff < 0 {
				// Shrinking the line releases units back to stock.
				delta.Source = enums.StockSourceCartRelease
			}
			if _, err := s.ledger.WithTx(tx).Apply(ctx, delta); err != nil {
				return err
			}
			if err := repo.UpdateItemQty(ctx, item.ID, input.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart line")
			}
		}

		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touching cart")
		}

		result, err = repo.FindActiveByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, locationID, productID uuid.UUID) (*models.CartRecord, error) {
	var result *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.activeCartLine(ctx, repo, userID, locationID, productID)
		if err != nil {
			return err
		}

		if _, err := s.ledger.WithTx(tx).Apply(ctx, inventory.Delta{
			ProductID:  productID,
			LocationID: locationID,
			ActorID:    userID,
			Qty:        item.Qty,
			Source:     enums.StockSourceCartRelease,
		}); err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting cart line")
		}
		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touching cart")
		}

		result, err = repo.FindActiveByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Checkout turns the active cart into an immutable sale. Stock does not move
// here; every unit in the cart was already subtracted when it was added.
func (s *service) Checkout(ctx context.Context, userID, locationID uuid.UUID, input CheckoutInput) (*models.Sale, error) {
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var sale *models.Sale
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
		}
		if cart.LocationID != locationID {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "active cart belongs to another location")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		var subtotal int64
		items := make([]models.SaleItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			lineTotal := line.UnitPriceCents * int64(line.Qty)
			subtotal += lineTotal
			items = append(items, models.SaleItem{
				ProductID:      line.ProductID,
				Name:           line.Name,
				UnitPriceCents: line.UnitPriceCents,
				Qty:            line.Qty,
				TotalCents:     lineTotal,
			})
		}

		tax, err := money.SplitTax(subtotal, s.taxCfg.CombinedRateBasisPoints)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing tax")
		}

		now := time.Now().UTC()
		invoiceNumber, err := s.invoices.WithTx(tx).Next(ctx, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issuing invoice number")
		}

		created, err := s.sales.WithTx(tx).Create(ctx, &models.Sale{
			InvoiceNumber: invoiceNumber,
			LocationID:    locationID,
			CreatedBy:     userID,
			PaymentMethod: method,
			SubtotalCents: tax.SubtotalCents,
			CGSTCents:     tax.CGSTCents,
			SGSTCents:     tax.SGSTCents,
			TotalCents:    tax.TotalCents,
			Items:         items,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting sale")
		}

		ok, err := repo.TransitionStatus(ctx, cart.ID, enums.CartStatusActive, enums.CartStatusCommitted)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "committing cart")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is no longer active")
		}

		sale = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) activeOrNewCart(ctx context.Context, repo Repository, userID, locationID uuid.UUID) (*models.CartRecord, error) {
	cart, err := repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.Create(ctx, &models.CartRecord{
				UserID:     userID,
				LocationID: locationID,
				Status:     enums.CartStatusActive,
			})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if cart.LocationID != locationID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "active cart belongs to another location")
	}
	return cart, nil
}

func (s *service) activeCartLine(ctx context.Context, repo Repository, userID, locationID, productID uuid.UUID) (*models.CartRecord, *models.CartItem, error) {
	cart, err := repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if cart.LocationID != locationID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "active cart belongs to another location")
	}
	item, err := repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart line")
	}
	return cart, item, nil
}
