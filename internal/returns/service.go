package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/internal/products"
	"github.com/hbarretto/franchisepos-backend/internal/purchases"
	"github.com/hbarretto/franchisepos-backend/internal/sales"
	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReturnLineInput reverses part of one original line. RefItemID is the sale
// item id for sale returns, or the purchase id for purchase returns.
type ReturnLineInput struct {
	RefItemID string `json:"ref_item_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

// AddReturnInput records goods coming back from a sale or going back to a
// vendor.
type AddReturnInput struct {
	Type         string            `json:"type" validate:"required"`
	ReferenceID  string            `json:"reference_id" validate:"required,uuid"`
	RefundMethod string            `json:"refund_method" validate:"required"`
	Reason       *string           `json:"reason,omitempty" validate:"omitempty,max=300"`
	Items        []ReturnLineInput `json:"items" validate:"required,min=1,dive"`
}

// Service defines return operations.
type Service interface {
	AddReturn(ctx context.Context, actorID, locationID uuid.UUID, input AddReturnInput) (*models.Return, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Return, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
	IsOrderReturned(ctx context.Context, referenceID uuid.UUID) (bool, error)
	ReturnedItems(ctx context.Context, referenceID uuid.UUID) ([]models.ReturnItem, error)
	TotalReturnAmount(ctx context.Context, referenceID uuid.UUID) (int64, error)
}

type service struct {
	tx            txRunner
	repo          Repository
	salesRepo     sales.Repository
	purchasesRepo purchases.Repository
	productsRepo  products.Repository
	ledger        inventory.Ledger
}

// ServiceParams bundles the dependencies required to build a returns service.
type ServiceParams struct {
	TxRunner      txRunner
	Repo          Repository
	SalesRepo     sales.Repository
	PurchasesRepo purchases.Repository
	ProductsRepo  products.Repository
	Ledger        inventory.Ledger
}

// NewService wires the returns service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if params.SalesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.PurchasesRepo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if params.ProductsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{
		tx:            params.TxRunner,
		repo:          params.Repo,
		salesRepo:     params.SalesRepo,
		purchasesRepo: params.PurchasesRepo,
		productsRepo:  params.ProductsRepo,
		ledger:        params.Ledger,
	}, nil
}

// AddReturn validates the lines, moves the stock, and persists the return in
// one transaction. A line that was already returned for this reference is
// rejected outright rather than partially applied.
func (s *service) AddReturn(ctx context.Context, actorID, locationID uuid.UUID, input AddReturnInput) (*models.Return, error) {
	returnType, err := enums.ParseReturnType(input.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return type")
	}
	refundMethod, err := enums.ParseRefundMethod(input.RefundMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid refund method")
	}
	referenceID, err := uuid.Parse(input.ReferenceID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reference id")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	lines := make(map[uuid.UUID]int, len(input.Items))
	for _, line := range input.Items {
		refItemID, err := uuid.Parse(line.RefItemID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ref item id")
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
		}
		if _, dup := lines[refItemID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate line in request")
		}
		lines[refItemID] = line.Qty
	}

	var result *models.Return
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		already, err := repo.ReturnedItems(ctx, referenceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading prior returns")
		}
		for _, prior := range already {
			if _, clash := lines[prior.RefItemID]; clash {
				return pkgerrors.New(pkgerrors.CodeDuplicateReturn, "item was already returned for this reference").
					WithDetails(map[string]any{"ref_item_id": prior.RefItemID})
			}
		}

		var items []models.ReturnItem
		switch returnType {
		case enums.ReturnTypeSale:
			items, err = s.saleReturnItems(ctx, tx, repo, actorID, locationID, referenceID, lines)
		case enums.ReturnTypePurchase:
			items, err = s.purchaseReturnItems(ctx, tx, actorID, locationID, referenceID, lines)
		}
		if err != nil {
			return err
		}

		var total int64
		for _, item := range items {
			total += item.TotalCents
		}

		created, err := repo.Create(ctx, &models.Return{
			Type:         returnType,
			ReferenceID:  referenceID,
			LocationID:   locationID,
			CreatedBy:    actorID,
			RefundMethod: refundMethod,
			Reason:       input.Reason,
			TotalCents:   total,
			Items:        items,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting return")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// saleReturnItems reverses sale lines: goods come back, stock goes up.
func (s *service) saleReturnItems(ctx context.Context, tx *gorm.DB, repo Repository, actorID, locationID, saleID uuid.UUID, lines map[uuid.UUID]int) ([]models.ReturnItem, error) {
	sale, err := s.salesRepo.WithTx(tx).FindByID(ctx, scope.Single(locationID), saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading sale")
	}

	saleItems := make(map[uuid.UUID]models.SaleItem, len(sale.Items))
	for _, item := range sale.Items {
		saleItems[item.ID] = item
	}

	ledger := s.ledger.WithTx(tx)
	items := make([]models.ReturnItem, 0, len(lines))
	for refItemID, qty := range lines {
		saleItem, ok := saleItems[refItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item does not belong to this sale").
				WithDetails(map[string]any{"ref_item_id": refItemID})
		}
		if qty > saleItem.Qty-saleItem.ReturnedQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "return qty exceeds sold qty").
				WithDetails(map[string]any{
					"ref_item_id": refItemID,
					"sold":        saleItem.Qty,
					"returned":    saleItem.ReturnedQty,
					"requested":   qty,
				})
		}

		bumped, err := repo.AddSaleItemReturnedQty(ctx, refItemID, qty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating sale line")
		}
		if !bumped {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sale line changed; retry the return")
		}

		if _, err := ledger.Apply(ctx, inventory.Delta{
			ProductID:  saleItem.ProductID,
			LocationID: locationID,
			ActorID:    actorID,
			Qty:        qty,
			Source:     enums.StockSourceReturn,
		}); err != nil {
			return nil, err
		}

		items = append(items, models.ReturnItem{
			RefItemID:      refItemID,
			ProductID:      saleItem.ProductID,
			Name:           saleItem.Name,
			UnitPriceCents: saleItem.UnitPriceCents,
			Qty:            qty,
			TotalCents:     saleItem.UnitPriceCents * int64(qty),
		})
	}
	return items, nil
}

// purchaseReturnItems reverses purchase receipts: goods go back to the vendor,
// stock goes down, CAS-guarded so it cannot go negative.
func (s *service) purchaseReturnItems(ctx context.Context, tx *gorm.DB, actorID, locationID, referenceID uuid.UUID, lines map[uuid.UUID]int) ([]models.ReturnItem, error) {
	purchasesRepo := s.purchasesRepo.WithTx(tx)
	productsRepo := s.productsRepo.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	items := make([]models.ReturnItem, 0, len(lines))
	for purchaseID, qty := range lines {
		purchase, err := purchasesRepo.FindByID(ctx, scope.Single(locationID), purchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found").
					WithDetails(map[string]any{"ref_item_id": purchaseID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase")
		}
		if purchase.ID != referenceID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase does not belong to this reference").
				WithDetails(map[string]any{"ref_item_id": purchaseID})
		}
		if qty > purchase.Qty-purchase.ReturnedQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "return qty exceeds purchased qty").
				WithDetails(map[string]any{
					"ref_item_id": purchaseID,
					"purchased":   purchase.Qty,
					"returned":    purchase.ReturnedQty,
					"requested":   qty,
				})
		}

		bumped, err := purchasesRepo.AddReturnedQty(ctx, purchaseID, qty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating purchase")
		}
		if !bumped {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase changed; retry the return")
		}

		if _, err := ledger.Apply(ctx, inventory.Delta{
			ProductID:  purchase.ProductID,
			LocationID: locationID,
			ActorID:    actorID,
			VendorID:   &purchase.VendorID,
			Qty:        -qty,
			Source:     enums.StockSourceReturn,
		}); err != nil {
			return nil, err
		}

		name := "purchase " + purchaseID.String()
		if product, err := productsRepo.FindByID(ctx, scope.Single(locationID), purchase.ProductID); err == nil {
			name = product.Name
		}

		items = append(items, models.ReturnItem{
			RefItemID:      purchaseID,
			ProductID:      purchase.ProductID,
			Name:           name,
			UnitPriceCents: purchase.CostPriceCents,
			Qty:            qty,
			TotalCents:     purchase.CostPriceCents * int64(qty),
		})
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Return, error) {
	ret, err := s.repo.FindByID(ctx, sc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading return")
	}
	return ret, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, sc, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing returns")
	}
	return result, nil
}

func (s *service) IsOrderReturned(ctx context.Context, referenceID uuid.UUID) (bool, error) {
	ok, err := s.repo.HasReturns(ctx, referenceID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking returns")
	}
	return ok, nil
}

func (s *service) ReturnedItems(ctx context.Context, referenceID uuid.UUID) ([]models.ReturnItem, error) {
	items, err := s.repo.ReturnedItems(ctx, referenceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing returned items")
	}
	return items, nil
}

func (s *service) TotalReturnAmount(ctx context.Context, referenceID uuid.UUID) (int64, error) {
	total, err := s.repo.TotalReturnAmount(ctx, referenceID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing returns")
	}
	return total, nil
}
