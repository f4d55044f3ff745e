package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AdjustInput is a manual stock correction, e.g. after a physical count.
type AdjustInput struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	QtyDelta  int     `json:"qty_delta" validate:"required"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=300"`
}

// Service exposes manual adjustments and ledger history. Sales, carts,
// purchases and returns write to the ledger through their own services.
type Service interface {
	Adjust(ctx context.Context, actorID, locationID uuid.UUID, input AdjustInput) (*models.StockUpdate, error)
	List(ctx context.Context, sc scope.Scope, query HistoryQuery) (*HistoryResult, error)
}

type service struct {
	tx      txRunner
	ledger  Ledger
	history History
}

// NewService wires the inventory service.
func NewService(tx txRunner, ledger Ledger, history History) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if history == nil {
		return nil, fmt.Errorf("history required")
	}
	return &service{tx: tx, ledger: ledger, history: history}, nil
}

// Adjust applies a signed manual correction. Negative deltas are CAS-guarded
// like every other movement, so a correction can never take stock below zero.
func (s *service) Adjust(ctx context.Context, actorID, locationID uuid.UUID, input AdjustInput) (*models.StockUpdate, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	if input.QtyDelta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty delta cannot be zero")
	}

	var entry *models.StockUpdate
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.ledger.WithTx(tx).Apply(ctx, Delta{
			ProductID:  productID,
			LocationID: locationID,
			ActorID:    actorID,
			Qty:        input.QtyDelta,
			Source:     enums.StockSourceAdjustment,
			Note:       input.Note,
		})
		if err != nil {
			return err
		}
		entry = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List validates the optional source filter and pages through the ledger.
func (s *service) List(ctx context.Context, sc scope.Scope, query HistoryQuery) (*HistoryResult, error) {
	if query.Source != "" {
		if _, err := enums.ParseStockSource(query.Source); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock source filter")
		}
	}
	result, err := s.history.List(ctx, sc, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock updates")
	}
	return result, nil
}
