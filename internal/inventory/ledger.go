// Package inventory is the single write path for product stock. Every change
// lands as one conditional quantity update plus one immutable stock_updates
// row, so the ledger always sums to the live quantity.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

// Delta is one signed stock movement.
type Delta struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	ActorID    uuid.UUID
	VendorID   *uuid.UUID
	Qty        int
	Source     enums.StockSource
	Note       *string
}

// Ledger applies stock deltas. Run it inside the transaction of whichever
// operation caused the movement so the quantity and the fact row commit
// together.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Apply(ctx context.Context, delta Delta) (*models.StockUpdate, error)
}

type ledger struct {
	db *gorm.DB
}

// NewLedger returns a ledger bound to the provided database.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

// Apply adjusts the product quantity and records the movement. The guard in
// the WHERE clause makes the update atomic: two concurrent sales cannot both
// take the last unit, because the losing update matches zero rows.
func (l *ledger) Apply(ctx context.Context, delta Delta) (*models.StockUpdate, error) {
	if delta.ProductID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	if delta.LocationID == uuid.Nil {
		return nil, fmt.Errorf("location id is required")
	}
	if delta.ActorID == uuid.Nil {
		return nil, fmt.Errorf("actor id is required")
	}
	if delta.Qty == 0 {
		return nil, fmt.Errorf("qty delta cannot be zero")
	}
	if !delta.Source.IsValid() {
		return nil, fmt.Errorf("invalid stock source %q", delta.Source)
	}

	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND location_id = ?", delta.ProductID, delta.LocationID).
		Where("quantity + ? >= 0", delta.Qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta.Qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, l.classifyMiss(ctx, delta)
	}

	entry := &models.StockUpdate{
		ID:         uuid.New(),
		ProductID:  delta.ProductID,
		LocationID: delta.LocationID,
		VendorID:   delta.VendorID,
		CreatedBy:  delta.ActorID,
		QtyDelta:   delta.Qty,
		Source:     delta.Source,
		Note:       delta.Note,
	}
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// classifyMiss distinguishes a missing product from a stock shortfall so
// callers can surface the right error.
func (l *ledger) classifyMiss(ctx context.Context, delta Delta) error {
	var product models.Product
	err := l.db.WithContext(ctx).
		Where("id = ? AND location_id = ?", delta.ProductID, delta.LocationID).
		First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found at this location")
	}
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": delta.ProductID,
			"available":  product.Quantity,
			"requested":  -delta.Qty,
		})
}
