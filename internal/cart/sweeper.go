package cart

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/metrics"
)

const sweeperJobName = "cart_sweeper"

var abandonNote = "cart abandoned"

// Sweeper abandons carts that sat idle past the configured window and gives
// their reserved units back to stock. Each cart is swept in its own
// transaction so one poisoned cart cannot block the rest of the batch.
type Sweeper struct {
	tx           txRunner
	repo         Repository
	ledger       inventory.Ledger
	metrics      *metrics.JobMetrics
	log          *logger.Logger
	abandonAfter time.Duration
}

// SweeperParams bundles the dependencies required to build a sweeper.
type SweeperParams struct {
	TxRunner     txRunner
	Repo         Repository
	Ledger       inventory.Ledger
	Metrics      *metrics.JobMetrics
	Logger       *logger.Logger
	AbandonAfter time.Duration
}

// NewSweeper wires the cart sweeper.
func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.AbandonAfter <= 0 {
		return nil, fmt.Errorf("abandon window must be positive")
	}
	return &Sweeper{
		tx:           params.TxRunner,
		repo:         params.Repo,
		ledger:       params.Ledger,
		metrics:      params.Metrics,
		log:          params.Logger,
		abandonAfter: params.AbandonAfter,
	}, nil
}

// Run sweeps one batch of stale carts. Failures are aggregated so the caller
// sees every cart that could not be released, not just the first.
func (s *Sweeper) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := start.UTC().Add(-s.abandonAfter)

	stale, err := s.repo.ListStaleActive(ctx, cutoff)
	if err != nil {
		s.metrics.IncFailure(sweeperJobName)
		return fmt.Errorf("listing stale carts: %w", err)
	}

	var errs error
	swept := 0
	for _, cart := range stale {
		if err := s.sweepOne(ctx, cart); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cart %s: %w", cart.ID, err))
			continue
		}
		swept++
	}

	s.metrics.ObserveDuration(sweeperJobName, time.Since(start))
	s.metrics.AddSweptCarts(swept)
	if errs != nil {
		s.metrics.IncFailure(sweeperJobName)
		s.log.Error(ctx, "cart sweep finished with failures", errs)
	} else {
		s.metrics.IncSuccess(sweeperJobName)
	}
	if swept > 0 {
		s.log.Info(s.log.WithField(ctx, "swept", swept), "abandoned stale carts")
	}
	return errs
}

func (s *Sweeper) sweepOne(ctx context.Context, cart models.CartRecord) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Claim the cart first; a checkout racing this sweep wins the status
		// transition and the sweep backs off without touching stock.
		ok, err := repo.TransitionStatus(ctx, cart.ID, enums.CartStatusActive, enums.CartStatusAbandoned)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		ledger := s.ledger.WithTx(tx)
		for _, item := range cart.Items {
			if _, err := ledger.Apply(ctx, inventory.Delta{
				ProductID:  item.ProductID,
				LocationID: cart.LocationID,
				ActorID:    cart.UserID,
				Qty:        item.Qty,
				Source:     enums.StockSourceCartRelease,
				Note:       &abandonNote,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
