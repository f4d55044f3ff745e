package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/metrics"
)

func newTestSweeper(t *testing.T, env *cartTestEnv, abandonAfter time.Duration) *Sweeper {
	t.Helper()
	sweeper, err := NewSweeper(SweeperParams{
		TxRunner:     gormTxRunner{db: env.db},
		Repo:         env.repo,
		Ledger:       inventory.NewLedger(env.db),
		Metrics:      metrics.NewJobMetrics(prometheus.NewRegistry()),
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		AbandonAfter: abandonAfter,
	})
	require.NoError(t, err)
	return sweeper
}

func (e *cartTestEnv) backdateCart(t *testing.T, cartID uuid.UUID, to time.Time) {
	t.Helper()
	require.NoError(t, e.db.Exec("UPDATE cart_records SET updated_at = ? WHERE id = ?", to, cartID).Error)
}

func TestSweeperReleasesStaleCart(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	cart, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{
		ProductID: product.ID.String(),
		Qty:       4,
	})
	require.NoError(t, err)
	require.Equal(t, 6, env.productQty(t, product.ID))

	env.backdateCart(t, cart.ID, time.Now().UTC().Add(-3*time.Hour))

	sweeper := newTestSweeper(t, env, 2*time.Hour)
	require.NoError(t, sweeper.Run(ctx))

	// The reservation is gone and the stock is back.
	assert.Equal(t, 10, env.productQty(t, product.ID))

	var swept models.CartRecord
	require.NoError(t, env.db.First(&swept, "id = ?", cart.ID).Error)
	assert.Equal(t, enums.CartStatusAbandoned, swept.Status)

	var release models.StockUpdate
	require.NoError(t, env.db.First(&release, "product_id = ? AND source = ?", product.ID, enums.StockSourceCartRelease).Error)
	assert.Equal(t, 4, release.QtyDelta)
}

func TestSweeperIgnoresFreshCarts(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	cart, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{
		ProductID: product.ID.String(),
		Qty:       2,
	})
	require.NoError(t, err)

	sweeper := newTestSweeper(t, env, 2*time.Hour)
	require.NoError(t, sweeper.Run(ctx))

	var untouched models.CartRecord
	require.NoError(t, env.db.First(&untouched, "id = ?", cart.ID).Error)
	assert.Equal(t, enums.CartStatusActive, untouched.Status)
	assert.Equal(t, 8, env.productQty(t, product.ID))
}

func TestSweeperSkipsCartCommittedMeanwhile(t *testing.T) {
	env := newCartTestEnv(t)
	product := env.seedProduct(t, "Assam Gold 250g", 10000, 10)
	ctx := context.Background()

	cart, err := env.svc.AddItem(ctx, env.userID, env.locationID, AddItemInput{
		ProductID: product.ID.String(),
		Qty:       2,
	})
	require.NoError(t, err)
	env.backdateCart(t, cart.ID, time.Now().UTC().Add(-3*time.Hour))

	// Checkout wins the race before the sweeper claims the cart.
	_, err = env.svc.Checkout(ctx, env.userID, env.locationID, CheckoutInput{PaymentMethod: "cash"})
	require.NoError(t, err)

	sweeper := newTestSweeper(t, env, 2*time.Hour)
	require.NoError(t, sweeper.Run(ctx))

	var committed models.CartRecord
	require.NoError(t, env.db.First(&committed, "id = ?", cart.ID).Error)
	assert.Equal(t, enums.CartStatusCommitted, committed.Status)

	// Sold units stay sold; nothing was released.
	assert.Equal(t, 8, env.productQty(t, product.ID))
}
