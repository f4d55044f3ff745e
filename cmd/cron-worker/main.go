package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hbarretto/franchisepos-backend/internal/cart"
	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/metrics"
	"github.com/hbarretto/franchisepos-backend/pkg/migrate"
)

const metricsAddrDefault = ":9091"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.WaitReady(context.Background(), uint64(cfg.DB.PingAttempts)); err != nil {
		logg.Error(context.Background(), "database never became ready", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	sweeper, err := cart.NewSweeper(cart.SweeperParams{
		TxRunner:     dbClient,
		Repo:         cart.NewRepository(dbClient.DB()),
		Ledger:       inventory.NewLedger(dbClient.DB()),
		Metrics:      jobMetrics,
		Logger:       logg,
		AbandonAfter: cfg.Cart.AbandonAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart sweeper", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"sweep_interval": cfg.Cart.SweepInterval.String(),
		"abandon_after":  cfg.Cart.AbandonAfter.String(),
	})
	logg.Info(ctx, "starting cron worker")

	metricsAddr := os.Getenv("POS_METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = metricsAddrDefault
	}
	metricsServer := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	run(ctx, logg, sweeper, cfg.Cart.SweepInterval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "metrics server shutdown failed", err)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

// run sweeps once at startup, then on every tick until the context ends.
// Sweep errors are logged inside the sweeper and never stop the loop.
func run(ctx context.Context, logg *logger.Logger, sweeper *cart.Sweeper, interval time.Duration) {
	_ = sweeper.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = sweeper.Run(ctx)
		}
	}
}
