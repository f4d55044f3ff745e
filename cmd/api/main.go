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

	"github.com/hbarretto/franchisepos-backend/api/routes"
	"github.com/hbarretto/franchisepos-backend/internal/auth"
	"github.com/hbarretto/franchisepos-backend/internal/cart"
	"github.com/hbarretto/franchisepos-backend/internal/categories"
	"github.com/hbarretto/franchisepos-backend/internal/inventory"
	"github.com/hbarretto/franchisepos-backend/internal/locations"
	"github.com/hbarretto/franchisepos-backend/internal/products"
	"github.com/hbarretto/franchisepos-backend/internal/purchases"
	"github.com/hbarretto/franchisepos-backend/internal/receipts"
	"github.com/hbarretto/franchisepos-backend/internal/reports"
	"github.com/hbarretto/franchisepos-backend/internal/returns"
	"github.com/hbarretto/franchisepos-backend/internal/sales"
	"github.com/hbarretto/franchisepos-backend/internal/users"
	"github.com/hbarretto/franchisepos-backend/internal/vendors"
	"github.com/hbarretto/franchisepos-backend/pkg/auth/session"
	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/metrics"
	"github.com/hbarretto/franchisepos-backend/pkg/migrate"
	"github.com/hbarretto/franchisepos-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, promhttp.Handler(), svcs),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager) (routes.Services, error) {
	gormDB := dbClient.DB()

	locationsRepo := locations.NewRepository(gormDB)
	locationsService, err := locations.NewService(locationsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	usersRepo := users.NewRepository(gormDB)
	usersService, err := users.NewService(usersRepo, locationsService, cfg.Password, logg)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	categoriesRepo := categories.NewRepository(gormDB)
	categoriesService, err := categories.NewService(categoriesRepo)
	if err != nil {
		return routes.Services{}, err
	}

	vendorsRepo := vendors.NewRepository(gormDB)
	vendorsService, err := vendors.NewService(vendorsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	ledger := inventory.NewLedger(gormDB)
	history := inventory.NewHistory(gormDB)
	inventoryService, err := inventory.NewService(dbClient, ledger, history)
	if err != nil {
		return routes.Services{}, err
	}

	productsRepo := products.NewRepository(gormDB)
	productsService, err := products.NewService(dbClient, productsRepo, categoriesRepo, ledger)
	if err != nil {
		return routes.Services{}, err
	}

	salesRepo := sales.NewRepository(gormDB)
	salesService, err := sales.NewService(salesRepo)
	if err != nil {
		return routes.Services{}, err
	}

	cartRepo := cart.NewRepository(gormDB)
	cartService, err := cart.NewService(cart.ServiceParams{
		TxRunner:      dbClient,
		Repo:          cartRepo,
		ProductRepo:   productsRepo,
		Ledger:        ledger,
		SalesRepo:     salesRepo,
		InvoiceIssuer: sales.NewInvoiceIssuer(gormDB),
		TaxConfig:     cfg.Tax,
	})
	if err != nil {
		return routes.Services{}, err
	}

	purchasesRepo := purchases.NewRepository(gormDB)
	purchasesService, err := purchases.NewService(dbClient, purchasesRepo, vendorsRepo, ledger)
	if err != nil {
		return routes.Services{}, err
	}

	returnsService, err := returns.NewService(returns.ServiceParams{
		TxRunner:      dbClient,
		Repo:          returns.NewRepository(gormDB),
		SalesRepo:     salesRepo,
		PurchasesRepo: purchasesRepo,
		ProductsRepo:  productsRepo,
		Ledger:        ledger,
	})
	if err != nil {
		return routes.Services{}, err
	}

	reportsService, err := reports.NewService(reports.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Sessions:   sessionManager,
		Auth:       authService,
		ResetPass:  usersService,
		Users:      usersService,
		Locations:  locationsService,
		Categories: categoriesService,
		Vendors:    vendorsService,
		Products:   productsService,
		Inventory:  inventoryService,
		Cart:       cartService,
		Sales:      salesService,
		Purchases:  purchasesService,
		Returns:    returnsService,
		Reports:    reportsService,
		Receipts:   receipts.NewRenderer(cfg.Business),
	}, nil
}
