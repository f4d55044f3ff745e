package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbarretto/franchisepos-backend/api/controllers"
	"github.com/hbarretto/franchisepos-backend/api/middleware"
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
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/metrics"
	"github.com/hbarretto/franchisepos-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers. Keeping it a
// struct spares main from a thirty-parameter call.
type Services struct {
	Sessions   session.AccessSessionChecker
	Auth       auth.Service
	ResetPass  auth.ResetPasswordTrigger
	Users      users.Service
	Locations  locations.Service
	Categories categories.Service
	Vendors    vendors.Service
	Products   products.Service
	Inventory  inventory.Service
	Cart       cart.Service
	Sales      sales.Service
	Purchases  purchases.Service
	Returns    returns.Service
	Reports    reports.Service
	Receipts   *receipts.Renderer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	staffRoles := []enums.UserRole{enums.UserRoleSuperadmin, enums.UserRoleAdmin}
	inventoryRoles := []enums.UserRole{enums.UserRoleSuperadmin, enums.UserRoleAdmin, enums.UserRoleManager}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(svcs.ResetPass, logg))
		r.With(middleware.Auth(cfg.JWT, svcs.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))
		r.Use(middleware.Scope(svcs.Locations, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/locations", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleSuperadmin))
			r.Get("/", controllers.LocationsList(svcs.Locations, logg))
			r.Post("/", controllers.LocationsCreate(svcs.Locations, logg))
			r.Get("/{locationId}", controllers.LocationsGet(svcs.Locations, logg))
			r.Patch("/{locationId}", controllers.LocationsUpdate(svcs.Locations, logg))
			r.Delete("/{locationId}", controllers.LocationsDeactivate(svcs.Locations, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, staffRoles...))
			r.Get("/", controllers.UsersList(svcs.Users, logg))
			r.Post("/", controllers.UsersCreate(svcs.Users, logg))
			r.Get("/{userId}", controllers.UsersGet(svcs.Users, logg))
			r.Patch("/{userId}/active", controllers.UsersSetActive(svcs.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(svcs.Products, logg))
			r.Get("/{productId}", controllers.ProductsGet(svcs.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, inventoryRoles...))
				r.Post("/", controllers.ProductsCreate(svcs.Products, logg))
				r.Patch("/{productId}", controllers.ProductsUpdate(svcs.Products, logg))
				r.Delete("/{productId}", controllers.ProductsDeactivate(svcs.Products, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoriesList(svcs.Categories, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, inventoryRoles...))
				r.Post("/", controllers.CategoriesCreate(svcs.Categories, logg))
				r.Patch("/{categoryId}", controllers.CategoriesUpdate(svcs.Categories, logg))
				r.Delete("/{categoryId}", controllers.CategoriesDeactivate(svcs.Categories, logg))
			})
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.VendorsList(svcs.Vendors, logg))
			r.Get("/{vendorId}", controllers.VendorsGet(svcs.Vendors, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, inventoryRoles...))
				r.Post("/", controllers.VendorsCreate(svcs.Vendors, logg))
				r.Patch("/{vendorId}", controllers.VendorsUpdate(svcs.Vendors, logg))
				r.Delete("/{vendorId}", controllers.VendorsDeactivate(svcs.Vendors, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Post("/checkout", controllers.CartCheckout(svcs.Cart, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(svcs.Sales, logg))
			r.Get("/{saleId}", controllers.SalesGet(svcs.Sales, logg))
			r.Get("/{saleId}/receipt", controllers.SalesReceipt(svcs.Sales, svcs.Receipts, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Post("/", controllers.ReturnsCreate(svcs.Returns, logg))
			r.Get("/", controllers.ReturnsList(svcs.Returns, logg))
			r.Get("/reference/{referenceId}", controllers.ReturnsReference(svcs.Returns, logg))
			r.Get("/{returnId}", controllers.ReturnsGet(svcs.Returns, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, inventoryRoles...))
			r.Post("/", controllers.PurchasesCreate(svcs.Purchases, logg))
			r.Get("/", controllers.PurchasesList(svcs.Purchases, logg))
			r.Get("/{purchaseId}", controllers.PurchasesGet(svcs.Purchases, logg))
		})

		r.Route("/stock-updates", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, inventoryRoles...))
			r.Post("/", controllers.StockUpdatesCreate(svcs.Inventory, logg))
			r.Get("/", controllers.StockUpdatesList(svcs.Inventory, logg))
		})

		// Every role reads the summary; scope already narrows it to the
		// caller's own location.
		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.ReportsSummary(svcs.Reports, logg))
		})
	})

	return r
}
