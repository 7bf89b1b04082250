package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/auth"
	"github.com/Raymond9734/storefront-backend/internal/observability/metrics"
	"github.com/Raymond9734/storefront-backend/internal/storage"
)

// RouterConfig holds everything the API router serves
type RouterConfig struct {
	Health    *HealthHandler
	Customers *CustomerHandler
	Products  *ProductHandler
	Users     *UserHandler
	Tokens    *auth.TokenManager
	UploadDir string
	Logger    *zap.Logger
}

// NewRouter registers every route and the shared middleware chain
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(CORSMiddleware)
	r.Use(metrics.HTTPMetricsMiddleware)

	// Register routes
	r.Get("/health", cfg.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.UploadDir != "" {
		files := http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(cfg.UploadDir)))
		r.Handle(storage.PublicPrefix+"*", files)
	}

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", cfg.Customers.CreateCustomer)
		r.Post("/login", cfg.Customers.Login)
		r.Get("/", cfg.Customers.ListCustomers)
		r.Get("/{id}", cfg.Customers.GetCustomer)
		r.Put("/{id}", cfg.Customers.UpdateCustomer)
		r.Delete("/{id}", cfg.Customers.DeleteCustomer)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", cfg.Products.CreateProduct)
		r.Get("/", cfg.Products.ListProducts)
		r.Get("/featured", cfg.Products.ListFeatured)
		r.Get("/low-stock", cfg.Products.ListLowStock)
		r.Get("/{id}", cfg.Products.GetProduct)
		r.Put("/{id}", cfg.Products.UpdateProduct)
		r.Delete("/{id}", cfg.Products.DeleteProduct)
		r.Post("/{id}/upload-image", cfg.Products.UploadImage)
		r.Post("/{id}/upload-images", cfg.Products.UploadImages)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(OptionalAuth(cfg.Tokens)).Post("/register", cfg.Users.Register)
		r.Post("/login", cfg.Users.Login)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(cfg.Tokens))

			r.With(RequireAdmin).Get("/", cfg.Users.ListUsers)
			r.With(RequireAdmin).Get("/{id}", cfg.Users.GetUser)
			r.Put("/{id}", cfg.Users.UpdateUser)
			r.Delete("/{id}", cfg.Users.DeleteUser)
		})
	})

	return r
}
