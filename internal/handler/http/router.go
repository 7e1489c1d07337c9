package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinoddotcom/ecom-learn-backend/internal/auth"
	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	"github.com/vinoddotcom/ecom-learn-backend/internal/service"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/health"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/middleware"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	UserService     *service.UserService
	ProductService  *service.ProductService
	ReviewService   *service.ReviewService
	OrderService    *service.OrderService
	JWTManager      *auth.JWTManager
	HealthHandler   *health.Handler
	Logger          *slog.Logger
	CORS            middleware.CORSConfig
	ProductsPerPage int
}

// NewRouter creates a chi router with all backend routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Tracing("shop-backend"))
	r.Use(middleware.PrometheusMetrics("shop"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.JWTManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(cfg.UserService, cfg.Logger)
	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	productHandler := NewProductHandler(cfg.ProductService, cfg.ProductsPerPage, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.ReviewService, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.OrderService, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.Refresh)
			r.Post("/auth/logout", authHandler.Logout)
		})

		// Public catalog endpoints
		r.Group(func(r chi.Router) {
			r.Get("/products", productHandler.List)
			r.Get("/products/{id}", productHandler.Get)
			r.Get("/products/{id}/reviews", reviewHandler.List)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/users/me", userHandler.GetProfile)
			r.Put("/users/me", userHandler.UpdateProfile)

			r.Put("/products/{id}/reviews", reviewHandler.Upsert)
			r.Delete("/products/{id}/reviews/{reviewId}", reviewHandler.Delete)

			r.Post("/orders", orderHandler.Create)
			r.Get("/orders", orderHandler.ListMine)
			r.Get("/orders/{id}", orderHandler.Get)
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/admin/products", productHandler.Create)
			r.Put("/admin/products/{id}", productHandler.Update)
			r.Delete("/admin/products/{id}", productHandler.Delete)

			r.Get("/admin/orders", orderHandler.ListAll)
			r.Put("/admin/orders/{id}/status", orderHandler.UpdateStatus)
			r.Delete("/admin/orders/{id}", orderHandler.Delete)
		})
	})

	return r
}
