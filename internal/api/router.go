package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/app"
	iauth "github.com/hazemkhaled/digimarket/internal/auth"
	"github.com/hazemkhaled/digimarket/internal/handlers"
	"github.com/hazemkhaled/digimarket/internal/middleware"
	"github.com/hazemkhaled/digimarket/internal/services"
)

// Services bundles the service layer dependencies consumed by the router.
type Services struct {
	Authenticator *iauth.LocalAuthenticator
	Sessions      *iauth.SessionService
	Resets        *services.PasswordResetService
	Products      *services.ProductService
	Orders        *services.OrderService
	Users         *services.UserService
	Notifier      *services.NotificationService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svcs.Authenticator == nil || svcs.Sessions == nil || svcs.Resets == nil ||
		svcs.Products == nil || svcs.Orders == nil || svcs.Users == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	r.NoRoute(middleware.NotFoundHandler)

	// Health and metrics endpoints (public)
	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(db, svcs.Authenticator, svcs.Sessions, svcs.Notifier)
	resetHandler := handlers.NewPasswordResetHandler(svcs.Resets)
	productHandler := handlers.NewProductHandler(svcs.Products)
	orderHandler := handlers.NewOrderHandler(svcs.Orders, svcs.Notifier)
	userHandler := handlers.NewUserHandler(svcs.Users)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		// Reset endpoints carry a tighter limit: they trigger email delivery.
		reset := auth.Group("/password-reset", middleware.RateLimit(10, time.Minute))
		{
			reset.POST("/request", resetHandler.Request)
			reset.POST("/confirm", resetHandler.Confirm)
		}
	}

	// Public catalog
	products := r.Group("/api/products")
	{
		products.GET("", productHandler.List)
		products.GET("/categories", productHandler.Categories)
		products.GET("/:id", productHandler.Get)
	}

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	// Authenticated auth routes
	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	// Orders
	orders := api.Group("/orders")
	{
		orders.POST("", orderHandler.Checkout)
		orders.GET("", orderHandler.ListMine)
		orders.GET("/:id", orderHandler.Get)
	}

	// Admin surface
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/products", productHandler.ListAdmin)
		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)

		admin.GET("/orders", orderHandler.ListAll)
		admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)

		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PATCH("/users/:id/admin", userHandler.SetAdmin)
		admin.PATCH("/users/:id/active", userHandler.SetActive)
	}

	return r, nil
}
