// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gaiafact/internal/domain/approval"
	"gaiafact/internal/domain/auth"
	"gaiafact/internal/domain/invoice"
	"gaiafact/internal/domain/numbering"
	"gaiafact/internal/domain/product"
	"gaiafact/internal/infrastructure/http/v1/handlers"
	"gaiafact/internal/infrastructure/http/v1/middleware"
	"gaiafact/internal/infrastructure/storage/postgres"
	"gaiafact/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Pool   *pgxpool.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService      *auth.Service
	ProductService   *product.Service
	ApprovalService  *approval.Service
	InvoiceService   *invoice.Service
	NumberingService *numbering.Service
	AuditStore       *postgres.AuditStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Probes and metrics (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	productHandler := handlers.NewProductHandler(base, cfg.ProductService, cfg.ApprovalService)
	changeRequestHandler := handlers.NewChangeRequestHandler(base, cfg.ApprovalService)
	invoiceHandler := handlers.NewInvoiceHandler(base, cfg.InvoiceService)
	numberingHandler := handlers.NewNumberingHandler(base, cfg.NumberingService)
	auditHandler := handlers.NewAuditHandler(base, cfg.AuditStore)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		products := protected.Group("/products")
		{
			products.GET("", productHandler.List)
			products.POST("", productHandler.Create)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
		}

		// Review queue: only admins resolve requests.
		reviewers := protected.Group("/change-requests")
		reviewers.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
		{
			reviewers.GET("", changeRequestHandler.List)
			reviewers.GET("/:id", changeRequestHandler.Get)
			reviewers.POST("/:id/:decision", changeRequestHandler.Resolve)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.List)
			invoices.POST("", invoiceHandler.Create)
			invoices.GET("/:id", invoiceHandler.Get)
		}

		numberingGroup := protected.Group("/numbering")
		{
			numberingGroup.GET("/:prefix",
				middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin),
				numberingHandler.Get)
			numberingGroup.PUT("/:prefix",
				middleware.RequireRole(auth.RoleSuperadmin),
				numberingHandler.LoadRange)
		}

		auditGroup := protected.Group("/audit")
		auditGroup.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
		{
			auditGroup.GET("/products/:id", auditHandler.ProductHistory)
		}

		users := protected.Group("/users")
		users.Use(middleware.RequireRole(auth.RoleSuperadmin))
		{
			users.PUT("/:id/role", authHandler.SetRole)
		}
	}

	return router
}
