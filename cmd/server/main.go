// Package main is the entry point for the GaiaFact API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gaiafact/internal/domain/approval"
	"gaiafact/internal/domain/auth"
	"gaiafact/internal/domain/invoice"
	"gaiafact/internal/domain/numbering"
	"gaiafact/internal/domain/product"
	v1 "gaiafact/internal/infrastructure/http/v1"
	infranotify "gaiafact/internal/infrastructure/notify"
	"gaiafact/internal/infrastructure/storage/postgres"
	"gaiafact/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting gaiafact server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	counterRepo := postgres.NewCounterRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)
	changeRequestRepo := postgres.NewChangeRequestRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)
	invoiceRepo := postgres.NewInvoiceRepo(txManager)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	numberingService := numbering.NewService(counterRepo)
	productService := product.NewService(productRepo)
	approvalService := approval.NewService(
		productRepo,
		changeRequestRepo,
		auditStore,
		infranotify.NewLogNotifier(),
		authService,
	)
	invoiceService := invoice.NewService(invoiceRepo, productRepo, numberingService, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool.Pool,
		Logger:           log,
		JWTValidator:     jwtService,
		AuthService:      authService,
		ProductService:   productService,
		ApprovalService:  approvalService,
		InvoiceService:   invoiceService,
		NumberingService: numberingService,
		AuditStore:       auditStore,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
