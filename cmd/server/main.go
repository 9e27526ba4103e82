package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/openbooks/backend/internal/application/billing"
	paymentsapp "github.com/openbooks/backend/internal/application/payments"
	"github.com/openbooks/backend/internal/infrastructure/cache"
	"github.com/openbooks/backend/internal/infrastructure/config"
	"github.com/openbooks/backend/internal/infrastructure/logger"
	"github.com/openbooks/backend/internal/infrastructure/persistence"
	"github.com/openbooks/backend/internal/interfaces/http/handler"
	"github.com/openbooks/backend/internal/interfaces/http/middleware"
	"github.com/openbooks/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting OpenBooks Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Tax rate cache: Redis when enabled, in-process otherwise
	var taxRateCache billingapp.TaxRateCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		defer func() {
			_ = redisClient.Close()
		}()
		taxRateCache = cache.NewRedisTaxRateCache(redisClient, cfg.Cache.TaxRateTTL, log)
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	} else {
		taxRateCache = cache.NewInMemoryTaxRateCache(cfg.Cache.TaxRateTTL)
	}

	// Repositories
	taxRateRepo := persistence.NewGormTaxRateRepository(db.DB)
	estimateRepo := persistence.NewGormEstimateRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentEventRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Application services
	taxRateService := billingapp.NewTaxRateService(taxRateRepo, taxRateCache, log)
	estimateService := billingapp.NewEstimateService(estimateRepo, invoiceRepo, taxRateService)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, taxRateService)
	billService := billingapp.NewBillService(billRepo, taxRateService)
	paymentService := paymentsapp.NewPaymentService(paymentRepo, invoiceRepo, billRepo, uow, log)

	// Handlers
	taxRateHandler := handler.NewTaxRateHandler(taxRateService)
	estimateHandler := handler.NewEstimateHandler(estimateService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	billHandler := handler.NewBillHandler(billService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Gin engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.TenantMiddleware(),
	)

	engine.GET("/health", healthHandler(db))

	// Routes
	billingRoutes := router.NewDomainGroup("billing", "")
	billingRoutes.
		GET("/tax-rates", taxRateHandler.List).
		GET("/tax-rates/default", taxRateHandler.GetDefault).
		POST("/tax-rates", taxRateHandler.Create).
		PUT("/tax-rates/:id", taxRateHandler.Update).
		DELETE("/tax-rates/:id", taxRateHandler.Delete)

	billingRoutes.
		POST("/estimates", estimateHandler.Create).
		GET("/estimates", estimateHandler.List).
		GET("/estimates/:id", estimateHandler.GetByID).
		PUT("/estimates/:id", estimateHandler.Update).
		DELETE("/estimates/:id", estimateHandler.Delete).
		POST("/estimates/:id/items", estimateHandler.AddItem).
		PUT("/estimates/:id/items/:itemId", estimateHandler.UpdateItem).
		DELETE("/estimates/:id/items/:itemId", estimateHandler.RemoveItem).
		PUT("/estimates/:id/discount", estimateHandler.SetDiscount).
		PUT("/estimates/:id/shipping", estimateHandler.SetShipping).
		POST("/estimates/:id/send", estimateHandler.MarkSent).
		POST("/estimates/:id/convert", estimateHandler.Convert)

	billingRoutes.
		POST("/invoices", invoiceHandler.Create).
		GET("/invoices", invoiceHandler.List).
		GET("/invoices/open", invoiceHandler.ListOpen).
		GET("/invoices/summary", invoiceHandler.CustomerSummary).
		GET("/invoices/:id", invoiceHandler.GetByID).
		PUT("/invoices/:id", invoiceHandler.Update).
		DELETE("/invoices/:id", invoiceHandler.Delete).
		POST("/invoices/:id/items", invoiceHandler.AddItem).
		PUT("/invoices/:id/items/:itemId", invoiceHandler.UpdateItem).
		DELETE("/invoices/:id/items/:itemId", invoiceHandler.RemoveItem).
		PUT("/invoices/:id/discount", invoiceHandler.SetDiscount).
		PUT("/invoices/:id/shipping", invoiceHandler.SetShipping).
		POST("/invoices/:id/cancel", invoiceHandler.Cancel)

	billingRoutes.
		POST("/bills", billHandler.Create).
		GET("/bills", billHandler.List).
		GET("/bills/open", billHandler.ListOpen).
		GET("/bills/:id", billHandler.GetByID).
		PUT("/bills/:id", billHandler.Update).
		DELETE("/bills/:id", billHandler.Delete).
		POST("/bills/:id/items", billHandler.AddItem).
		PUT("/bills/:id/items/:itemId", billHandler.UpdateItem).
		DELETE("/bills/:id/items/:itemId", billHandler.RemoveItem).
		POST("/bills/:id/cancel", billHandler.Cancel)

	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.
		POST("/received", paymentHandler.Receive).
		POST("/sent", paymentHandler.Send).
		GET("", paymentHandler.List).
		GET("/:id", paymentHandler.GetByID)

	router.NewRouter(engine).
		Register(billingRoutes).
		Register(paymentRoutes).
		Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
