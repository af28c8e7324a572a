package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/erp/sallabridge/internal/application/sync"
	webhookapp "github.com/erp/sallabridge/internal/application/webhook"
	"github.com/erp/sallabridge/internal/infrastructure/config"
	"github.com/erp/sallabridge/internal/infrastructure/lock"
	"github.com/erp/sallabridge/internal/infrastructure/logger"
	"github.com/erp/sallabridge/internal/infrastructure/persistence"
	"github.com/erp/sallabridge/internal/infrastructure/remote"
	"github.com/erp/sallabridge/internal/infrastructure/scheduler"
	"github.com/erp/sallabridge/internal/infrastructure/storage"
	"github.com/erp/sallabridge/internal/interfaces/http/handler"
	"github.com/erp/sallabridge/internal/interfaces/http/middleware"
	"github.com/erp/sallabridge/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Salla Bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	linkRepo := persistence.NewGormLinkRepository(db.DB)
	fieldStateRepo := persistence.NewGormFieldStateRepository(db.DB)
	manifestRepo := persistence.NewGormManifestRepository(db.DB)
	orderStatusRepo := persistence.NewGormOrderStatusRepository(db.DB)
	deliveryRepo := persistence.NewGormWebhookDeliveryRepository(db.DB)
	syncOpRepo := persistence.NewGormSyncOperationRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)

	// Sync locks: Redis when configured, in-process otherwise
	lockFactory := lock.NewFactory(cfg.Redis, lock.WithLogger(log))
	locker, err := lockFactory.CreateLocker()
	if err != nil {
		log.Fatal("Failed to create sync locker", zap.Error(err))
	}

	// Attachment storage for product image bytes
	attachments, err := storage.NewAttachmentStore(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}

	// Platform API access
	tokenManager, err := remote.NewTokenManager(&remote.OAuthConfig{
		ClientID:       cfg.Salla.ClientID,
		ClientSecret:   cfg.Salla.ClientSecret,
		RedirectURI:    cfg.Salla.RedirectURI,
		AuthBase:       cfg.Salla.AuthBase,
		Scope:          cfg.Salla.Scope,
		TimeoutSeconds: cfg.Salla.TimeoutSeconds,
	}, credentialRepo, cfg.Salla.StoreID, log)
	if err != nil {
		log.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	apiClient := remote.NewClient(&remote.ClientConfig{
		APIBase:        cfg.Salla.APIBase,
		TimeoutSeconds: cfg.Salla.TimeoutSeconds,
		PerPage:        cfg.Salla.PerPage,
	}, tokenManager, log)

	// Sync pipeline
	statusTracker := syncapp.NewStatusTracker(fieldStateRepo)
	stockAllocator := syncapp.NewStockAllocator(stockRepo,
		cfg.Sync.PrimaryWarehouse, cfg.Sync.SecondaryWarehouse)
	imageReconciler := syncapp.NewImageReconciler(manifestRepo, attachments, apiClient, log)
	productPayloads := syncapp.NewProductPayloadBuilder(categoryRepo, linkRepo, log)
	categoryPayloads := syncapp.NewCategoryPayloadBuilder(linkRepo)

	productSyncer := syncapp.NewProductSyncer(productRepo, linkRepo, apiClient,
		productPayloads, statusTracker, imageReconciler, stockAllocator, syncOpRepo, log)
	categorySyncer := syncapp.NewCategorySyncer(categoryRepo, linkRepo, apiClient,
		categoryPayloads, syncOpRepo, log)
	customerSyncer := syncapp.NewCustomerSyncer(customerRepo, linkRepo, syncOpRepo,
		cfg.Sync.CustomerOptionLabels, log)
	orderSyncer := syncapp.NewOrderSyncer(orderRepo, productRepo, customerSyncer,
		linkRepo, apiClient, stockAllocator, orderStatusRepo, syncOpRepo,
		cfg.Sync.DefaultCurrency, cfg.Sync.PostFulfillmentStatusSlug, log)

	importer := syncapp.NewBatchImporter(apiClient, productSyncer, categorySyncer,
		customerSyncer, orderSyncer, cfg.Salla.PerPage, log)

	syncService := syncapp.NewService(productSyncer, categorySyncer, customerSyncer,
		orderSyncer, importer, statusTracker, locker, log)

	// Webhook intake
	webhookRegistry := webhookapp.NewRegistry()
	webhookapp.RegisterSyncHandlers(webhookRegistry, syncService,
		cfg.Sync.InboundOrdersEnabled, log)
	webhookGateway := webhookapp.NewGateway(cfg.Salla.WebhookSecret,
		webhookRegistry, deliveryRepo, log)

	// Initialize Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log, "/api/v1/system/health"))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Register routes
	r := router.NewRouter(engine)
	r.Register(
		handler.NewSystemHandler(cfg.App.Name),
		handler.NewSyncHandler(syncService, importer),
		handler.NewWebhookHandler(webhookGateway),
		handler.NewOAuthHandler(tokenManager),
	)
	r.Setup()

	// Background sync scheduler
	var (
		jobScheduler *scheduler.Scheduler
		trigger      *scheduler.PeriodicTrigger
	)
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewSyncExecutor(syncService, productRepo, log)
		jobScheduler = scheduler.NewScheduler(cfg.Scheduler, executor, log)
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}

		trigger = scheduler.NewPeriodicTrigger(jobScheduler,
			cfg.Scheduler.OrderPullInterval, cfg.Scheduler.StockPushInterval,
			cfg.Scheduler.RetryAttempts, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start periodic trigger", zap.Error(err))
		}
		log.Info("Sync scheduler started",
			zap.Duration("order_pull_interval", cfg.Scheduler.OrderPullInterval),
			zap.Duration("stock_push_interval", cfg.Scheduler.StockPushInterval),
		)
	} else {
		log.Info("Sync scheduler disabled")
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if trigger != nil {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Error("Periodic trigger shutdown error", zap.Error(err))
		}
	}
	if jobScheduler != nil {
		if err := jobScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler shutdown error", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
