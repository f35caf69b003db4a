package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/escuela-gastro/procurement-api/api/swagger"
	"github.com/escuela-gastro/procurement-api/internal/handler"
	"github.com/escuela-gastro/procurement-api/internal/repository"
	"github.com/escuela-gastro/procurement-api/internal/service"
	"github.com/escuela-gastro/procurement-api/pkg/cache"
	"github.com/escuela-gastro/procurement-api/pkg/config"
	"github.com/escuela-gastro/procurement-api/pkg/database"
	"github.com/escuela-gastro/procurement-api/pkg/jobs"
	"github.com/escuela-gastro/procurement-api/pkg/logger"
	corsmiddleware "github.com/escuela-gastro/procurement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/escuela-gastro/procurement-api/pkg/middleware/requestid"
	"github.com/escuela-gastro/procurement-api/pkg/storage"
)

// @title Escuela Gastro Procurement API
// @version 1.0.0
// @description Weekly ingredient procurement workflow for the culinary school.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metricsService := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Procurement.StatusCacheTTL, logr, true)

	userRepo := repository.NewUserRepository(db)
	stateRepo := repository.NewProcessStateRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	configurationRepo := repository.NewConfigurationRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "procurement-api",
	})
	userService := service.NewUserService(userRepo, validate, logr)

	notifier := service.NewProcessNotifier(logr, jobs.QueueConfig{
		Workers:    cfg.Notifier.WorkerConcurrency,
		MaxRetries: cfg.Notifier.WorkerRetries,
		Logger:     logr,
	})
	notifierCtx, stopNotifier := context.WithCancel(context.Background())
	notifier.Start(notifierCtx)
	defer func() {
		stopNotifier()
		notifier.Stop()
	}()
	notifier.Subscribe(service.ProcessObserverFunc(func(ctx context.Context, event service.ProcessEvent) error {
		logr.Info("process event",
			zap.String("type", string(event.Type)),
			zap.String("orderId", event.OrderID),
			zap.Int("week", event.WeekNumber),
		)
		return nil
	}))

	procurementService := service.NewProcurementService(
		stateRepo,
		orderRepo,
		requestRepo,
		inventoryRepo,
		supplierRepo,
		userRepo,
		notifier,
		metricsService,
		cacheService,
		validate,
		logr,
	)
	requestService := service.NewRequestService(requestRepo, userRepo, validate, logr)
	inventoryService := service.NewInventoryService(inventoryRepo, userRepo, validate, logr)
	supplierService := service.NewSupplierService(supplierRepo, validate, logr)
	configurationService := service.NewConfigurationService(configurationRepo, userRepo, validate, logr, service.ConfigurationServiceConfig{
		Defaults: map[string]string{
			"current_week_number": cfg.Configuration.CurrentWeekNumber,
			"default_currency":    cfg.Configuration.DefaultCurrency,
		},
	})

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportService := service.NewExportService(orderRepo, supplierRepo, configurationService, exportStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
		Footer:    cfg.Exports.Footer,
	}, logr, nil, nil)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go runExportCleanup(cleanupCtx, exportService, cfg.Exports.CleanupInterval, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Requests:      handler.NewRequestHandler(requestService),
		Procurement:   handler.NewProcurementHandler(procurementService, configurationService),
		Orders:        handler.NewOrderHandler(orderRepo),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		Suppliers:     handler.NewSupplierHandler(supplierService),
		Export:        handler.NewExportHandler(exportService),
		Configuration: handler.NewConfigurationHandler(configurationService),
		Metrics:       handler.NewMetricsHandler(metricsService),
	}, authService, metricsService, userRepo)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("export cleanup removed files", zap.Int("count", len(removed)))
			}
		}
	}
}
