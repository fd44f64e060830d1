package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/controller"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/internal/router"
	"github.com/ikkim/sangjo-partner-backend/internal/scheduler"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/internal/storage"
	ws "github.com/ikkim/sangjo-partner-backend/internal/websocket"
	"github.com/ikkim/sangjo-partner-backend/pkg/catalog"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/masker"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

const (
	shutdownTimeout = 10 * time.Second
	syncDebounce    = 3 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting Sangjo Partner Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})
	if err := masker.LogConfigs(&cfg.Server, &cfg.Database, &cfg.JWT, &cfg.Redis, &cfg.Sheets, &cfg.Catalog, &cfg.S3); err != nil {
		logger.Warn("Failed to log configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := util.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if _, err := db.Seed(cfg.Seed); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis 는 선택. 꺼져 있으면 블랙리스트는 프로세스 메모리에 남는다
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, using in-memory token blacklist")
	} else if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, using in-memory token blacklist", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Initialize repositories
	gdb := db.GetDB()
	partnerRepo := repository.NewPartnerRepository(gdb)
	applicationRepo := repository.NewApplicationRepository(gdb)
	requestRepo := repository.NewPartnerRequestRepository(gdb)
	adminRepo := repository.NewAdminRepository(gdb)
	settlementRepo := repository.NewSettlementRepository(gdb)

	// Google Sheets 미러 (환경변수가 없으면 꺼진 채로 뜬다)
	workbook, err := sheets.NewWorkbook(ctx, cfg.Sheets)
	if err != nil {
		if !errors.Is(err, sheets.ErrNotConfigured) {
			logger.Fatal("Failed to connect to Google Sheets", err)
		}
		logger.Warn("Google Sheets not configured, mirror disabled")
	}
	mirror := service.NewSheetMirrorService(workbook, partnerRepo, applicationRepo, requestRepo, adminRepo)

	syncScheduler := scheduler.NewSheetSyncScheduler(mirror, cfg.Sheets.SyncSpec, syncDebounce)
	if err := syncScheduler.Start(); err != nil {
		logger.Fatal("Failed to start sheet sync scheduler", err)
	}
	defer syncScheduler.Stop()

	// Realtime hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// External script endpoint
	var (
		productSource service.ProductSource
		relay         service.ApplicationRelay
	)
	catalogClient, err := catalog.NewClient(catalog.Config{ScriptURL: cfg.Catalog.ScriptURL})
	if err != nil {
		logger.Warn("Catalog script not configured", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		productSource = catalogClient
		if cfg.Catalog.RelayEnabled {
			relay = catalogClient
		}
	}

	var logoStorage controller.LogoPresigner
	if cfg.S3.Bucket != "" {
		logoStorage = storage.NewS3Storage(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
	} else {
		logger.Warn("S3 bucket not configured, logo upload disabled")
	}

	// 로그아웃한 토큰은 서비스와 미들웨어가 같은 블랙리스트를 봐야 한다
	blacklist := redis.NewTokenBlacklist()

	// Initialize services
	authService := service.NewAuthService(
		partnerRepo,
		adminRepo,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	partnerService := service.NewPartnerService(partnerRepo, applicationRepo, syncScheduler)
	requestService := service.NewPartnerRequestService(requestRepo, partnerRepo, relay, hub, syncScheduler)
	applicationService := service.NewApplicationService(applicationRepo, partnerService, hub, syncScheduler)
	dashboardService := service.NewDashboardService(partnerRepo, applicationRepo, requestRepo, partnerService)
	settlementService := service.NewSettlementService(settlementRepo)
	exportService := service.NewExportService(applicationService)
	catalogService := service.NewCatalogService(productSource, cfg.Catalog.CacheTTL)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	partnerController := controller.NewPartnerController(partnerService, requestService)
	applicationController := controller.NewApplicationController(applicationService, partnerService, exportService)
	dashboardController := controller.NewDashboardController(dashboardService)
	settlementController := controller.NewSettlementController(settlementService)
	catalogController := controller.NewCatalogController(catalogService)
	uploadController := controller.NewUploadController(logoStorage)
	wsController := controller.NewWSController(hub, cfg.CORS.AllowedOrigins)
	systemController := controller.NewSystemController(gdb, mirror, cfg.Sheets, cfg.Seed)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist, authService)

	// Setup router
	r := router.NewRouter(
		authController,
		partnerController,
		applicationController,
		dashboardController,
		settlementController,
		catalogController,
		uploadController,
		wsController,
		systemController,
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
