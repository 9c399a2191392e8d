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
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/morganchorlton3/order-tracker/internal/application/catalog"
	integrationapp "github.com/morganchorlton3/order-tracker/internal/application/integration"
	tradeapp "github.com/morganchorlton3/order-tracker/internal/application/trade"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/infrastructure/auth"
	"github.com/morganchorlton3/order-tracker/internal/infrastructure/config"
	"github.com/morganchorlton3/order-tracker/internal/infrastructure/ecommerce"
	"github.com/morganchorlton3/order-tracker/internal/infrastructure/logger"
	"github.com/morganchorlton3/order-tracker/internal/infrastructure/persistence"
	"github.com/morganchorlton3/order-tracker/internal/interfaces/http/handler"
	"github.com/morganchorlton3/order-tracker/internal/interfaces/http/middleware"
	"github.com/morganchorlton3/order-tracker/internal/interfaces/http/router"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("starting order tracker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	gormLogLevel := gormlogger.Silent
	if cfg.App.Env == "development" {
		gormLogLevel = gormlogger.Warn
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	authStateRepo := persistence.NewGormAuthStateRepository(db.DB)
	syncRunRepo := persistence.NewGormSyncRunRepository(db.DB)

	// Marketplace clients. Each client doubles as the OAuth provider and the
	// sync endpoint for its source; unconfigured providers stay registered so
	// the API can report why authorization is unavailable.
	etsyClient, err := ecommerce.NewEtsyClient(
		ecommerce.NewEtsyConfig(cfg.Etsy.ClientID, cfg.Etsy.ClientSecret, cfg.Etsy.RedirectURI),
		credentialRepo)
	if err != nil {
		log.Fatal("failed to create etsy client", zap.Error(err))
	}
	tiktokClient, err := ecommerce.NewTikTokClient(
		ecommerce.NewTikTokConfig(cfg.TikTok.ClientID, cfg.TikTok.ClientSecret, cfg.TikTok.RedirectURI),
		credentialRepo)
	if err != nil {
		log.Fatal("failed to create tiktok client", zap.Error(err))
	}

	// Application services
	oauthService := integrationapp.NewOAuthService(
		[]integration.OAuthProvider{etsyClient, tiktokClient},
		authStateRepo, credentialRepo, log)
	syncService := integrationapp.NewSyncService(
		[]integration.Marketplace{etsyClient, tiktokClient},
		syncRunRepo, orderRepo, productRepo, log)
	orderService := tradeapp.NewOrderService(orderRepo)
	productService := catalogapp.NewProductService(productRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(oauthService)
	syncHandler := handler.NewSyncHandler(syncService, log)
	orderHandler := handler.NewOrderHandler(orderService)
	productHandler := handler.NewProductHandler(productService)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(maxRequestBodyBytes))

	engine.GET("/health", handler.HealthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.DefaultJWTConfig(jwtService)))

	authGroup := router.NewDomainGroup("auth", "/auth")
	authGroup.GET("/:source/authorize", authHandler.Authorize)
	authGroup.GET("/:source/callback", authHandler.Callback)
	authGroup.GET("/:source/status", authHandler.Status)

	syncGroup := router.NewDomainGroup("sync", "/sync")
	syncGroup.POST("/orders/import", syncHandler.ImportOrders)
	syncGroup.POST("/products/export", syncHandler.ExportProducts)
	syncGroup.GET("/logs", syncHandler.ListLogs)
	syncGroup.GET("/logs/:id", syncHandler.GetLog)

	orderGroup := router.NewDomainGroup("orders", "/orders")
	orderGroup.POST("", orderHandler.Create)
	orderGroup.GET("", orderHandler.List)
	orderGroup.GET("/count", orderHandler.Count)
	orderGroup.GET("/:id", orderHandler.GetByID)
	orderGroup.PUT("/:id", orderHandler.Update)
	orderGroup.DELETE("/:id", orderHandler.Delete)

	productGroup := router.NewDomainGroup("products", "/products")
	productGroup.POST("", productHandler.Create)
	productGroup.GET("", productHandler.List)
	productGroup.GET("/:id", productHandler.GetByID)
	productGroup.PUT("/:id", productHandler.Update)
	productGroup.DELETE("/:id", productHandler.Delete)

	r.Register(authGroup).
		Register(syncGroup).
		Register(orderGroup).
		Register(productGroup)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
