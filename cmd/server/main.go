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

	"github.com/2nas159/car-rental-app/internal/config"
	"github.com/2nas159/car-rental-app/internal/handlers"
	"github.com/2nas159/car-rental-app/internal/middleware"
	"github.com/2nas159/car-rental-app/internal/repositories/mongodb"
	"github.com/2nas159/car-rental-app/internal/services"
	"github.com/2nas159/car-rental-app/pkg/cache"
	"github.com/2nas159/car-rental-app/pkg/database"
	"github.com/2nas159/car-rental-app/pkg/lock"
	"github.com/2nas159/car-rental-app/pkg/logger"
	"github.com/2nas159/car-rental-app/pkg/payment"
	"github.com/2nas159/car-rental-app/pkg/storage"
	"github.com/2nas159/car-rental-app/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.EnsureIndexes(db.Database); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	locker := lock.NewRedisLocker(redisCache.Client(), "carrental")
	gateway := payment.NewStripeGateway(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.WebhookSecret)

	storageProvider, err := newStorageProvider(cfg.Storage)
	if err != nil {
		appLogger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	carRepo := mongodb.NewCarRepository(db.Database, redisCache)
	bookingRepo := mongodb.NewBookingRepository(db.Database)

	// Services
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, appLogger)
	carService := services.NewCarService(carRepo, userRepo, bookingRepo, appLogger)
	availabilityService := services.NewAvailabilityService(carRepo, bookingRepo, appLogger)
	bookingService := services.NewBookingService(bookingRepo, carRepo, locker, appLogger)
	paymentService := services.NewPaymentService(bookingRepo, gateway, cfg.Payment.Currency, appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	carHandler := handlers.NewCarHandler(carService, availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	uploadHandler := handlers.NewUploadHandler(storageProvider)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, authHandler, cfg.Security.JWTSecret)
		routes.SetupCarRoutes(v1, carHandler, uploadHandler, cfg.Security.JWTSecret)
		routes.SetupBookingRoutes(v1, bookingHandler, cfg.Security.JWTSecret)
		routes.SetupPaymentRoutes(v1, paymentHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}

func newStorageProvider(cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return storage.NewAWSS3Storage(cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	default:
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	}
}
