package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"catalog-hub-service/internal/audit"
	"catalog-hub-service/internal/clients"
	"catalog-hub-service/internal/clients/supplierhub"
	"catalog-hub-service/internal/config"
	"catalog-hub-service/internal/database"
	"catalog-hub-service/internal/handlers"
	"catalog-hub-service/internal/middleware"
	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
	"catalog-hub-service/internal/services"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// Audit sink is optional; without MONGO_URI import runs are only kept in
	// PostgreSQL.
	var sink *audit.ImportLogSink
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sink, err = audit.NewImportLogSink(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("Audit sink unavailable, continuing without it")
			sink = nil
		} else {
			logger.Info("Audit sink initialized")
		}
	}

	// Repositories
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	tagRepo := repository.NewTagRepository(db)
	runRepo := repository.NewImportRunRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Supplier hub client
	sourceClient := supplierhub.NewClient(supplierhub.Options{
		BaseURL:          cfg.SourceBaseURL,
		Timeout:          cfg.SourceTimeout,
		RequestsPerSec:   float64(cfg.SourceRateLimit),
		FetchConcurrency: cfg.SourceFetchConcurrency,
		Retry: &clients.RetryPolicy{
			MaxRetries:     cfg.SourceMaxRetries,
			InitialBackoff: cfg.SourceInitialBackoff,
			MaxBackoff:     30 * time.Second,
			BackoffFactor:  2.0,
			Jitter:         0.1,
			RetryableCodes: []int{429, 500, 502, 503, 504},
		},
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerReset:     cfg.BreakerResetTimeout,
	}, logger)

	// Services
	normalizer := services.NewRecordNormalizer(logger)
	tagResolver := services.NewTagResolver(tagRepo, logger)
	importService := services.NewImportService(sourceClient, categoryRepo, productRepo, runRepo, tagResolver, normalizer, sink, logger)
	catalogService := services.NewCatalogService(categoryRepo, productRepo, tagRepo, tagResolver, logger)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	importHandler := handlers.NewImportHandler(importService, runRepo, logger)
	catalogHandler := handlers.NewCatalogHandler(categoryRepo, productRepo, tagRepo, logger)
	catalogWriteHandler := handlers.NewCatalogWriteHandler(catalogService, logger)
	reportsHandler := handlers.NewReportsHandler(reportRepo, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)

	router := setupRouter(cfg, logger, healthHandler, importHandler, catalogHandler, catalogWriteHandler, reportsHandler, authHandler)

	logger.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Catalog Hub Service starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	healthHandler *handlers.HealthHandler,
	importHandler *handlers.ImportHandler,
	catalogHandler *handlers.CatalogHandler,
	catalogWriteHandler *handlers.CatalogWriteHandler,
	reportsHandler *handlers.ReportsHandler,
	authHandler *handlers.AuthHandler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}
	router.Use(middleware.CORS(origins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Catalog reads
		v1.GET("/products", catalogHandler.ListProducts)
		v1.GET("/products/:id", catalogHandler.GetProduct)
		v1.GET("/categories", catalogHandler.ListCategories)
		v1.GET("/tags", catalogHandler.ListTags)

		// Catalog writes are admin only
		adminRoutes := v1.Group("")
		adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		adminRoutes.Use(middleware.RequireRole(string(models.RoleAdmin)))
		{
			adminRoutes.POST("/products", catalogWriteHandler.CreateProduct)
			adminRoutes.PUT("/products/:id", catalogWriteHandler.UpdateProduct)
			adminRoutes.DELETE("/products/:id", catalogWriteHandler.DeleteProduct)
			adminRoutes.POST("/categories", catalogWriteHandler.CreateCategory)
			adminRoutes.PUT("/categories/:id", catalogWriteHandler.UpdateCategory)
			adminRoutes.DELETE("/categories/:id", catalogWriteHandler.DeleteCategory)
			adminRoutes.POST("/tags", catalogWriteHandler.CreateTag)
			adminRoutes.POST("/import/categories", importHandler.ImportCategories)
			adminRoutes.POST("/import/products", importHandler.ImportProducts)
		}

		// Run history and reports require an authenticated caller
		authedRoutes := v1.Group("")
		authedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			authedRoutes.GET("/import/runs", importHandler.ListRuns)
			authedRoutes.GET("/reports/dashboard", reportsHandler.Dashboard)
			authedRoutes.GET("/reports/export", reportsHandler.Export)
		}
	}

	return router
}
