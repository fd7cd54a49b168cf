package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/handler"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/middleware"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/database"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/jwtutil"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/logger"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting fee service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.ClassFee{},
		&model.StudentDiscount{},
		&model.FeePayment{},
	); err != nil {
		log.Fatal("Failed to migrate database models", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Tenant resolution - available before a tenant context is established
	tenant := api.Group("/tenant")
	tenant.POST("/resolve", handler.ResolveTenant)
	tenant.GET("/me", handler.ResolveCurrentTenant)

	// Concession management - requires tenant context
	concessions := api.Group("/concessions")
	concessions.Use(middleware.RequireTenantContext)
	concessions.POST("", handler.CreateConcession)
	concessions.PATCH("/:id", handler.UpdateConcession)
	concessions.DELETE("/:id", handler.DeleteConcession)

	// Student fee views - requires tenant context
	students := api.Group("/students")
	students.Use(middleware.RequireTenantContext)
	students.GET("/:id/fees", handler.GetEffectiveFees)
	students.GET("/:id/outstanding", handler.GetOutstandingFees)

	// Class fee structure - requires tenant context
	classes := api.Group("/classes")
	classes.Use(middleware.RequireTenantContext)
	classes.GET("/:id/fee-structure", handler.GetClassFeeStructure)
	classes.GET("/:id/integrity", handler.GetClassIntegrity)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
