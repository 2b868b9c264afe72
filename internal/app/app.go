// Package app assembles the Fiber application from its repositories, services and handlers.
package app

import (
	"errors"
	"time"

	"bookstore/internal/apperr"
	"bookstore/internal/config"
	"bookstore/internal/handlers"
	"bookstore/internal/logger"
	"bookstore/internal/metrics"
	"bookstore/internal/middleware"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the application is built from.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Publisher services.EventPublisher // nil disables order events
	Metrics   *metrics.Recorder
	// RequestLog enables fiber's access log middleware.
	RequestLog bool
}

// App is the assembled HTTP application.
type App struct {
	Fiber *fiber.App
	Auth  *services.AuthService
}

// New wires repositories, services and handlers and registers every route.
func New(d Deps) *App {
	if d.Metrics == nil {
		d.Metrics = metrics.NewRecorder()
	}

	// --- Repositories ---
	tx := repositories.NewGORMTransactor(d.DB)
	userRepo := repositories.NewGORMUserRepository(d.DB)
	bookRepo := repositories.NewGORMBookRepository(d.DB)
	cartRepo := repositories.NewGORMCartRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, d.Config.JWTSecret, d.Config.JWTTTL)
	catalogService := services.NewCatalogService(bookRepo)
	cartService := services.NewCartService(tx, cartRepo, bookRepo, userRepo)
	orderService := services.NewOrderService(tx, orderRepo, userRepo, cartRepo, d.Publisher, d.Metrics)
	salesService := services.NewSalesHistoryService(orderRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, d.Config.PageSizeDefault, d.Config.PageSizeMax)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(salesService, catalogService, d.Config.PageSizeDefault, d.Config.PageSizeMax)

	app := fiber.New(fiber.Config{
		AppName:      "bookstore",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	if d.RequestLog {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status, health, dbStatus := fiber.StatusOK, "healthy", "up"
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, health, dbStatus = fiber.StatusServiceUnavailable, "unhealthy", "down"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   health,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"events":   d.Publisher != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)

	// admin is registered first: its guards are scoped to /api/admin while the
	// protected group's middleware covers everything under /api that follows it.
	adminHandler.RegisterRoutes(api, middleware.AuthRequired(authService), middleware.AdminRequired())

	protected := api.Group("", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return &App{Fiber: app, Auth: authService}
}

// errorHandler answers errors returned from handlers that did not write a response themselves.
func errorHandler(c *fiber.Ctx, err error) error {
	status := apperr.StatusCode(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		logger.L().Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": "Request failed",
		"error":   err.Error(),
	})
}
