package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/internal/app"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/logger"
	"bookstore/internal/metrics"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
	"bookstore/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "json", "").Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	defer logger.Sync()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.Fatal("failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer database.Close(db)

	ctx := context.Background()
	seedBooks(ctx, repositories.NewGORMBookRepository(db), log)

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log.Named("rabbitmq"))
		if err != nil {
			log.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(orderEventHandler(log.Named("order-events"))); err != nil {
			log.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- HTTP application ---
	application := app.New(app.Deps{
		Config:     cfg,
		DB:         db,
		Publisher:  publisher,
		Metrics:    metrics.NewRecorder(),
		RequestLog: true,
	})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := application.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal("failed to seed admin user", zap.String("email", cfg.AdminEmail), zap.Error(err))
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := application.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := application.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

// orderEventHandler logs every order event delivered on the order queue.
// Messages that cannot be decoded are rejected.
func orderEventHandler(log *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event services.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return err
		}
		log.Info("received order event",
			zap.String("event_id", event.EventID),
			zap.String("type", event.Type),
			zap.Uint("order_id", event.OrderID),
			zap.Uint("user_id", event.UserID),
			zap.String("status", event.Status),
			zap.String("total", event.Total.StringFixed(2)),
		)
		return nil
	}
}

// seedBooks adds a few sample books when the catalog is empty.
func seedBooks(ctx context.Context, repo repositories.BookRepository, log *zap.Logger) {
	_, total, err := repo.List(ctx, repositories.BookQuery{Page: 0, Size: 1})
	if err != nil {
		log.Warn("failed to inspect catalog", zap.Error(err))
		return
	}
	if total > 0 {
		return
	}

	books := []models.Book{
		{Title: "The Go Programming Language", Author: "Alan Donovan", Price: decimal.RequireFromString("39.99"), Quantity: 10, Genres: []string{"programming"}},
		{Title: "Dune", Author: "Frank Herbert", Price: decimal.RequireFromString("12.50"), Quantity: 25, Genres: []string{"science fiction"}},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Price: decimal.RequireFromString("8.75"), Quantity: 50, Genres: []string{"classic", "romance"}},
	}
	for i := range books {
		if err := repo.Create(ctx, &books[i]); err != nil {
			log.Warn("failed to seed book", zap.String("title", books[i].Title), zap.Error(err))
			continue
		}
		log.Info("seeded book", zap.String("title", books[i].Title), zap.Uint("book_id", books[i].ID))
	}
}
