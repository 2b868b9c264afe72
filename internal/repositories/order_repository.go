package repositories

import (
	"context"
	"time"

	"bookstore/internal/models"
)

// PageRequest selects a 0-indexed page of Size rows.
type PageRequest struct {
	Page int
	Size int
}

// OrderRepository defines the interface for order data access.
//
// The Find* methods return one page ordered by creation time, newest first,
// together with the number of orders matching the filter.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error

	FindAll(ctx context.Context, p PageRequest) ([]models.Order, int64, error)
	FindByUser(ctx context.Context, userID uint, p PageRequest) ([]models.Order, int64, error)
	FindByUserAndCreatedBetween(ctx context.Context, userID uint, start, end time.Time, p PageRequest) ([]models.Order, int64, error)
	FindByProduct(ctx context.Context, bookID uint, p PageRequest) ([]models.Order, int64, error)
	FindByProductAndCreatedBetween(ctx context.Context, bookID uint, start, end time.Time, p PageRequest) ([]models.Order, int64, error)
	FindByCreatedBetween(ctx context.Context, start, end time.Time, p PageRequest) ([]models.Order, int64, error)
}
