package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/apperr"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func byUser(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("orders.user_id = ?", userID) }
}

func byProduct(bookID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.book_id = ?)", bookID)
	}
}

func createdBetween(start, end time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("orders.created_at BETWEEN ? AND ?", start, end) }
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := withItems(conn(ctx, r.db)).Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := withItems(conn(ctx, r.db)).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order and then its items. Books referenced by the items are not written.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	db := conn(ctx, r.db)
	if err := db.Omit("Items").Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if err := db.Omit("Book").Create(&order.Items).Error; err != nil {
		return fmt.Errorf("failed to create items of order %d: %w", order.ID, err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := conn(ctx, r.db).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d not found for status update: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Delete removes an order and its items permanently.
func (r *GORMOrderRepository) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, r.db)
	if err := db.Delete(&models.OrderItem{}, "order_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete items of order %d: %w", id, err)
	}
	res := db.Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d not found for deletion: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// FindAll pages over every order.
func (r *GORMOrderRepository) FindAll(ctx context.Context, p PageRequest) ([]models.Order, int64, error) {
	return r.page(ctx, p)
}

// FindByUser pages over the orders of one user.
func (r *GORMOrderRepository) FindByUser(ctx context.Context, userID uint, p PageRequest) ([]models.Order, int64, error) {
	return r.page(ctx, p, byUser(userID))
}

// FindByUserAndCreatedBetween pages over the orders of one user created in [start, end].
func (r *GORMOrderRepository) FindByUserAndCreatedBetween(ctx context.Context, userID uint, start, end time.Time, p PageRequest) ([]models.Order, int64, error) {
	return r.page(ctx, p, byUser(userID), createdBetween(start, end))
}

// FindByProduct pages over the orders containing the book.
func (r *GORMOrderRepository) FindByProduct(ctx context.Context, bookID uint, p PageRequest) ([]models.Order, int64, error) {
	return r.page(ctx, p, byProduct(bookID))
}

// FindByProductAndCreatedBetween pages over the orders containing the book created in [start, end].
func (r *GORMOrderRepository) FindByProductAndCreatedBetween(ctx context.Context, bookID uint, start, end time.Time, p PageRequest) ([]models.Order, int64, error) {
	return r.page(ctx, p, byProduct(bookID), createdBetween(start, end))
}

// FindByCreatedBetween pages over the orders created in [start, end].
func (r *GORMOrderRepository) FindByCreatedBetween(ctx context.Context, start, end time.Time, p PageRequest) ([]models.Order, int64, error) {
	return r.page(ctx, p, createdBetween(start, end))
}

func (r *GORMOrderRepository) page(ctx context.Context, p PageRequest, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Order, int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&models.Order{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := make([]models.Order, 0, p.Size)
	if total == 0 {
		return orders, 0, nil
	}
	err := withItems(conn(ctx, r.db)).Scopes(scopes...).
		Order("orders.created_at DESC").Order("orders.id DESC").
		Offset(p.Page * p.Size).Limit(p.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}
	return orders, total, nil
}
