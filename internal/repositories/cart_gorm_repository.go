package repositories

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/apperr"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the cart owned by userID.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %d not found: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %d: %w", userID, err)
	}
	return &cart, nil
}

// Create creates an empty cart.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if err := conn(ctx, r.db).Omit("Items").Create(cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("cart for user %d already exists: %w", cart.UserID, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// AddItem inserts a new cart line.
func (r *GORMCartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	if err := conn(ctx, r.db).Omit("Book").Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// UpdateItem stores the quantity of an existing cart line.
func (r *GORMCartRepository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	res := conn(ctx, r.db).Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", item.ID, item.CartID).
		Update("quantity", item.Quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d not found: %w", item.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteItem removes one line from the cart.
func (r *GORMCartRepository) DeleteItem(ctx context.Context, cartID, itemID uint) error {
	res := conn(ctx, r.db).Delete(&models.CartItem{}, "id = ? AND cart_id = ?", itemID, cartID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d not found: %w", itemID, apperr.ErrNotFound)
	}
	return nil
}

// Clear deletes all items of the cart.
func (r *GORMCartRepository) Clear(ctx context.Context, cartID uint) error {
	if err := conn(ctx, r.db).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart %d: %w", cartID, err)
	}
	return nil
}
