package repositories

import (
	"context"

	"bookstore/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserID loads the user's cart with its items and their books.
	GetByUserID(ctx context.Context, userID uint) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uint) error
	// Clear removes every item from the cart, leaving the cart itself in place.
	Clear(ctx context.Context, cartID uint) error
}
