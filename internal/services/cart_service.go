package services

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/apperr"
	"bookstore/internal/dto"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// MaxItemQuantity is the largest quantity a single cart line may hold.
const MaxItemQuantity = 1000

// CartService handles business logic related to shopping carts.
type CartService struct {
	tx       repositories.Transactor
	cartRepo repositories.CartRepository
	bookRepo repositories.BookRepository
	userRepo repositories.UserRepository
}

// NewCartService creates a new CartService.
func NewCartService(tx repositories.Transactor, cartRepo repositories.CartRepository, bookRepo repositories.BookRepository, userRepo repositories.UserRepository) *CartService {
	return &CartService{
		tx:       tx,
		cartRepo: cartRepo,
		bookRepo: bookRepo,
		userRepo: userRepo,
	}
}

// GetCart retrieves the user's cart.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*dto.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	shaped := dto.FromCart(*cart)
	return &shaped, nil
}

// CreateCart creates an empty cart for the user, or returns the existing one.
func (s *CartService) CreateCart(ctx context.Context, userID uint) (*dto.Cart, error) {
	var cart *models.Cart
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.getOrCreate(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cart for user %d: %w", userID, err)
	}
	shaped := dto.FromCart(*cart)
	return &shaped, nil
}

// AddItem adds quantity copies of a book to the user's cart, creating the cart
// when needed. Adding a book already in the cart increases that line.
func (s *CartService) AddItem(ctx context.Context, userID, bookID uint, quantity int) (*dto.Cart, error) {
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, fmt.Errorf("quantity must be between 1 and %d, got %d: %w", MaxItemQuantity, quantity, apperr.ErrInvalidInput)
	}
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
			return err
		}
		for i := range cart.Items {
			if cart.Items[i].BookID == bookID {
				if cart.Items[i].Quantity > MaxItemQuantity-quantity {
					return fmt.Errorf("cart line for book %d would exceed %d copies: %w", bookID, MaxItemQuantity, apperr.ErrInvalidInput)
				}
				cart.Items[i].Quantity += quantity
				return s.cartRepo.UpdateItem(ctx, &cart.Items[i])
			}
		}
		return s.cartRepo.AddItem(ctx, &models.CartItem{CartID: cart.ID, BookID: bookID, Quantity: quantity})
	})
}

// UpdateItemQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*dto.Cart, error) {
	if quantity > MaxItemQuantity {
		return nil, fmt.Errorf("quantity must be at most %d, got %d: %w", MaxItemQuantity, quantity, apperr.ErrInvalidInput)
	}
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		if quantity <= 0 {
			return s.cartRepo.DeleteItem(ctx, cart.ID, itemID)
		}
		return s.cartRepo.UpdateItem(ctx, &models.CartItem{ID: itemID, CartID: cart.ID, Quantity: quantity})
	})
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) (*dto.Cart, error) {
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		return s.cartRepo.DeleteItem(ctx, cart.ID, itemID)
	})
}

// ClearCart empties the user's cart.
func (s *CartService) ClearCart(ctx context.Context, userID uint) (*dto.Cart, error) {
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		return s.cartRepo.Clear(ctx, cart.ID)
	})
}

// mutate runs fn on the user's cart inside a transaction and returns the cart as stored afterwards.
func (s *CartService) mutate(ctx context.Context, userID uint, fn func(ctx context.Context, cart *models.Cart) error) (*dto.Cart, error) {
	var cart *models.Cart
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.getOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(ctx, current); err != nil {
			return err
		}
		cart, err = s.cartRepo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart of user %d: %w", userID, err)
	}
	shaped := dto.FromCart(*cart)
	return &shaped, nil
}

func (s *CartService) getOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	cart = &models.Cart{UserID: userID}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
