package services

import (
	"context"
	"fmt"

	"bookstore/internal/apperr"
	"bookstore/internal/dto"
	"bookstore/internal/logger"
	"bookstore/internal/metrics"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles the order lifecycle: checkout, status changes and cancellation.
type OrderService struct {
	tx        repositories.Transactor
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	cartRepo  repositories.CartRepository
	publisher EventPublisher
	metrics   *metrics.Recorder
	log       *zap.Logger
}

// NewOrderService creates a new OrderService. publisher and recorder may be nil.
func NewOrderService(
	tx repositories.Transactor,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	cartRepo repositories.CartRepository,
	publisher EventPublisher,
	recorder *metrics.Recorder,
) *OrderService {
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		cartRepo:  cartRepo,
		publisher: publisher,
		metrics:   recorder,
		log:       logger.L().Named("orders"),
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]dto.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.FromOrders(orders), nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id uint) (*dto.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shaped := dto.FromOrder(*order)
	return &shaped, nil
}

// OrderOwner returns the ID of the user who placed the order.
func (s *OrderService) OrderOwner(ctx context.Context, orderID uint) (uint, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return order.UserID, nil
}

// CreateOrderFromCart turns the user's cart into a PENDING order and empties the cart.
// Both writes happen in one transaction. Carts holding books removed from the
// catalog are refused.
func (s *OrderService) CreateOrderFromCart(ctx context.Context, userID uint) (*dto.Order, error) {
	var order *models.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}
		cart, err := s.cartRepo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return fmt.Errorf("cannot create order from empty cart of user %d: %w", userID, apperr.ErrInvalidState)
		}
		for _, ci := range cart.Items {
			if ci.Book.ID == 0 || ci.Book.DeletedAt.Valid {
				return fmt.Errorf("book %d in cart of user %d is no longer available: %w", ci.BookID, userID, apperr.ErrInvalidState)
			}
		}

		order = BuildOrder(userID, cart.Items)
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return s.cartRepo.Clear(ctx, cart.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order for user %d: %w", userID, err)
	}

	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("total", order.TotalPrice.StringFixed(2)),
		zap.Int("items", len(order.Items)))
	s.metrics.OrderCreated(order.TotalPrice.InexactFloat64())
	publishOrderEvent(s.publisher, s.log, EventOrderCreated, order)

	shaped := dto.FromOrder(*order)
	return &shaped, nil
}

// BuildOrder snapshots the cart lines into a PENDING order. Each line keeps the
// book's current price and the total is their exact decimal sum.
func BuildOrder(userID uint, items []models.CartItem) *models.Order {
	order := &models.Order{
		UserID:     userID,
		Status:     models.OrderStatusPending,
		TotalPrice: decimal.Zero,
		Items:      make([]models.OrderItem, 0, len(items)),
	}
	for _, ci := range items {
		item := models.OrderItem{
			BookID:   ci.BookID,
			Book:     ci.Book,
			Quantity: ci.Quantity,
			Price:    ci.Book.Price,
		}
		order.Items = append(order.Items, item)
		order.TotalPrice = order.TotalPrice.Add(item.Subtotal())
	}
	return order
}

// UpdateOrderStatus stores status on the order as given. Allowed values are the
// caller's concern.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status string) (*dto.Order, error) {
	var order *models.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.orderRepo.GetByID(ctx, orderID); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
	}

	s.log.Info("order status updated", zap.Uint("order_id", orderID), zap.String("status", status))
	s.metrics.StatusUpdated(status)
	publishOrderEvent(s.publisher, s.log, EventOrderStatusUpdated, order)

	shaped := dto.FromOrder(*order)
	return &shaped, nil
}

// CancelOrder permanently deletes a PENDING order. Orders in any other status
// are left untouched.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) error {
	var order *models.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.orderRepo.GetByID(ctx, orderID); err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return fmt.Errorf("only pending orders can be cancelled, order %d is %s: %w", orderID, order.Status, apperr.ErrInvalidState)
		}
		return s.orderRepo.Delete(ctx, orderID)
	})
	if err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}

	order.Status = models.OrderStatusCancelled
	s.log.Info("order cancelled", zap.Uint("order_id", orderID), zap.Uint("user_id", order.UserID))
	s.metrics.OrderCancelled()
	publishOrderEvent(s.publisher, s.log, EventOrderCancelled, order)
	return nil
}
