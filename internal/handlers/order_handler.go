package handlers

import (
	"fmt"

	"bookstore/internal/apperr"
	"bookstore/internal/middleware"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. router must already authenticate.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", middleware.AdminRequired(), h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/user/:userId", middleware.SelfOrAdmin("userId"), h.HandleCreateOrder)
	orderRoutes.Put("/:orderId/status", middleware.AdminRequired(), h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:orderId", h.HandleCancelOrder)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(fiber.Map{
		"message": "Orders retrieved successfully",
		"orders":  orders,
	})
}

// HandleGetOrderByID retrieves a single order for its owner or an administrator.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid order ID")
	}
	if denied, err := h.authorizeOrder(c, orderID); denied || err != nil {
		return err
	}
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %d", orderID))
	}
	return c.JSON(fiber.Map{
		"message": "Order found",
		"order":   order,
	})
}

// HandleCreateOrder checks out the user's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	order, err := h.service.CreateOrderFromCart(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

// HandleUpdateOrderStatus sets the status given in the status query parameter.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := paramID(c, "orderId")
	if err != nil {
		return respondError(c, err, "Invalid order ID")
	}
	status := c.Query("status")
	if status == "" {
		return respondError(c, fmt.Errorf("status query parameter is required: %w", apperr.ErrInvalidInput), "Could not update order status")
	}
	order, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, status)
	if err != nil {
		return respondError(c, err, "Could not update order status")
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   order,
	})
}

// HandleCancelOrder cancels a pending order for its owner or an administrator.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID, err := paramID(c, "orderId")
	if err != nil {
		return respondError(c, err, "Invalid order ID")
	}
	if denied, err := h.authorizeOrder(c, orderID); denied || err != nil {
		return err
	}
	if err := h.service.CancelOrder(c.UserContext(), orderID); err != nil {
		return respondError(c, err, "Could not cancel order")
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
	})
}

// authorizeOrder lets administrators and the order's owner through. When it
// reports denied, the response has already been written.
func (h *OrderHandler) authorizeOrder(c *fiber.Ctx, orderID uint) (bool, error) {
	if role, _ := c.Locals(middleware.LocalRole).(string); role == models.RoleAdmin {
		return false, nil
	}
	owner, err := h.service.OrderOwner(c.UserContext(), orderID)
	if err != nil {
		return true, respondError(c, err, fmt.Sprintf("Could not retrieve order %d", orderID))
	}
	if userID, _ := c.Locals(middleware.LocalUserID).(uint); userID != owner {
		return true, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Access to another user's resources is not allowed",
		})
	}
	return false, nil
}
