package handlers

import (
	"bookstore/internal/dto"
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for shopping carts.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes. router must already authenticate.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	owner := middleware.SelfOrAdmin("userId")
	cartRoutes := router.Group("/cart/user/:userId")
	cartRoutes.Get("/", owner, h.HandleGetCart)
	cartRoutes.Post("/", owner, h.HandleCreateCart)
	cartRoutes.Delete("/", owner, h.HandleClearCart)
	cartRoutes.Post("/items", owner, h.HandleAddItem)
	cartRoutes.Put("/items/:itemId", owner, h.HandleUpdateItem)
	cartRoutes.Delete("/items/:itemId", owner, h.HandleRemoveItem)
}

// HandleGetCart returns the user's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	cart, err := h.service.GetCart(c.UserContext(), userID)
	return h.respond(c, fiber.StatusOK, cart, err, "Could not retrieve cart")
}

// HandleCreateCart creates the user's cart.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	cart, err := h.service.CreateCart(c.UserContext(), userID)
	return h.respond(c, fiber.StatusCreated, cart, err, "Could not create cart")
}

// HandleClearCart empties the user's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	cart, err := h.service.ClearCart(c.UserContext(), userID)
	return h.respond(c, fiber.StatusOK, cart, err, "Could not clear cart")
}

// HandleAddItem adds ?quantity copies of ?bookId to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	bookID, err := optionalID("bookId", c.Query("bookId"))
	if err != nil || bookID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "bookId query parameter must be a positive integer",
		})
	}
	quantity := c.QueryInt("quantity", 1)
	cart, err := h.service.AddItem(c.UserContext(), userID, *bookID, quantity)
	return h.respond(c, fiber.StatusOK, cart, err, "Could not add item to cart")
}

// HandleUpdateItem sets a cart line's quantity from ?quantity.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return respondError(c, err, "Invalid cart item ID")
	}
	if c.Query("quantity") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "quantity query parameter is required",
		})
	}
	cart, err := h.service.UpdateItemQuantity(c.UserContext(), userID, itemID, c.QueryInt("quantity"))
	return h.respond(c, fiber.StatusOK, cart, err, "Could not update cart item")
}

// HandleRemoveItem deletes a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return respondError(c, err, "Invalid cart item ID")
	}
	cart, err := h.service.RemoveItem(c.UserContext(), userID, itemID)
	return h.respond(c, fiber.StatusOK, cart, err, "Could not remove cart item")
}

func (h *CartHandler) respond(c *fiber.Ctx, status int, cart *dto.Cart, err error, failure string) error {
	if err != nil {
		return respondError(c, err, failure)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": "Cart retrieved successfully",
		"cart":    cart,
	})
}
