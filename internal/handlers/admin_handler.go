package handlers

import (
	"time"

	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const isoDate = "2006-01-02"

// AdminHandler handles the administrator endpoints: sales history and catalog management.
type AdminHandler struct {
	sales       *services.SalesHistoryService
	catalog     *services.CatalogService
	validate    *validator.Validate
	defaultSize int
	maxSize     int
}

// NewAdminHandler creates a new AdminHandler. Page sizes default to defaultSize
// and may not exceed maxSize.
func NewAdminHandler(sales *services.SalesHistoryService, catalog *services.CatalogService, defaultSize, maxSize int) *AdminHandler {
	return &AdminHandler{
		sales:       sales,
		catalog:     catalog,
		validate:    validator.New(),
		defaultSize: defaultSize,
		maxSize:     maxSize,
	}
}

// RegisterRoutes registers the admin routes under /admin. guards run before
// every admin route and must authenticate and require the admin role.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	adminRoutes := router.Group("/admin", guards...)
	adminRoutes.Get("/orders", h.HandleSalesHistory)
	adminRoutes.Post("/books", h.HandleCreateBook)
	adminRoutes.Put("/books/:id", h.HandleUpdateBook)
	adminRoutes.Delete("/books/:id", h.HandleDeleteBook)
}

// SalesHistoryQuery is the query string of GET /admin/orders.
type SalesHistoryQuery struct {
	Page       int    `query:"page" validate:"gte=0"`
	Size       int    `query:"size" validate:"gte=1"`
	CustomerID string `query:"customerId" validate:"omitempty,number"`
	ProductID  string `query:"productId" validate:"omitempty,number"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// HandleSalesHistory returns a filtered, paginated list of orders.
func (h *AdminHandler) HandleSalesHistory(c *fiber.Ctx) error {
	q := SalesHistoryQuery{Size: h.defaultSize}
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(q); err != nil {
		return respondValidation(c, err)
	}
	if q.Size > h.maxSize {
		q.Size = h.maxSize
	}

	filter, err := q.filter()
	if err != nil {
		return respondError(c, err, "Invalid sales history filter")
	}

	page, err := h.sales.GetSalesHistory(c.UserContext(), q.Page, q.Size, filter)
	if err != nil {
		return respondError(c, err, "Could not retrieve sales history")
	}
	return c.JSON(fiber.Map{
		"message":     "Sales history retrieved successfully",
		"orders":      page.Items,
		"page":        page.Page,
		"size":        page.Size,
		"total_items": page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

func (q SalesHistoryQuery) filter() (services.SalesFilter, error) {
	var f services.SalesFilter
	var err error
	if f.CustomerID, err = optionalID("customerId", q.CustomerID); err != nil {
		return f, err
	}
	if f.ProductID, err = optionalID("productId", q.ProductID); err != nil {
		return f, err
	}
	if q.From != "" {
		from, _ := time.Parse(isoDate, q.From) // format checked by the validator
		f.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(isoDate, q.To)
		f.To = &to
	}
	return f, nil
}

// HandleCreateBook adds a book to the catalog.
func (h *AdminHandler) HandleCreateBook(c *fiber.Ctx) error {
	var book models.Book
	if err := c.BodyParser(&book); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(book); err != nil {
		return respondValidation(c, err)
	}

	created, err := h.catalog.CreateBook(c.UserContext(), &book)
	if err != nil {
		return respondError(c, err, "Could not create book")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Book created successfully",
		"book":    created,
	})
}

// HandleUpdateBook replaces a book's attributes.
func (h *AdminHandler) HandleUpdateBook(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid book ID")
	}
	var book models.Book
	if err := c.BodyParser(&book); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(book); err != nil {
		return respondValidation(c, err)
	}

	updated, err := h.catalog.UpdateBook(c.UserContext(), id, &book)
	if err != nil {
		return respondError(c, err, "Could not update book")
	}
	return c.JSON(fiber.Map{
		"message": "Book updated successfully",
		"book":    updated,
	})
}

// HandleDeleteBook removes a book from the catalog.
func (h *AdminHandler) HandleDeleteBook(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid book ID")
	}
	if err := h.catalog.DeleteBook(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete book")
	}
	return c.JSON(fiber.Map{
		"message": "Book deleted successfully",
	})
}
