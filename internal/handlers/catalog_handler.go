package handlers

import (
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles the public catalog endpoints.
type CatalogHandler struct {
	service     *services.CatalogService
	validate    *validator.Validate
	defaultSize int
	maxSize     int
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, defaultSize, maxSize int) *CatalogHandler {
	return &CatalogHandler{
		service:     service,
		validate:    validator.New(),
		defaultSize: defaultSize,
		maxSize:     maxSize,
	}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	catalogRoutes := router.Group("/catalog")
	catalogRoutes.Get("/books", h.HandleListBooks)
	catalogRoutes.Get("/books/:id", h.HandleGetBook)
	catalogRoutes.Get("/genres", h.HandleGenres)
}

type listBooksQuery struct {
	Page   int    `query:"page" validate:"gte=0"`
	Size   int    `query:"size" validate:"gte=1"`
	Sort   string `query:"sort" validate:"omitempty,oneof=title author price year"`
	Search string `query:"search" validate:"max=100"`
	Genre  string `query:"genre" validate:"max=100"`
}

// HandleListBooks returns a page of books.
func (h *CatalogHandler) HandleListBooks(c *fiber.Ctx) error {
	q := listBooksQuery{Size: h.defaultSize, Sort: "title"}
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

	page, err := h.service.ListBooks(c.UserContext(), repositories.BookQuery{
		Page:   q.Page,
		Size:   q.Size,
		Sort:   q.Sort,
		Search: q.Search,
		Genre:  q.Genre,
	})
	if err != nil {
		return respondError(c, err, "Could not list books")
	}
	return c.JSON(page)
}

// HandleGetBook returns one book.
func (h *CatalogHandler) HandleGetBook(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid book ID")
	}
	book, err := h.service.GetBook(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve book")
	}
	return c.JSON(book)
}

// HandleGenres lists the catalog's genres.
func (h *CatalogHandler) HandleGenres(c *fiber.Ctx) error {
	genres, err := h.service.Genres(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve genres")
	}
	return c.JSON(genres)
}
