// Package dto converts stored entities into the records the API returns.
// Conversions are pure; responses never reference their parent records, so
// they marshal without cycles, and unset optional fields are omitted.
package dto

import (
	"bookstore/internal/models"

	"github.com/shopspring/decimal"
)

// Book is the response shape of a catalog book.
type Book struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description,omitempty"`
	ISBN        *string         `json:"isbn,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	Year        *int            `json:"year,omitempty"`
	Genres      []string        `json:"genres,omitempty"`
}

// FromBook shapes a book.
func FromBook(b models.Book) Book {
	return Book{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Price:       b.Price,
		Description: b.Description,
		ISBN:        b.ISBN,
		ImageURL:    b.ImageURL,
		Quantity:    b.Quantity,
		Year:        b.Year,
		Genres:      b.Genres,
	}
}

// FromBooks shapes a list of books.
func FromBooks(books []models.Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = FromBook(b)
	}
	return out
}

// Page is a paginated list.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPage builds a Page, deriving the page count from total and size.
func NewPage[T any](items []T, page, size int, total int64) Page[T] {
	return Page[T]{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: TotalPages(total, size),
	}
}

// TotalPages returns ceil(total / size), or 0 when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
