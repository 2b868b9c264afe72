package repositories

import (
	"context"

	"bookstore/internal/models"
)

// BookSortFields lists the columns books can be sorted by.
var BookSortFields = map[string]string{
	"title":  "title",
	"author": "author",
	"price":  "price",
	"year":   "year",
}

// BookQuery filters and pages a catalog listing.
type BookQuery struct {
	Page   int
	Size   int
	Sort   string // key of BookSortFields; defaults to title
	Search string // case-insensitive match on title or author
	Genre  string
}

// BookRepository defines the interface for book data access.
type BookRepository interface {
	List(ctx context.Context, q BookQuery) ([]models.Book, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	Genres(ctx context.Context) ([]string, error)
}
