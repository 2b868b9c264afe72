package services

import (
	"context"
	"fmt"
	"math"

	"bookstore/internal/apperr"
	"bookstore/internal/dto"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// CatalogService handles business logic related to books.
type CatalogService struct {
	repo repositories.BookRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.BookRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListBooks returns one page of the catalog.
func (s *CatalogService) ListBooks(ctx context.Context, q repositories.BookQuery) (*dto.Page[dto.Book], error) {
	if q.Page < 0 || q.Size < 1 || q.Page > math.MaxInt/q.Size {
		return nil, fmt.Errorf("invalid page %d / size %d: %w", q.Page, q.Size, apperr.ErrInvalidInput)
	}
	if _, ok := repositories.BookSortFields[q.Sort]; q.Sort != "" && !ok {
		return nil, fmt.Errorf("cannot sort books by %q: %w", q.Sort, apperr.ErrInvalidInput)
	}
	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	page := dto.NewPage(dto.FromBooks(books), q.Page, q.Size, total)
	return &page, nil
}

// GetBook retrieves a single book by its ID.
func (s *CatalogService) GetBook(ctx context.Context, id uint) (*dto.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shaped := dto.FromBook(*book)
	return &shaped, nil
}

// CreateBook adds a book to the catalog.
func (s *CatalogService) CreateBook(ctx context.Context, book *models.Book) (*dto.Book, error) {
	if err := checkPrice(book); err != nil {
		return nil, err
	}
	book.ID = 0
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	shaped := dto.FromBook(*book)
	return &shaped, nil
}

// UpdateBook replaces the attributes of book id. Existing order lines keep their prices.
func (s *CatalogService) UpdateBook(ctx context.Context, id uint, book *models.Book) (*dto.Book, error) {
	if err := checkPrice(book); err != nil {
		return nil, err
	}
	book.ID = id
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return s.GetBook(ctx, id)
}

// DeleteBook removes a book from the catalog.
func (s *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Genres lists the genres present in the catalog.
func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	return s.repo.Genres(ctx)
}

func checkPrice(book *models.Book) error {
	if !book.Price.IsPositive() {
		return fmt.Errorf("price must be greater than zero, got %s: %w", book.Price, apperr.ErrInvalidInput)
	}
	return nil
}
