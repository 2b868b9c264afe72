package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bookstore/internal/apperr"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMBookRepository is a GORM implementation of BookRepository.
type GORMBookRepository struct {
	db *gorm.DB
}

// NewGORMBookRepository creates a new instance of GORMBookRepository.
func NewGORMBookRepository(db *gorm.DB) *GORMBookRepository {
	return &GORMBookRepository{
		db: db,
	}
}

// List returns one page of books matching q along with the total match count.
func (r *GORMBookRepository) List(ctx context.Context, q BookQuery) ([]models.Book, int64, error) {
	query := conn(ctx, r.db).Model(&models.Book{})
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", like, like)
	}
	if q.Genre != "" {
		// genres is stored as a JSON array of strings
		query = query.Where("genres LIKE ?", `%"`+q.Genre+`"%`)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	column, ok := BookSortFields[q.Sort]
	if !ok {
		column = "title"
	}
	var books []models.Book
	err := query.Order(column + " ASC").Order("id ASC").
		Offset(q.Page * q.Size).Limit(q.Size).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// GetByID retrieves a single book by its ID from the database.
func (r *GORMBookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := conn(ctx, r.db).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book with ID %d not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by ID %d: %w", id, err)
	}
	return &book, nil
}

// Create creates a new book in the database.
func (r *GORMBookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := conn(ctx, r.db).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update updates an existing book in the database.
func (r *GORMBookRepository) Update(ctx context.Context, book *models.Book) error {
	res := conn(ctx, r.db).Model(book).Select("*").Omit("id", "created_at", "deleted_at").Updates(book)
	if res.Error != nil {
		return fmt.Errorf("failed to update book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %d not found for update: %w", book.ID, apperr.ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a book so that existing order lines keep their reference.
func (r *GORMBookRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.Book{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %d not found for deletion: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Genres returns the distinct genres of all books, sorted.
func (r *GORMBookRepository) Genres(ctx context.Context) ([]string, error) {
	var books []models.Book
	if err := conn(ctx, r.db).Select("genres").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	seen := make(map[string]struct{})
	genres := make([]string, 0)
	for _, b := range books {
		for _, g := range b.Genres {
			if _, ok := seen[g]; ok || g == "" {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	sort.Strings(genres)
	return genres, nil
}
