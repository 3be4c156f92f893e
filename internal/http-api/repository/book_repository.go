package repository

import (
	"context"
	"fmt"
	"strings"

	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input; queries using it must
// carry an ESCAPE '\' clause.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type BookRepo struct {
	db *gorm.DB
}

func NewBookRepo(db *gorm.DB) *BookRepo {
	return &BookRepo{db: db}
}

func (r *BookRepo) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	// GORM will populate book.ID and book.CreatedAt
	return nil
}

func (r *BookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

func (r *BookRepo) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) FindByOpenLibraryID(ctx context.Context, openLibraryID string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).Where("open_library_id = ?", openLibraryID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByTitleAuthorFuzzy matches title and author by case-insensitive
// substring. Least trustworthy dedup key, used after ISBN and catalog id.
func (r *BookRepo) FindByTitleAuthorFuzzy(ctx context.Context, title, author string) (*models.Book, error) {
	var b models.Book
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(title)+"%").
		Where("LOWER(author) LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(author)+"%").
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) FindByTitleAuthorExact(ctx context.Context, title, author string) (*models.Book, error) {
	var b models.Book
	err := r.db.WithContext(ctx).
		Where("title = ? AND author = ?", title, author).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Search matches title or author by case-insensitive substring, or an
// exact ISBN hit.
func (r *BookRepo) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	var books []models.Book
	pattern := "%" + escapeLike(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?) ESCAPE '\\' OR LOWER(author) LIKE LOWER(?) ESCAPE '\\' OR isbn = ?", pattern, pattern, query).
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}
