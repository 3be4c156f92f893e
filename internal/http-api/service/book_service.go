package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/openlibrary"
	"bookhub/internal/validation"
)

type BookService interface {
	SearchOpenLibrary(ctx context.Context, query string, limit int) ([]dto.BookSearchResult, error)
	SearchLocal(ctx context.Context, query string, limit int) ([]models.Book, error)
	GetOrCreate(ctx context.Context, req dto.BookCreate) (*models.Book, error)
	GetByID(ctx context.Context, bookID int64) (*models.Book, error)
}

type bookService struct {
	bookRepo    *repository.BookRepo
	openLibrary *openlibrary.Client
	logger      *slog.Logger
}

func NewBookService(bookRepo *repository.BookRepo, ol *openlibrary.Client, logger *slog.Logger) BookService {
	return &bookService{
		bookRepo:    bookRepo,
		openLibrary: ol,
		logger:      logger,
	}
}

// SearchOpenLibrary proxies the external catalog search.
func (s *bookService) SearchOpenLibrary(ctx context.Context, query string, limit int) ([]dto.BookSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &validation.Error{Message: "search query is required"}
	}

	hits, err := s.openLibrary.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("open_library_search_failed", "query", query, "error", err)
		return nil, ErrExternalService
	}

	results := make([]dto.BookSearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, dto.BookSearchResult{
			OpenLibraryID:    hit.OpenLibraryID,
			Title:            hit.Title,
			Author:           hit.Author,
			ISBN:             hit.ISBN,
			CoverURL:         hit.CoverURL,
			FirstPublishYear: hit.FirstPublishYear,
			Subjects:         hit.Subjects,
		})
	}
	return results, nil
}

func (s *bookService) SearchLocal(ctx context.Context, query string, limit int) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &validation.Error{Message: "search query is required"}
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.bookRepo.Search(ctx, query, limit)
}

// GetOrCreate resolves a book against the local catalog before inserting.
// Dedup keys are tried from most to least trustworthy: ISBN, external
// catalog id, then fuzzy title+author.
func (s *bookService) GetOrCreate(ctx context.Context, req dto.BookCreate) (*models.Book, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	if title == "" {
		return nil, &validation.Error{Message: "title is required"}
	}
	if author == "" {
		return nil, &validation.Error{Message: "author is required"}
	}

	if req.ISBN != nil && *req.ISBN != "" {
		if book, err := s.bookRepo.FindByISBN(ctx, *req.ISBN); err == nil {
			return book, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if req.OpenLibraryID != nil && *req.OpenLibraryID != "" {
		if book, err := s.bookRepo.FindByOpenLibraryID(ctx, *req.OpenLibraryID); err == nil {
			return book, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if book, err := s.bookRepo.FindByTitleAuthorFuzzy(ctx, title, author); err == nil {
		return book, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	book := &models.Book{
		Title:           title,
		Author:          author,
		ISBN:            normalizeOptional(req.ISBN),
		CoverURL:        normalizeOptional(req.CoverURL),
		Description:     normalizeOptional(req.Description),
		Genre:           normalizeOptional(req.Genre),
		PublicationYear: req.PublicationYear,
		TotalPages:      req.TotalPages,
		OpenLibraryID:   normalizeOptional(req.OpenLibraryID),
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		// Lost a race on a dedup key; return the winner's row.
		if repository.IsUniqueViolation(err) {
			if req.ISBN != nil && *req.ISBN != "" {
				if existing, ferr := s.bookRepo.FindByISBN(ctx, *req.ISBN); ferr == nil {
					return existing, nil
				}
			}
			if req.OpenLibraryID != nil && *req.OpenLibraryID != "" {
				if existing, ferr := s.bookRepo.FindByOpenLibraryID(ctx, *req.OpenLibraryID); ferr == nil {
					return existing, nil
				}
			}
		}
		return nil, err
	}

	s.logger.Info("book_created", "book_id", book.ID, "title", book.Title)
	return book, nil
}

func (s *bookService) GetByID(ctx context.Context, bookID int64) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return book, err
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := strings.TrimSpace(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
