package dto

import (
	"time"

	"bookhub/internal/http-api/models"
)

// BookCreate carries the metadata used to resolve or insert a catalog entry.
type BookCreate struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	ISBN            *string `json:"isbn,omitempty"`
	CoverURL        *string `json:"cover_url,omitempty"`
	Description     *string `json:"description,omitempty"`
	Genre           *string `json:"genre,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
	TotalPages      *int    `json:"total_pages,omitempty"`
	OpenLibraryID   *string `json:"open_library_id,omitempty"`
}

// BookResponse is the catalog view of a book, including community aggregates.
type BookResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            *string    `json:"isbn,omitempty"`
	CoverURL        *string    `json:"cover_url,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Genre           *string    `json:"genre,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`
	TotalPages      *int       `json:"total_pages,omitempty"`
	OpenLibraryID   *string    `json:"open_library_id,omitempty"`
	AverageRating   *float64   `json:"average_rating,omitempty"`
	TotalRatings    int        `json:"total_ratings"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// BookSearchResult is one external catalog hit, normalized for the client.
type BookSearchResult struct {
	OpenLibraryID    string   `json:"open_library_id"`
	Title            string   `json:"title"`
	Author           string   `json:"author"`
	ISBN             *string  `json:"isbn,omitempty"`
	CoverURL         *string  `json:"cover_url,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
}

// FromModelToBookResponse converts a Book model to BookResponse DTO
func FromModelToBookResponse(book *models.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		CoverURL:        book.CoverURL,
		Description:     book.Description,
		Genre:           book.Genre,
		PublicationYear: book.PublicationYear,
		TotalPages:      book.TotalPages,
		OpenLibraryID:   book.OpenLibraryID,
		AverageRating:   book.AverageRating,
		TotalRatings:    book.TotalRatings,
		CreatedAt:       book.CreatedAt,
	}
}
