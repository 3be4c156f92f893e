package dto

import (
	"time"

	"bookhub/internal/http-api/models"
)

// ReadingCreate starts tracking a book for the caller. The book must already
// exist in the local catalog (resolve it through the books endpoints first).
type ReadingCreate struct {
	BookID         int64   `json:"book_id" binding:"required"`
	Status         string  `json:"status" binding:"required"`
	Rating         *int    `json:"rating,omitempty"`
	Review         *string `json:"review,omitempty"`
	IsReviewPublic *bool   `json:"is_review_public,omitempty"`
	ProgressPages  *int    `json:"progress_pages,omitempty"`
	TotalPages     *int    `json:"total_pages,omitempty"`
}

// ReadingUpdate is a partial patch; absent fields are left untouched.
type ReadingUpdate struct {
	Status         *string `json:"status,omitempty"`
	Rating         *int    `json:"rating,omitempty"`
	Review         *string `json:"review,omitempty"`
	IsReviewPublic *bool   `json:"is_review_public,omitempty"`
	ProgressPages  *int    `json:"progress_pages,omitempty"`
	TotalPages     *int    `json:"total_pages,omitempty"`
}

// ReadingResponse is one tracked book with its catalog entry and, where the
// review is public, its social counters.
type ReadingResponse struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	BookID         int64         `json:"book_id"`
	Status         string        `json:"status"`
	Rating         *int          `json:"rating,omitempty"`
	Review         *string       `json:"review,omitempty"`
	IsReviewPublic bool          `json:"is_review_public"`
	ProgressPages  int           `json:"progress_pages"`
	TotalPages     *int          `json:"total_pages,omitempty"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Book           *BookResponse `json:"book,omitempty"`
	Username       *string       `json:"username,omitempty"`
	LikeCount      int64         `json:"like_count"`
	CommentCount   int64         `json:"comment_count"`
	IsLiked        bool          `json:"is_liked"`
}

// FromModelToReadingResponse converts a Reading model to ReadingResponse DTO
func FromModelToReadingResponse(reading *models.Reading) ReadingResponse {
	resp := ReadingResponse{
		ID:             reading.ID,
		UserID:         reading.UserID,
		BookID:         reading.BookID,
		Status:         reading.Status,
		Rating:         reading.Rating,
		Review:         reading.Review,
		IsReviewPublic: reading.IsReviewPublic,
		ProgressPages:  reading.ProgressPages,
		TotalPages:     reading.TotalPages,
		StartedAt:      reading.StartedAt,
		FinishedAt:     reading.FinishedAt,
		CreatedAt:      reading.CreatedAt,
		UpdatedAt:      reading.UpdatedAt,
	}
	if reading.Book != nil {
		book := FromModelToBookResponse(reading.Book)
		resp.Book = &book
	}
	if reading.User != nil {
		resp.Username = &reading.User.Username
	}
	return resp
}
