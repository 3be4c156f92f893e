package dto

import (
	"time"

	"bookhub/internal/http-api/models"
)

// RecommendationResponse is one AI-suggested book with its rationale.
type RecommendationResponse struct {
	ID              int64         `json:"id"`
	BookID          int64         `json:"book_id"`
	Reason          string        `json:"reason"`
	ConfidenceScore float64       `json:"confidence_score"`
	IsDismissed     bool          `json:"is_dismissed"`
	CreatedAt       time.Time     `json:"created_at"`
	Book            *BookResponse `json:"book,omitempty"`
}

// FromModelToRecommendationResponse converts a Recommendation model to DTO
func FromModelToRecommendationResponse(rec *models.Recommendation) RecommendationResponse {
	resp := RecommendationResponse{
		ID:              rec.ID,
		BookID:          rec.BookID,
		Reason:          rec.Reason,
		ConfidenceScore: rec.ConfidenceScore,
		IsDismissed:     rec.IsDismissed,
		CreatedAt:       rec.CreatedAt,
	}
	if rec.Book != nil {
		book := FromModelToBookResponse(rec.Book)
		resp.Book = &book
	}
	return resp
}
