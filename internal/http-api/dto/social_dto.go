package dto

import (
	"encoding/json"
	"time"

	"bookhub/internal/http-api/models"
)

// FollowRequest names the account the caller wants to follow.
type FollowRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// CommentCreate adds a comment under a public review.
type CommentCreate struct {
	Content string `json:"content" binding:"required"`
}

// CommentUpdate rewrites an existing comment's text.
type CommentUpdate struct {
	Content string `json:"content" binding:"required"`
}

// CommentResponse is one comment with its author's display info.
type CommentResponse struct {
	ID        int64     `json:"id"`
	ReadingID int64     `json:"reading_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  *string   `json:"username,omitempty"`
	Name      *string   `json:"name,omitempty"`
}

// LikeStatusResponse reports the like state of a review after a toggle.
type LikeStatusResponse struct {
	ReadingID int64 `json:"reading_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ActivityResponse is one feed event with its decoded payload.
type ActivityResponse struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Username     *string         `json:"username,omitempty"`
	ActivityType string          `json:"activity_type"`
	ActivityData json.RawMessage `json:"activity_data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SocialFeedResponse is the home feed: followed users' activities plus their
// latest public reviews.
type SocialFeedResponse struct {
	Activities    []ActivityResponse `json:"activities"`
	RecentReviews []ReadingResponse  `json:"recent_reviews"`
}

// FollowResponse confirms a follow relationship change.
type FollowResponse struct {
	FollowingID int64  `json:"following_id"`
	Status      string `json:"status"`
}

// FromModelToCommentResponse converts a ReviewComment model to DTO
func FromModelToCommentResponse(c *models.ReviewComment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		ReadingID: c.ReadingID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.User != nil {
		resp.Username = &c.User.Username
		resp.Name = &c.User.Name
	}
	return resp
}

// FromModelToActivityResponse converts a UserActivity model to DTO
func FromModelToActivityResponse(a *models.UserActivity) ActivityResponse {
	resp := ActivityResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		ActivityType: a.ActivityType,
		ActivityData: json.RawMessage(a.ActivityData),
		CreatedAt:    a.CreatedAt,
	}
	if a.User != nil {
		resp.Username = &a.User.Username
	}
	return resp
}
