package dto

import (
	"time"

	"bookhub/internal/http-api/models"
)

// UserResponse is the owner-facing view of an account.
type UserResponse struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Username          string     `json:"username"`
	Bio               *string    `json:"bio,omitempty"`
	Location          *string    `json:"location,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	ReadingGoal       int        `json:"reading_goal"`
	Timezone          string     `json:"timezone"`
	IsPrivate         bool       `json:"is_private"`
	EmailVerified     bool       `json:"email_verified"`
	IsActive          bool       `json:"is_active"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// UserPublicProfile is the social view of an account, with live follower
// counts and the viewer's relationship recomputed per call.
type UserPublicProfile struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Username          string    `json:"username"`
	Bio               *string   `json:"bio,omitempty"`
	Location          *string   `json:"location,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	ReadingGoal       int       `json:"reading_goal"`
	IsPrivate         bool      `json:"is_private"`
	CreatedAt         time.Time `json:"created_at"`
	FollowerCount     int64     `json:"follower_count"`
	FollowingCount    int64     `json:"following_count"`
	IsFollowing       bool      `json:"is_following"`
	IsOwnProfile      bool      `json:"is_own_profile"`
}

// UserUpdateRequest is a partial profile patch.
type UserUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Username    *string `json:"username,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Location    *string `json:"location,omitempty"`
	ReadingGoal *int    `json:"reading_goal,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

// FromModelToUserResponse converts a User model to UserResponse DTO
func FromModelToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		Username:          user.Username,
		Bio:               user.Bio,
		Location:          user.Location,
		ProfilePictureURL: user.ProfilePictureURL,
		ReadingGoal:       user.ReadingGoal,
		Timezone:          user.Timezone,
		IsPrivate:         user.IsPrivate,
		EmailVerified:     user.EmailVerified,
		IsActive:          user.IsActive,
		LastLogin:         user.LastLogin,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
}
