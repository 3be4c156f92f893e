package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types written by the reading and social services.
const (
	ActivityFinishedBook = "finished_book"
	ActivityRatedBook    = "rated_book"
	ActivityReviewedBook = "reviewed_book"
	ActivityFollowedUser = "followed_user"
)

// UserActivity is an append-only log row consumed by the social feed.
type UserActivity struct {
	ID           int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64          `json:"user_id" gorm:"not null;index"`
	ActivityType string         `json:"activity_type" gorm:"not null;index"`
	ActivityData datatypes.JSON `json:"activity_data"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime;index"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}
