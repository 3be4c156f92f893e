package models

import "time"

// ReviewLike marks that a user liked a public review. Unique per
// (user, reading).
type ReviewLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_user_reading_like"`
	ReadingID int64     `json:"reading_id" gorm:"not null;uniqueIndex:idx_user_reading_like"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Reading *Reading `json:"reading,omitempty" gorm:"foreignKey:ReadingID;constraint:OnDelete:CASCADE;"`
}

func (ReviewLike) TableName() string {
	return "review_likes"
}

type ReviewComment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	ReadingID int64     `json:"reading_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Reading *Reading `json:"reading,omitempty" gorm:"foreignKey:ReadingID;constraint:OnDelete:CASCADE;"`
}

func (ReviewComment) TableName() string {
	return "review_comments"
}
