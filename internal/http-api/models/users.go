package models

import "time"

type User struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	Name              string     `gorm:"not null" json:"name"`
	Username          string     `gorm:"uniqueIndex;not null" json:"username"`
	Password          *string    `gorm:"column:password_hash" json:"-"` // Not show in JSON; nil for OAuth-only accounts
	GoogleID          *string    `gorm:"uniqueIndex" json:"-"`
	Bio               *string    `json:"bio,omitempty"`
	Location          *string    `json:"location,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	ReadingGoal       int        `gorm:"default:12" json:"reading_goal"` // books per year
	Timezone          string     `gorm:"default:'UTC'" json:"timezone"`
	IsPrivate         bool       `gorm:"default:false" json:"is_private"`
	EmailVerified     bool       `gorm:"default:false" json:"email_verified"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
