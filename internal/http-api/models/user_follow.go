package models

import "time"

// UserFollow is a directed follow edge. Self-follows and duplicate edges
// are rejected in the service layer; the composite unique index backs the
// duplicate check against concurrent requests.
type UserFollow struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FollowerID  int64     `json:"follower_id" gorm:"not null;uniqueIndex:idx_follower_following"`
	FollowingID int64     `json:"following_id" gorm:"not null;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Follower  *User `json:"follower,omitempty" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE;"`
	Following *User `json:"following,omitempty" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE;"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}
