package models

import "time"

type Recommendation struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          int64     `json:"user_id" gorm:"not null;index"`
	BookID          int64     `json:"book_id" gorm:"not null;index"`
	Reason          string    `json:"reason" gorm:"not null;type:text"` // AI explanation
	ConfidenceScore float64   `json:"confidence_score" gorm:"default:0"`
	IsDismissed     bool      `json:"is_dismissed" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE;"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
