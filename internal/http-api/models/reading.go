package models

import "time"

// Reading status values
const (
	StatusWantToRead       = "want_to_read"
	StatusCurrentlyReading = "currently_reading"
	StatusFinished         = "finished"
)

// Reading is one user's tracked relationship to one book. One row per
// (user, book) pair, enforced by the composite unique index.
type Reading struct {
	ID             int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         int64      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_book"`
	BookID         int64      `json:"book_id" gorm:"not null;uniqueIndex:idx_user_book"`
	Status         string     `json:"status" gorm:"not null;type:text"`
	Rating         *int       `json:"rating,omitempty" gorm:"check:rating >= 1 AND rating <= 5"`
	Review         *string    `json:"review,omitempty" gorm:"type:text"`
	IsReviewPublic bool       `json:"is_review_public" gorm:"default:false"`
	ProgressPages  int        `json:"progress_pages" gorm:"default:0"`
	TotalPages     *int       `json:"total_pages,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE;"`
}

func (Reading) TableName() string {
	return "readings"
}

// HasPublicReview reports whether the review is visible to non-owners.
func (r *Reading) HasPublicReview() bool {
	return r.IsReviewPublic && r.Review != nil && *r.Review != ""
}
