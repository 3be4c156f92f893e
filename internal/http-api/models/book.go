package models

import "time"

type Book struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string     `json:"title" gorm:"not null;index"`
	Author          string     `json:"author" gorm:"not null"`
	ISBN            *string    `json:"isbn,omitempty" gorm:"uniqueIndex;size:20"`
	CoverURL        *string    `json:"cover_url,omitempty"`
	Description     *string    `json:"description,omitempty" gorm:"type:text"`
	Genre           *string    `json:"genre,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`
	TotalPages      *int       `json:"total_pages,omitempty"`
	OpenLibraryID   *string    `json:"open_library_id,omitempty" gorm:"uniqueIndex;size:40"`
	AverageRating   *float64   `json:"average_rating,omitempty" gorm:"type:decimal(3,2)"`
	TotalRatings    int        `json:"total_ratings" gorm:"default:0"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Book) TableName() string {
	return "books"
}
