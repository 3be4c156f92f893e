package repository

import (
	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

// InteractionRepository covers likes and comments on public reviews.
type InteractionRepository interface {
	CreateLike(like *models.ReviewLike) error
	DeleteLike(like *models.ReviewLike) error
	FindLike(userID, readingID int64) (*models.ReviewLike, error)
	CountLikes(readingID int64) (int64, error)

	CreateComment(comment *models.ReviewComment) error
	GetComment(commentID int64) (*models.ReviewComment, error)
	GetCommentsForReading(readingID int64) ([]models.ReviewComment, error)
	UpdateComment(comment *models.ReviewComment) error
	DeleteComment(comment *models.ReviewComment) error
	CountComments(readingID int64) (int64, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) CreateLike(like *models.ReviewLike) error {
	return r.db.Create(like).Error
}

func (r *interactionRepository) DeleteLike(like *models.ReviewLike) error {
	return r.db.Delete(like).Error
}

func (r *interactionRepository) FindLike(userID, readingID int64) (*models.ReviewLike, error) {
	var like models.ReviewLike
	err := r.db.Where("user_id = ? AND reading_id = ?", userID, readingID).First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *interactionRepository) CountLikes(readingID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReviewLike{}).Where("reading_id = ?", readingID).Count(&count).Error
	return count, err
}

func (r *interactionRepository) CreateComment(comment *models.ReviewComment) error {
	return r.db.Create(comment).Error
}

func (r *interactionRepository) GetComment(commentID int64) (*models.ReviewComment, error) {
	var comment models.ReviewComment
	err := r.db.Preload("User").First(&comment, commentID).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *interactionRepository) GetCommentsForReading(readingID int64) ([]models.ReviewComment, error) {
	var comments []models.ReviewComment
	err := r.db.Preload("User").
		Where("reading_id = ?", readingID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *interactionRepository) UpdateComment(comment *models.ReviewComment) error {
	return r.db.Save(comment).Error
}

func (r *interactionRepository) DeleteComment(comment *models.ReviewComment) error {
	return r.db.Delete(comment).Error
}

func (r *interactionRepository) CountComments(readingID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReviewComment{}).Where("reading_id = ?", readingID).Count(&count).Error
	return count, err
}
