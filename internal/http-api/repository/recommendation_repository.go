package repository

import (
	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

type RecommendationRepository interface {
	Create(tx *gorm.DB, rec *models.Recommendation) error
	DeleteAllForUser(tx *gorm.DB, userID int64) error
	GetActiveForUser(userID int64, limit int) ([]models.Recommendation, error)
	GetByIDAndUser(id, userID int64) (*models.Recommendation, error)
	Update(rec *models.Recommendation) error
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) Create(tx *gorm.DB, rec *models.Recommendation) error {
	return tx.Create(rec).Error
}

// DeleteAllForUser clears prior rows before a regenerate; the service
// runs clear and reinsert on one transaction handle.
func (r *recommendationRepository) DeleteAllForUser(tx *gorm.DB, userID int64) error {
	return tx.Where("user_id = ?", userID).Delete(&models.Recommendation{}).Error
}

func (r *recommendationRepository) GetActiveForUser(userID int64, limit int) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	query := r.db.Preload("Book").
		Where("user_id = ? AND is_dismissed = ?", userID, false).
		Order("confidence_score DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *recommendationRepository) GetByIDAndUser(id, userID int64) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) Update(rec *models.Recommendation) error {
	return r.db.Save(rec).Error
}
