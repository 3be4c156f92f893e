package repository

import (
	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(tx *gorm.DB, activity *models.UserActivity) error
	RecentForUsers(userIDs []int64, excludeType string, limit int) ([]models.UserActivity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(tx *gorm.DB, activity *models.UserActivity) error {
	return tx.Create(activity).Error
}

// RecentForUsers returns the newest activity rows for the given users,
// optionally excluding one activity type (the feed drops followed_user).
func (r *activityRepository) RecentForUsers(userIDs []int64, excludeType string, limit int) ([]models.UserActivity, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var activities []models.UserActivity
	query := r.db.Preload("User").Where("user_id IN ?", userIDs)
	if excludeType != "" {
		query = query.Where("activity_type <> ?", excludeType)
	}
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
