package repository

import (
	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

type FollowRepository interface {
	Create(tx *gorm.DB, follow *models.UserFollow) error
	Delete(follow *models.UserFollow) error
	Find(followerID, followingID int64) (*models.UserFollow, error)
	FollowersOf(userID int64) ([]models.UserFollow, error)
	FollowingOf(userID int64) ([]models.UserFollow, error)
	FollowingIDs(userID int64) ([]int64, error)
	CountFollowers(userID int64) (int64, error)
	CountFollowing(userID int64) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(tx *gorm.DB, follow *models.UserFollow) error {
	return tx.Create(follow).Error
}

func (r *followRepository) Delete(follow *models.UserFollow) error {
	return r.db.Delete(follow).Error
}

func (r *followRepository) Find(followerID, followingID int64) (*models.UserFollow, error) {
	var follow models.UserFollow
	err := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) FollowersOf(userID int64) ([]models.UserFollow, error) {
	var follows []models.UserFollow
	err := r.db.Preload("Follower").Where("following_id = ?", userID).Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

func (r *followRepository) FollowingOf(userID int64) ([]models.UserFollow, error) {
	var follows []models.UserFollow
	err := r.db.Preload("Following").Where("follower_id = ?", userID).Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

func (r *followRepository) FollowingIDs(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&models.UserFollow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *followRepository) CountFollowers(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserFollow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserFollow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
