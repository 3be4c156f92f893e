package repository

import (
	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	FindByID(id int64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByGoogleID(googleID string) (*models.User, error)
	Search(query string, excludeUserID int64, limit int) ([]models.User, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) FindByID(id int64) (*models.User, error) {
	var user models.User
	// return nil on error so a zero-value struct never masquerades as a hit
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(googleID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Search matches name or username by case-insensitive substring, skipping
// the requesting user and disabled accounts.
func (r *userRepository) Search(query string, excludeUserID int64, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + escapeLike(query) + "%"
	err := r.db.
		Where("(LOWER(name) LIKE LOWER(?) ESCAPE '\\' OR LOWER(username) LIKE LOWER(?) ESCAPE '\\')", pattern, pattern).
		Where("id <> ?", excludeUserID).
		Where("is_active = ?", true).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
