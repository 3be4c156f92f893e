package repository

import (
	"time"

	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

// BookRatingAggregate carries the full recomputed aggregate for one book.
type BookRatingAggregate struct {
	Average float64
	Count   int64
}

// ReadingStatusCounts groups per-status totals for one user.
type ReadingStatusCounts struct {
	Total            int64
	Finished         int64
	CurrentlyReading int64
	WantToRead       int64
}

type ReadingRepository interface {
	Create(tx *gorm.DB, reading *models.Reading) error
	Update(tx *gorm.DB, reading *models.Reading) error
	Delete(tx *gorm.DB, readingID int64) error
	GetByID(readingID int64) (*models.Reading, error)
	GetByUserAndBook(userID, bookID int64) (*models.Reading, error)
	GetByUser(userID int64, status string, limit int) ([]models.Reading, error)
	GetFinishedByUser(userID int64) ([]models.Reading, error)
	GetAllByUser(userID int64) ([]models.Reading, error)
	CalculateBookRating(tx *gorm.DB, bookID int64) (*BookRatingAggregate, error)
	CountByStatus(userID int64) (*ReadingStatusCounts, error)
	CountFinishedSince(userID int64, since time.Time) (int64, error)
	AverageRatingForUser(userID int64) (*float64, error)
	PublicReviewsForUsers(userIDs []int64, limit int) ([]models.Reading, error)
}

type readingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) ReadingRepository {
	return &readingRepository{db: db}
}

// Create inserts within the given transaction handle so multi-step
// mutations (insert + activities + rating recompute) commit atomically.
func (r *readingRepository) Create(tx *gorm.DB, reading *models.Reading) error {
	return tx.Create(reading).Error
}

func (r *readingRepository) Update(tx *gorm.DB, reading *models.Reading) error {
	return tx.Save(reading).Error
}

func (r *readingRepository) Delete(tx *gorm.DB, readingID int64) error {
	return tx.Delete(&models.Reading{}, readingID).Error
}

func (r *readingRepository) GetByID(readingID int64) (*models.Reading, error) {
	var reading models.Reading
	err := r.db.Preload("Book").Preload("User").First(&reading, readingID).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *readingRepository) GetByUserAndBook(userID, bookID int64) (*models.Reading, error) {
	var reading models.Reading
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *readingRepository) GetByUser(userID int64, status string, limit int) ([]models.Reading, error) {
	var readings []models.Reading
	query := r.db.Preload("Book").Preload("User").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *readingRepository) GetFinishedByUser(userID int64) ([]models.Reading, error) {
	var readings []models.Reading
	err := r.db.Preload("Book").
		Where("user_id = ? AND status = ?", userID, models.StatusFinished).
		Order("finished_at DESC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *readingRepository) GetAllByUser(userID int64) ([]models.Reading, error) {
	var readings []models.Reading
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// CalculateBookRating recomputes the full aggregate over all rated
// readings of a book. Runs on the caller's transaction handle.
func (r *readingRepository) CalculateBookRating(tx *gorm.DB, bookID int64) (*BookRatingAggregate, error) {
	var agg struct {
		Average float64
		Count   int64
	}
	err := tx.Model(&models.Reading{}).
		Select("COALESCE(AVG(rating), 0) as average, COUNT(rating) as count").
		Where("book_id = ? AND rating IS NOT NULL", bookID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &BookRatingAggregate{Average: agg.Average, Count: agg.Count}, nil
}

func (r *readingRepository) CountByStatus(userID int64) (*ReadingStatusCounts, error) {
	counts := &ReadingStatusCounts{}
	rows := []struct {
		Status string
		N      int64
	}{}
	err := r.db.Model(&models.Reading{}).
		Select("status, COUNT(*) as n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts.Total += row.N
		switch row.Status {
		case models.StatusFinished:
			counts.Finished = row.N
		case models.StatusCurrentlyReading:
			counts.CurrentlyReading = row.N
		case models.StatusWantToRead:
			counts.WantToRead = row.N
		}
	}
	return counts, nil
}

func (r *readingRepository) CountFinishedSince(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reading{}).
		Where("user_id = ? AND status = ? AND finished_at >= ?", userID, models.StatusFinished, since).
		Count(&count).Error
	return count, err
}

func (r *readingRepository) AverageRatingForUser(userID int64) (*float64, error) {
	var row struct {
		Average *float64
	}
	err := r.db.Model(&models.Reading{}).
		Select("AVG(rating) as average").
		Where("user_id = ? AND rating IS NOT NULL", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Average, nil
}

// PublicReviewsForUsers returns recent readings with public non-null
// reviews for the given authors, most recently updated first.
func (r *readingRepository) PublicReviewsForUsers(userIDs []int64, limit int) ([]models.Reading, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var readings []models.Reading
	query := r.db.Preload("Book").Preload("User").
		Where("user_id IN ?", userIDs).
		Where("is_review_public = ?", true).
		Where("review IS NOT NULL").
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}
