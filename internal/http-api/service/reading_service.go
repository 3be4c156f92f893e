package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/validation"
)

type ReadingService interface {
	Create(ctx context.Context, userID int64, req dto.ReadingCreate) (*dto.ReadingResponse, error)
	Update(ctx context.Context, readingID, userID int64, patch dto.ReadingUpdate) (*dto.ReadingResponse, error)
	Delete(ctx context.Context, readingID, userID int64) error
	GetByID(readingID, viewerID int64) (*dto.ReadingResponse, error)
	GetUserReadings(userID int64, status string) ([]dto.ReadingResponse, error)
	Stats(userID int64, readingGoal int) (*dto.ReadingStats, error)
}

type readingService struct {
	db              *gorm.DB
	readingRepo     repository.ReadingRepository
	bookRepo        *repository.BookRepo
	interactionRepo repository.InteractionRepository
	activityRepo    repository.ActivityRepository
	logger          *slog.Logger
}

func NewReadingService(
	db *gorm.DB,
	readingRepo repository.ReadingRepository,
	bookRepo *repository.BookRepo,
	interactionRepo repository.InteractionRepository,
	activityRepo repository.ActivityRepository,
	logger *slog.Logger,
) ReadingService {
	return &readingService{
		db:              db,
		readingRepo:     readingRepo,
		bookRepo:        bookRepo,
		interactionRepo: interactionRepo,
		activityRepo:    activityRepo,
		logger:          logger,
	}
}

func validStatus(status string) bool {
	switch status {
	case models.StatusWantToRead, models.StatusCurrentlyReading, models.StatusFinished:
		return true
	}
	return false
}

// Create starts tracking a book. The insert, any activity rows, and the
// book rating recompute commit in one transaction.
func (s *readingService) Create(ctx context.Context, userID int64, req dto.ReadingCreate) (*dto.ReadingResponse, error) {
	if !validStatus(req.Status) {
		return nil, &validation.Error{Message: "invalid reading status"}
	}
	if _, err := validation.Rating(req.Rating); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(ctx, req.BookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	if _, err := s.readingRepo.GetByUserAndBook(userID, req.BookID); err == nil {
		return nil, &validation.Error{Message: "book is already in your library"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	reading := &models.Reading{
		UserID:        userID,
		BookID:        req.BookID,
		Status:        req.Status,
		Rating:        req.Rating,
		Review:        req.Review,
		ProgressPages: 0,
		TotalPages:    book.TotalPages,
	}
	if req.IsReviewPublic != nil {
		reading.IsReviewPublic = *req.IsReviewPublic
	}
	if req.TotalPages != nil {
		reading.TotalPages = req.TotalPages
	}
	if req.ProgressPages != nil && *req.ProgressPages > 0 {
		reading.ProgressPages = *req.ProgressPages
	}

	switch req.Status {
	case models.StatusCurrentlyReading:
		reading.StartedAt = &now
	case models.StatusFinished:
		reading.StartedAt = &now
		reading.FinishedAt = &now
		if reading.TotalPages != nil {
			reading.ProgressPages = *reading.TotalPages
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.readingRepo.Create(tx, reading); err != nil {
			if repository.IsUniqueViolation(err) {
				return &validation.Error{Message: "book is already in your library"}
			}
			return err
		}

		if reading.Status == models.StatusFinished {
			if err := s.emitActivity(tx, userID, models.ActivityFinishedBook, book); err != nil {
				return err
			}
		}
		if reading.Rating != nil {
			if err := s.emitRatingActivity(tx, userID, book, *reading.Rating); err != nil {
				return err
			}
		}
		if reading.HasPublicReview() {
			if err := s.emitActivity(tx, userID, models.ActivityReviewedBook, book); err != nil {
				return err
			}
		}

		if reading.Rating != nil {
			return s.recomputeBookRating(ctx, tx, book.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading_created", "user_id", userID, "book_id", book.ID, "status", reading.Status)
	reading.Book = book
	resp := s.enrich(reading, userID)
	return &resp, nil
}

// Update applies a partial patch. Timestamps move only on transitions into
// a state, and activities are emitted only for fields that actually changed.
func (s *readingService) Update(ctx context.Context, readingID, userID int64, patch dto.ReadingUpdate) (*dto.ReadingResponse, error) {
	reading, err := s.readingRepo.GetByID(readingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if reading.UserID != userID {
		return nil, ErrNotAuthorized
	}
	if patch.Status != nil && !validStatus(*patch.Status) {
		return nil, &validation.Error{Message: "invalid reading status"}
	}
	if _, err := validation.Rating(patch.Rating); err != nil {
		return nil, err
	}

	prevStatus := reading.Status
	prevRating := reading.Rating
	prevPublicReview := reading.HasPublicReview()

	now := time.Now()
	if patch.Status != nil && *patch.Status != prevStatus {
		reading.Status = *patch.Status
		switch *patch.Status {
		case models.StatusCurrentlyReading:
			if reading.StartedAt == nil {
				reading.StartedAt = &now
			}
		case models.StatusFinished:
			if reading.StartedAt == nil {
				reading.StartedAt = &now
			}
			reading.FinishedAt = &now
			if reading.TotalPages != nil {
				reading.ProgressPages = *reading.TotalPages
			}
		}
	}
	if patch.Rating != nil {
		reading.Rating = patch.Rating
	}
	if patch.Review != nil {
		reading.Review = patch.Review
	}
	if patch.IsReviewPublic != nil {
		reading.IsReviewPublic = *patch.IsReviewPublic
	}
	if patch.TotalPages != nil {
		reading.TotalPages = patch.TotalPages
	}
	if patch.ProgressPages != nil {
		reading.ProgressPages = *patch.ProgressPages
	}

	book := reading.Book
	if book == nil {
		book, err = s.bookRepo.GetByID(ctx, reading.BookID)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.readingRepo.Update(tx, reading); err != nil {
			return err
		}

		if reading.Status == models.StatusFinished && prevStatus != models.StatusFinished {
			if err := s.emitActivity(tx, userID, models.ActivityFinishedBook, book); err != nil {
				return err
			}
		}
		ratingChanged := patch.Rating != nil && (prevRating == nil || *prevRating != *patch.Rating)
		if ratingChanged {
			if err := s.emitRatingActivity(tx, userID, book, *reading.Rating); err != nil {
				return err
			}
		}
		if reading.HasPublicReview() && !prevPublicReview {
			if err := s.emitActivity(tx, userID, models.ActivityReviewedBook, book); err != nil {
				return err
			}
		}

		if patch.Rating != nil {
			return s.recomputeBookRating(ctx, tx, reading.BookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading_updated", "user_id", userID, "reading_id", reading.ID)
	reading.Book = book
	resp := s.enrich(reading, userID)
	return &resp, nil
}

// Delete removes the reading and recomputes the book aggregate, which
// zeroes out when the last rating disappears.
func (s *readingService) Delete(ctx context.Context, readingID, userID int64) error {
	reading, err := s.readingRepo.GetByID(readingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	if reading.UserID != userID {
		return ErrNotAuthorized
	}

	bookID := reading.BookID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.readingRepo.Delete(tx, readingID); err != nil {
			return err
		}
		return s.recomputeBookRating(ctx, tx, bookID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reading_deleted", "user_id", userID, "reading_id", readingID)
	return nil
}

func (s *readingService) GetByID(readingID, viewerID int64) (*dto.ReadingResponse, error) {
	reading, err := s.readingRepo.GetByID(readingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	// Hidden rather than forbidden so the row's existence does not leak.
	if reading.UserID != viewerID && !reading.HasPublicReview() {
		return nil, ErrNotFound
	}
	resp := s.enrich(reading, viewerID)
	return &resp, nil
}

func (s *readingService) GetUserReadings(userID int64, status string) ([]dto.ReadingResponse, error) {
	if status != "" && !validStatus(status) {
		return nil, &validation.Error{Message: "invalid reading status"}
	}
	readings, err := s.readingRepo.GetByUser(userID, status, 0)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		out = append(out, s.enrich(&readings[i], userID))
	}
	return out, nil
}

// Stats assembles the dashboard counters for one user.
func (s *readingService) Stats(userID int64, readingGoal int) (*dto.ReadingStats, error) {
	counts, err := s.readingRepo.CountByStatus(userID)
	if err != nil {
		return nil, err
	}

	yearStart := time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	booksThisYear, err := s.readingRepo.CountFinishedSince(userID, yearStart)
	if err != nil {
		return nil, err
	}

	avg, err := s.readingRepo.AverageRatingForUser(userID)
	if err != nil {
		return nil, err
	}
	if avg != nil {
		rounded := math.Round(*avg*10) / 10
		avg = &rounded
	}

	stats := &dto.ReadingStats{
		TotalBooks:       counts.Total,
		BooksThisYear:    booksThisYear,
		CurrentlyReading: counts.CurrentlyReading,
		WantToRead:       counts.WantToRead,
		Finished:         counts.Finished,
		AverageRating:    avg,
		ReadingGoal:      readingGoal,
	}
	if readingGoal > 0 {
		progress := float64(booksThisYear) / float64(readingGoal) * 100
		stats.GoalProgress = math.Min(math.Round(progress*10)/10, 100)
	}
	return stats, nil
}

// enrich attaches like/comment counters for readings whose review is
// visible to other users.
func (s *readingService) enrich(reading *models.Reading, viewerID int64) dto.ReadingResponse {
	resp := dto.FromModelToReadingResponse(reading)
	if !reading.HasPublicReview() {
		return resp
	}

	if count, err := s.interactionRepo.CountLikes(reading.ID); err == nil {
		resp.LikeCount = count
	}
	if count, err := s.interactionRepo.CountComments(reading.ID); err == nil {
		resp.CommentCount = count
	}
	if _, err := s.interactionRepo.FindLike(viewerID, reading.ID); err == nil {
		resp.IsLiked = true
	}
	return resp
}

func (s *readingService) recomputeBookRating(ctx context.Context, tx *gorm.DB, bookID int64) error {
	agg, err := s.readingRepo.CalculateBookRating(tx, bookID)
	if err != nil {
		return err
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if agg.Count == 0 {
		book.AverageRating = nil
		book.TotalRatings = 0
	} else {
		rounded := math.Round(agg.Average*100) / 100
		book.AverageRating = &rounded
		book.TotalRatings = int(agg.Count)
	}
	return tx.Save(book).Error
}

func (s *readingService) emitActivity(tx *gorm.DB, userID int64, activityType string, book *models.Book) error {
	payload, err := json.Marshal(map[string]any{
		"book_id":    book.ID,
		"book_title": book.Title,
		"author":     book.Author,
	})
	if err != nil {
		return err
	}
	return s.activityRepo.Create(tx, &models.UserActivity{
		UserID:       userID,
		ActivityType: activityType,
		ActivityData: datatypes.JSON(payload),
	})
}

func (s *readingService) emitRatingActivity(tx *gorm.DB, userID int64, book *models.Book, rating int) error {
	payload, err := json.Marshal(map[string]any{
		"book_id":    book.ID,
		"book_title": book.Title,
		"author":     book.Author,
		"rating":     rating,
	})
	if err != nil {
		return err
	}
	return s.activityRepo.Create(tx, &models.UserActivity{
		UserID:       userID,
		ActivityType: models.ActivityRatedBook,
		ActivityData: datatypes.JSON(payload),
	})
}
