package service

import (
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/validation"
)

const (
	feedActivityLimit = 30
	feedReviewLimit   = 10

	maxCommentLength = 1000
)

type SocialService interface {
	LikeReview(userID, readingID int64) (*dto.LikeStatusResponse, error)
	UnlikeReview(userID, readingID int64) (*dto.LikeStatusResponse, error)
	AddComment(userID, readingID int64, content string) (*dto.CommentResponse, error)
	GetComments(viewerID, readingID int64) ([]dto.CommentResponse, error)
	UpdateComment(userID, commentID int64, content string) (*dto.CommentResponse, error)
	DeleteComment(userID, commentID int64) error
	Feed(viewerID int64) (*dto.SocialFeedResponse, error)
}

type socialService struct {
	readingRepo     repository.ReadingRepository
	interactionRepo repository.InteractionRepository
	activityRepo    repository.ActivityRepository
	followRepo      repository.FollowRepository
	logger          *slog.Logger
}

func NewSocialService(
	readingRepo repository.ReadingRepository,
	interactionRepo repository.InteractionRepository,
	activityRepo repository.ActivityRepository,
	followRepo repository.FollowRepository,
	logger *slog.Logger,
) SocialService {
	return &socialService{
		readingRepo:     readingRepo,
		interactionRepo: interactionRepo,
		activityRepo:    activityRepo,
		followRepo:      followRepo,
		logger:          logger,
	}
}

// publicReading loads a reading and requires a public non-empty review.
// Private reviews surface as not-found so they stay invisible.
func (s *socialService) publicReading(readingID int64) (*models.Reading, error) {
	reading, err := s.readingRepo.GetByID(readingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if !reading.HasPublicReview() {
		return nil, ErrNotFound
	}
	return reading, nil
}

func (s *socialService) LikeReview(userID, readingID int64) (*dto.LikeStatusResponse, error) {
	if _, err := s.publicReading(readingID); err != nil {
		return nil, err
	}

	if _, err := s.interactionRepo.FindLike(userID, readingID); err == nil {
		return nil, &validation.Error{Message: "you already liked this review"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.interactionRepo.CreateLike(&models.ReviewLike{
		UserID:    userID,
		ReadingID: readingID,
	}); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &validation.Error{Message: "you already liked this review"}
		}
		return nil, err
	}

	count, err := s.interactionRepo.CountLikes(readingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review_liked", "user_id", userID, "reading_id", readingID)
	return &dto.LikeStatusResponse{ReadingID: readingID, Liked: true, LikeCount: count}, nil
}

func (s *socialService) UnlikeReview(userID, readingID int64) (*dto.LikeStatusResponse, error) {
	like, err := s.interactionRepo.FindLike(userID, readingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &validation.Error{Message: "you have not liked this review"}
	} else if err != nil {
		return nil, err
	}

	if err := s.interactionRepo.DeleteLike(like); err != nil {
		return nil, err
	}

	count, err := s.interactionRepo.CountLikes(readingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review_unliked", "user_id", userID, "reading_id", readingID)
	return &dto.LikeStatusResponse{ReadingID: readingID, Liked: false, LikeCount: count}, nil
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", &validation.Error{Message: "comment cannot be empty"}
	}
	if len(content) > maxCommentLength {
		return "", &validation.Error{Message: "comment is too long"}
	}
	return content, nil
}

func (s *socialService) AddComment(userID, readingID int64, content string) (*dto.CommentResponse, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.publicReading(readingID); err != nil {
		return nil, err
	}

	comment := &models.ReviewComment{
		UserID:    userID,
		ReadingID: readingID,
		Content:   content,
	}
	if err := s.interactionRepo.CreateComment(comment); err != nil {
		return nil, err
	}

	// Reload with the author for the response payload.
	created, err := s.interactionRepo.GetComment(comment.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment_added", "user_id", userID, "reading_id", readingID)
	resp := dto.FromModelToCommentResponse(created)
	return &resp, nil
}

func (s *socialService) GetComments(viewerID, readingID int64) ([]dto.CommentResponse, error) {
	reading, err := s.readingRepo.GetByID(readingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	// Owners can read comments on their own non-public review.
	if !reading.HasPublicReview() && reading.UserID != viewerID {
		return nil, ErrNotFound
	}

	comments, err := s.interactionRepo.GetCommentsForReading(readingID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.FromModelToCommentResponse(&comments[i]))
	}
	return out, nil
}

func (s *socialService) UpdateComment(userID, commentID int64, content string) (*dto.CommentResponse, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.interactionRepo.GetComment(commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotAuthorized
	}

	comment.Content = content
	if err := s.interactionRepo.UpdateComment(comment); err != nil {
		return nil, err
	}

	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

func (s *socialService) DeleteComment(userID, commentID int64) error {
	comment, err := s.interactionRepo.GetComment(commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotAuthorized
	}
	return s.interactionRepo.DeleteComment(comment)
}

// Feed returns followed users' (and the viewer's own) recent activities and
// public reviews side by side. Follow events are kept out of the feed.
func (s *socialService) Feed(viewerID int64) (*dto.SocialFeedResponse, error) {
	followingIDs, err := s.followRepo.FollowingIDs(viewerID)
	if err != nil {
		return nil, err
	}
	userIDs := append(followingIDs, viewerID)

	activities, err := s.activityRepo.RecentForUsers(userIDs, models.ActivityFollowedUser, feedActivityLimit)
	if err != nil {
		return nil, err
	}
	reviews, err := s.readingRepo.PublicReviewsForUsers(userIDs, feedReviewLimit)
	if err != nil {
		return nil, err
	}

	feed := &dto.SocialFeedResponse{
		Activities:    make([]dto.ActivityResponse, 0, len(activities)),
		RecentReviews: make([]dto.ReadingResponse, 0, len(reviews)),
	}
	for i := range activities {
		feed.Activities = append(feed.Activities, dto.FromModelToActivityResponse(&activities[i]))
	}
	for i := range reviews {
		reading := &reviews[i]
		resp := dto.FromModelToReadingResponse(reading)
		if count, err := s.interactionRepo.CountLikes(reading.ID); err == nil {
			resp.LikeCount = count
		}
		if count, err := s.interactionRepo.CountComments(reading.ID); err == nil {
			resp.CommentCount = count
		}
		if _, err := s.interactionRepo.FindLike(viewerID, reading.ID); err == nil {
			resp.IsLiked = true
		}
		feed.RecentReviews = append(feed.RecentReviews, resp)
	}
	return feed, nil
}
