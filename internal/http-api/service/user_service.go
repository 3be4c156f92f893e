package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/storage"
	"bookhub/internal/validation"
)

type UserService interface {
	GetProfile(userID, viewerID int64) (*dto.UserPublicProfile, error)
	UpdateProfile(userID int64, patch dto.UserUpdateRequest) (*models.User, error)
	Search(query string, viewerID int64, limit int) ([]dto.UserPublicProfile, error)
	Follow(followerID, followingID int64) error
	Unfollow(followerID, followingID int64) error
	Followers(userID, viewerID int64) ([]dto.UserPublicProfile, error)
	Following(userID, viewerID int64) ([]dto.UserPublicProfile, error)
	GetUserReviews(userID, viewerID int64) ([]dto.ReadingResponse, error)
	UploadProfilePicture(ctx context.Context, userID int64, filename string, content []byte) (*models.User, error)
}

type userService struct {
	userRepo        repository.UserRepository
	followRepo      repository.FollowRepository
	readingRepo     repository.ReadingRepository
	interactionRepo repository.InteractionRepository
	activityRepo    repository.ActivityRepository
	storage         *storage.Client
	db              *gorm.DB
	logger          *slog.Logger
}

func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	readingRepo repository.ReadingRepository,
	interactionRepo repository.InteractionRepository,
	activityRepo repository.ActivityRepository,
	storageClient *storage.Client,
	logger *slog.Logger,
) UserService {
	return &userService{
		db:              db,
		userRepo:        userRepo,
		followRepo:      followRepo,
		readingRepo:     readingRepo,
		interactionRepo: interactionRepo,
		activityRepo:    activityRepo,
		storage:         storageClient,
		logger:          logger,
	}
}

// GetProfile assembles the public view with counts and the viewer's
// relationship recomputed live.
func (s *userService) GetProfile(userID, viewerID int64) (*dto.UserPublicProfile, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotFound
	}
	return s.buildProfile(user, viewerID)
}

func (s *userService) buildProfile(user *models.User, viewerID int64) (*dto.UserPublicProfile, error) {
	followers, err := s.followRepo.CountFollowers(user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(user.ID)
	if err != nil {
		return nil, err
	}

	profile := &dto.UserPublicProfile{
		ID:                user.ID,
		Name:              user.Name,
		Username:          user.Username,
		Bio:               user.Bio,
		Location:          user.Location,
		ProfilePictureURL: user.ProfilePictureURL,
		ReadingGoal:       user.ReadingGoal,
		IsPrivate:         user.IsPrivate,
		CreatedAt:         user.CreatedAt,
		FollowerCount:     followers,
		FollowingCount:    following,
		IsOwnProfile:      user.ID == viewerID,
	}
	if viewerID != 0 && viewerID != user.ID {
		if _, err := s.followRepo.Find(viewerID, user.ID); err == nil {
			profile.IsFollowing = true
		}
	}
	return profile, nil
}

// UpdateProfile applies a partial patch with username uniqueness enforced.
func (s *userService) UpdateProfile(userID int64, patch dto.UserUpdateRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, err := validation.Name(*patch.Name)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}
	if patch.Username != nil {
		username, err := validation.Username(*patch.Username)
		if err != nil {
			return nil, err
		}
		if username != user.Username {
			if _, err := s.userRepo.FindByUsername(username); err == nil {
				return nil, ErrUsernameInUse
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Username = username
		}
	}
	if patch.Bio != nil {
		bio, err := validation.Bio(patch.Bio)
		if err != nil {
			return nil, err
		}
		user.Bio = bio
	}
	if patch.Location != nil {
		location, err := validation.Location(patch.Location)
		if err != nil {
			return nil, err
		}
		user.Location = location
	}
	if patch.ReadingGoal != nil {
		goal, err := validation.ReadingGoal(*patch.ReadingGoal)
		if err != nil {
			return nil, err
		}
		user.ReadingGoal = goal
	}
	if patch.Timezone != nil {
		tz := strings.TrimSpace(*patch.Timezone)
		if tz == "" {
			return nil, &validation.Error{Message: "timezone cannot be empty"}
		}
		user.Timezone = tz
	}
	if patch.IsPrivate != nil {
		user.IsPrivate = *patch.IsPrivate
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameInUse
		}
		return nil, err
	}

	s.logger.Info("profile_updated", "user_id", user.ID)
	return user, nil
}

func (s *userService) Search(query string, viewerID int64, limit int) ([]dto.UserPublicProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &validation.Error{Message: "search query is required"}
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.userRepo.Search(query, viewerID, limit)
	if err != nil {
		return nil, err
	}

	profiles := make([]dto.UserPublicProfile, 0, len(users))
	for i := range users {
		profile, err := s.buildProfile(&users[i], viewerID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// Follow creates a directed edge and logs a followed_user activity in
// one transaction.
func (s *userService) Follow(followerID, followingID int64) error {
	if followerID == followingID {
		return &validation.Error{Message: "you cannot follow yourself"}
	}

	target, err := s.userRepo.FindByID(followingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	if _, err := s.followRepo.Find(followerID, followingID); err == nil {
		return &validation.Error{Message: "already following this user"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.followRepo.Create(tx, &models.UserFollow{
			FollowerID:  followerID,
			FollowingID: followingID,
		}); err != nil {
			if repository.IsUniqueViolation(err) {
				return &validation.Error{Message: "already following this user"}
			}
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"followed_user_id":  target.ID,
			"followed_username": target.Username,
		})
		if err != nil {
			return err
		}
		return s.activityRepo.Create(tx, &models.UserActivity{
			UserID:       followerID,
			ActivityType: models.ActivityFollowedUser,
			ActivityData: datatypes.JSON(payload),
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("user_followed", "follower_id", followerID, "following_id", followingID)
	return nil
}

func (s *userService) Unfollow(followerID, followingID int64) error {
	follow, err := s.followRepo.Find(followerID, followingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &validation.Error{Message: "you are not following this user"}
	} else if err != nil {
		return err
	}
	if err := s.followRepo.Delete(follow); err != nil {
		return err
	}

	s.logger.Info("user_unfollowed", "follower_id", followerID, "following_id", followingID)
	return nil
}

func (s *userService) Followers(userID, viewerID int64) ([]dto.UserPublicProfile, error) {
	if _, err := s.userRepo.FindByID(userID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	follows, err := s.followRepo.FollowersOf(userID)
	if err != nil {
		return nil, err
	}

	profiles := make([]dto.UserPublicProfile, 0, len(follows))
	for _, follow := range follows {
		if follow.Follower == nil || !follow.Follower.IsActive {
			continue
		}
		profile, err := s.buildProfile(follow.Follower, viewerID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

func (s *userService) Following(userID, viewerID int64) ([]dto.UserPublicProfile, error) {
	if _, err := s.userRepo.FindByID(userID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	follows, err := s.followRepo.FollowingOf(userID)
	if err != nil {
		return nil, err
	}

	profiles := make([]dto.UserPublicProfile, 0, len(follows))
	for _, follow := range follows {
		if follow.Following == nil || !follow.Following.IsActive {
			continue
		}
		profile, err := s.buildProfile(follow.Following, viewerID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// GetUserReviews lists a user's public reviews with social counters.
func (s *userService) GetUserReviews(userID, viewerID int64) ([]dto.ReadingResponse, error) {
	if _, err := s.userRepo.FindByID(userID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	readings, err := s.readingRepo.PublicReviewsForUsers([]int64{userID}, 0)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		reading := &readings[i]
		if !reading.HasPublicReview() {
			continue
		}
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
		out = append(out, resp)
	}
	return out, nil
}

// UploadProfilePicture stores the image and swaps the profile URL. The old
// object is removed best-effort.
func (s *userService) UploadProfilePicture(ctx context.Context, userID int64, filename string, content []byte) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	ext, err := validation.FileUpload(filename, content)
	if err != nil {
		return nil, err
	}
	if !s.storage.Enabled() {
		return nil, ErrExternalService
	}

	objectPath := fmt.Sprintf("%d/%s%s", userID, uuid.New().String(), ext)
	publicURL, err := s.storage.Upload(ctx, objectPath, contentTypeForExt(ext), content)
	if err != nil {
		s.logger.Error("profile_picture_upload_failed", "user_id", userID, "error", err)
		return nil, ErrExternalService
	}

	oldURL := user.ProfilePictureURL
	user.ProfilePictureURL = &publicURL
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	if oldURL != nil {
		if path, ok := storedObjectPath(*oldURL); ok {
			if err := s.storage.Delete(ctx, path); err != nil {
				s.logger.Warn("old_profile_picture_delete_failed", "user_id", userID, "error", err)
			}
		}
	}

	s.logger.Info("profile_picture_updated", "user_id", userID)
	return user, nil
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// storedObjectPath extracts the bucket-relative path from a public URL we
// issued earlier; external URLs (e.g. Google avatars) are left alone.
func storedObjectPath(publicURL string) (string, bool) {
	marker := "/storage/v1/object/public/profile-pictures/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", false
	}
	return publicURL[idx+len(marker):], true
}
