package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"bookhub/internal/config"
	"bookhub/internal/googleauth"
	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/mailer"
	"bookhub/internal/middleware/auth"
)

// MockUserRepository mocks repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int64) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(googleID string) (*models.User, error) {
	args := m.Called(googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Search(query string, excludeUserID int64, limit int) ([]models.User, error) {
	args := m.Called(query, excludeUserID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockRefreshTokenRepository mocks repository.RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(refreshToken *models.RefreshToken) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(tokenString string) (*models.RefreshToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Delete(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

func newTestAuthService(userRepo *MockUserRepository, tokenRepo *MockRefreshTokenRepository) AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		JWTSecret:       "test-secret-key-that-is-long-enough",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	return NewAuthService(
		userRepo,
		tokenRepo,
		googleauth.NewClient("http://localhost/userinfo"),
		mailer.New("", "noreply@bookhub.app", "http://localhost:3000", logger),
		cfg,
		logger,
	)
}

func TestSignup_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("FindByEmail", "reader@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByUsername", "reader").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "Reader@Example.com",
		Name:     "Avid Reader",
		Username: "reader",
		Password: "reading4fun",
	})

	assert.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, "reader", user.Username)
	assert.NotNil(t, user.Password)
	// stored hash, not the plaintext
	assert.NotEqual(t, "reading4fun", *user.Password)
	assert.NoError(t, auth.VerifyPassword(*user.Password, "reading4fun"))
	userRepo.AssertExpectations(t)
}

func TestSignup_EmailInUse(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("FindByEmail", "reader@example.com").Return(&models.User{ID: 1}, nil)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "reader@example.com",
		Name:     "Avid Reader",
		Username: "reader",
		Password: "reading4fun",
	})

	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignup_WeakPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "reader@example.com",
		Name:     "Avid Reader",
		Username: "reader",
		Password: "onlyletters",
	})

	assert.Error(t, err)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, _ := auth.HashPassword("reading4fun")
	user := &models.User{
		ID:       1,
		Email:    "reader@example.com",
		Username: "reader",
		Password: &hashed,
		IsActive: true,
	}
	userRepo.On("FindByEmail", "reader@example.com").Return(user, nil)
	userRepo.On("Update", user).Return(nil)
	tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	access, refresh, loggedIn, err := svc.Login("reader@example.com", "reading4fun")

	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, int64(1), loggedIn.ID)
	assert.NotNil(t, loggedIn.LastLogin)

	// issued token is a valid access token
	token, err := svc.ValidateToken(access)
	assert.NoError(t, err)
	assert.True(t, token.Valid)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, _ := auth.HashPassword("reading4fun")
	user := &models.User{ID: 1, Email: "reader@example.com", Password: &hashed, IsActive: true}
	userRepo.On("FindByEmail", "reader@example.com").Return(user, nil)

	_, _, _, err := svc.Login("reader@example.com", "wrong-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("FindByEmail", "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, _, _, err := svc.Login("nobody@example.com", "whatever123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_OAuthOnlyAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	// no password hash on Google-only accounts
	userRepo.On("FindByEmail", "reader@example.com").Return(&models.User{ID: 1, IsActive: true}, nil)

	_, _, _, err := svc.Login("reader@example.com", "whatever123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshAccessToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	t.Run("Valid", func(t *testing.T) {
		tokenRepo.On("FindByToken", "good-token").Return(&models.RefreshToken{
			ID:        "rt-1",
			UserID:    1,
			Token:     "good-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()
		userRepo.On("FindByID", int64(1)).Return(&models.User{ID: 1, Username: "reader"}, nil).Once()

		access, err := svc.RefreshAccessToken("good-token")
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
	})

	t.Run("Expired", func(t *testing.T) {
		tokenRepo.On("FindByToken", "stale-token").Return(&models.RefreshToken{
			ID:        "rt-2",
			UserID:    1,
			Token:     "stale-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil).Once()
		tokenRepo.On("Delete", "rt-2").Return(nil).Once()

		_, err := svc.RefreshAccessToken("stale-token")
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Revoked", func(t *testing.T) {
		tokenRepo.On("FindByToken", "revoked-token").Return(&models.RefreshToken{
			ID:        "rt-3",
			UserID:    1,
			Token:     "revoked-token",
			ExpiresAt: time.Now().Add(time.Hour),
			Revoked:   true,
		}, nil).Once()

		_, err := svc.RefreshAccessToken("revoked-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Unknown", func(t *testing.T) {
		tokenRepo.On("FindByToken", "missing").Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := svc.RefreshAccessToken("missing")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo).(*authService)

	user := &models.User{ID: 7, Email: "reader@example.com"}
	userRepo.On("FindByID", int64(7)).Return(user, nil)
	userRepo.On("Update", user).Return(nil)

	token, err := svc.generatePurposeToken(7, tokenTypeVerifyEmail, time.Hour)
	assert.NoError(t, err)

	assert.NoError(t, svc.VerifyEmail(token))
	assert.True(t, user.EmailVerified)
}

func TestVerifyEmail_WrongPurpose(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo).(*authService)

	// a password-reset token must not verify an email
	token, err := svc.generatePurposeToken(7, tokenTypePasswordReset, time.Hour)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail(token), ErrInvalidToken)
}

func TestResetPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo).(*authService)

	old, _ := auth.HashPassword("oldpassword1")
	user := &models.User{ID: 7, Password: &old}
	userRepo.On("FindByID", int64(7)).Return(user, nil)
	userRepo.On("Update", user).Return(nil)

	token, err := svc.generatePurposeToken(7, tokenTypePasswordReset, time.Hour)
	assert.NoError(t, err)

	assert.NoError(t, svc.ResetPassword(token, "newpassword2"))
	assert.NoError(t, auth.VerifyPassword(*user.Password, "newpassword2"))
}

func TestFoldGoogleID(t *testing.T) {
	// fits in 63 bits: unchanged
	assert.Equal(t, "12345", foldGoogleID("12345"))
	// 2^63 folds to zero
	assert.Equal(t, "0", foldGoogleID("9223372036854775808"))
	// non-numeric ids pass through
	assert.Equal(t, "abc123", foldGoogleID("abc123"))
}

func TestSlugifyUsername(t *testing.T) {
	assert.Equal(t, "avid_reader", slugifyUsername("Avid Reader"))
	assert.Equal(t, "jos", slugifyUsername("Jos!"))
	assert.Equal(t, "", slugifyUsername("!!!"))
}
