package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookhub/internal/config"
	"bookhub/internal/googleauth"
	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/mailer"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/validation"
)

// Single-purpose token types carried in the "type" JWT claim.
const (
	tokenTypeAccess        = "access"
	tokenTypeVerifyEmail   = "verify_email"
	tokenTypePasswordReset = "password_reset"

	verifyEmailTTL   = 24 * time.Hour
	passwordResetTTL = time.Hour
)

// Dummy bcrypt hash compared against on unknown accounts so login timing
// does not reveal whether an email exists.
const dummyPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

type AuthService interface {
	GoogleAuth(ctx context.Context, accessToken string) (string, string, *models.User, error)
	Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error)
	Login(email, password string) (string, string, *models.User, error)
	RefreshAccessToken(refreshToken string) (string, error)
	VerifyEmail(token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(token, newPassword string) error
	ResendVerification(ctx context.Context, email string) error
	GetUser(userID int64) (*models.User, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	AccessTokenTTL() time.Duration
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	google           *googleauth.Client
	mail             *mailer.Mailer
	logger           *slog.Logger
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	google *googleauth.Client,
	mail *mailer.Mailer,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		google:           google,
		mail:             mail,
		logger:           logger,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

func (s *authService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// GoogleAuth verifies a Google access token, resolves or provisions the
// matching account, and issues a token pair.
func (s *authService) GoogleAuth(ctx context.Context, accessToken string) (string, string, *models.User, error) {
	info, err := s.google.VerifyToken(ctx, accessToken)
	if err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	googleID := foldGoogleID(info.ID)

	user, err := s.userRepo.FindByGoogleID(googleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Existing email-auth account: link the Google identity.
		user, err = s.userRepo.FindByEmail(strings.ToLower(info.Email))
		if err == nil {
			user.GoogleID = &googleID
			user.EmailVerified = true
			if err := s.userRepo.Update(user); err != nil {
				return "", "", nil, err
			}
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			user, err = s.provisionGoogleUser(info, googleID)
			if err != nil {
				return "", "", nil, err
			}
		} else {
			return "", "", nil, err
		}
	} else if err != nil {
		return "", "", nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", "", nil, err
	}

	access, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, err
	}
	refresh, err := s.generateRefreshToken(user)
	if err != nil {
		return "", "", nil, err
	}

	s.logger.Info("google_login", "user_id", user.ID)
	return access, refresh, user, nil
}

func (s *authService) provisionGoogleUser(info *googleauth.UserInfo, googleID string) (*models.User, error) {
	username, err := s.generateUniqueUsername(info.Name)
	if err != nil {
		return nil, err
	}

	var picture *string
	if info.Picture != "" {
		picture = &info.Picture
	}

	user := &models.User{
		Email:             strings.ToLower(info.Email),
		Name:              info.Name,
		Username:          username,
		GoogleID:          &googleID,
		ProfilePictureURL: picture,
		EmailVerified:     true,
		IsActive:          true,
		ReadingGoal:       12,
		Timezone:          "UTC",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("user_provisioned_from_google", "user_id", user.ID, "username", username)
	return user, nil
}

// foldGoogleID maps Google's numeric subject (which can exceed 63 bits)
// into a stable printable identifier by reducing modulo 2^63.
func foldGoogleID(id string) string {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return id
	}
	return strconv.FormatUint(n%(1<<63), 10)
}

// generateUniqueUsername slugs the display name and appends a numeric
// suffix until the result is free.
func (s *authService) generateUniqueUsername(name string) (string, error) {
	base := slugifyUsername(name)
	if base == "" {
		base = "reader"
	}

	candidate := base
	for i := 0; i < 100; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		if _, err := s.userRepo.FindByUsername(candidate); errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
	}
	// Crowded namespace; fall back to a random suffix.
	return fmt.Sprintf("%s_%s", base, uuid.New().String()[:8]), nil
}

func slugifyUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if len(slug) > validation.MaxUsernameLength-4 {
		slug = slug[:validation.MaxUsernameLength-4]
	}
	return slug
}

// Signup registers an email/password account and sends the verification
// email. The account stays usable before verification.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	email, err := validation.Email(req.Email)
	if err != nil {
		return nil, err
	}
	username, err := validation.Username(req.Username)
	if err != nil {
		return nil, err
	}
	name, err := validation.Name(req.Name)
	if err != nil {
		return nil, err
	}
	if err := validation.PasswordStrength(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailInUse
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameInUse
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Name:        name,
		Username:    username,
		Password:    &hashed,
		IsActive:    true,
		ReadingGoal: 12,
		Timezone:    "UTC",
	}
	if err := s.userRepo.Create(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	if err := s.sendVerificationEmail(ctx, user); err != nil {
		// Account exists; the user can request a resend.
		s.logger.Warn("verification_email_failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user_signed_up", "user_id", user.ID, "username", username)
	return user, nil
}

// Login authenticates by email and password and issues a token pair.
func (s *authService) Login(email, password string) (string, string, *models.User, error) {
	normalized, err := validation.Email(email)
	if err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(normalized)
	if err != nil || user.Password == nil {
		// Dummy compare keeps timing uniform for unknown accounts.
		auth.VerifyPassword(dummyPasswordHash, password)
		return "", "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", "", nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(*user.Password, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", "", nil, err
	}

	access, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, err
	}
	refresh, err := s.generateRefreshToken(user)
	if err != nil {
		return "", "", nil, err
	}

	s.logger.Info("user_logged_in", "user_id", user.ID)
	return access, refresh, user, nil
}

func (s *authService) RefreshAccessToken(refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return "", ErrInvalidToken
	}
	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}
	if time.Now().After(refreshToken.ExpiresAt) {
		s.refreshTokenRepo.Delete(refreshToken.ID)
		return "", ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(refreshToken.UserID)
	if err != nil {
		return "", ErrInvalidToken
	}

	return s.generateAccessToken(user)
}

// VerifyEmail consumes a verification token and flips the flag.
func (s *authService) VerifyEmail(token string) error {
	userID, err := s.parsePurposeToken(token, tokenTypeVerifyEmail)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrInvalidToken
	}
	if user.EmailVerified {
		return nil
	}
	user.EmailVerified = true
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.logger.Info("email_verified", "user_id", user.ID)
	return nil
}

// ForgotPassword sends a reset link. Unknown emails succeed silently so
// the endpoint cannot be used to probe for accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	normalized, err := validation.Email(email)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(normalized)
	if err != nil {
		return nil
	}
	if user.Password == nil {
		// OAuth-only account; nothing to reset.
		return nil
	}

	token, err := s.generatePurposeToken(user.ID, tokenTypePasswordReset, passwordResetTTL)
	if err != nil {
		return err
	}
	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
		s.logger.Warn("password_reset_email_failed", "user_id", user.ID, "error", err)
		return ErrExternalService
	}

	return nil
}

func (s *authService) ResetPassword(token, newPassword string) error {
	if err := validation.PasswordStrength(newPassword); err != nil {
		return err
	}

	userID, err := s.parsePurposeToken(token, tokenTypePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrInvalidToken
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = &hashed
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.logger.Info("password_reset", "user_id", user.ID)
	return nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	normalized, err := validation.Email(email)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(normalized)
	if err != nil {
		return nil
	}
	if user.EmailVerified {
		return nil
	}

	return s.sendVerificationEmail(ctx, user)
}

func (s *authService) GetUser(userID int64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *authService) sendVerificationEmail(ctx context.Context, user *models.User) error {
	token, err := s.generatePurposeToken(user.ID, tokenTypeVerifyEmail, verifyEmailTTL)
	if err != nil {
		return err
	}
	return s.mail.SendVerificationEmail(ctx, user.Email, user.Name, token)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.accessTokenTTL).Unix(),
		"iat":      time.Now().Unix(),
		"type":     tokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

// generatePurposeToken mints a short-lived JWT bound to one purpose
// (email verification or password reset).
func (s *authService) generatePurposeToken(userID int64, purpose string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
		"type":    purpose,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) parsePurposeToken(tokenString, purpose string) (int64, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if claims["type"] != purpose {
		return 0, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(userIDFloat), nil
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}
