package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/service"
)

// MockAuthService mocks service.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GoogleAuth(ctx context.Context, accessToken string) (string, string, *models.User, error) {
	args := m.Called(ctx, accessToken)
	var user *models.User
	if args.Get(2) != nil {
		user = args.Get(2).(*models.User)
	}
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(email, password string) (string, string, *models.User, error) {
	args := m.Called(email, password)
	var user *models.User
	if args.Get(2) != nil {
		user = args.Get(2).(*models.User)
	}
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyEmail(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(token, newPassword string) error {
	args := m.Called(token, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) ResendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) GetUser(userID int64) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*jwt.Token, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Token), args.Error(1)
}

func (m *MockAuthService) AccessTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func setupAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAuthHandler(svc).RegisterRoutes(router.Group("/api/auth"))
	return router
}

func jsonRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testUser() *models.User {
	return &models.User{
		ID:       1,
		Email:    "reader@example.com",
		Name:     "Avid Reader",
		Username: "avidreader",
	}
}

func TestLoginEndpoint_Success(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	svc.On("Login", "reader@example.com", "Str0ngpass!").
		Return("access-token", "refresh-token", testUser(), nil)
	svc.On("AccessTokenTTL").Return(15 * time.Minute)

	w := jsonRequest(t, router, http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email:    "reader@example.com",
		Password: "Str0ngpass!",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "avidreader", resp.User.Username)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	svc.On("Login", "reader@example.com", "wrong").
		Return("", "", nil, service.ErrInvalidCredentials)

	w := jsonRequest(t, router, http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	w := jsonRequest(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "reader@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestSignupEndpoint_Success(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	req := dto.SignupRequest{
		Email:    "reader@example.com",
		Name:     "Avid Reader",
		Username: "avidreader",
		Password: "Str0ngpass!",
	}
	svc.On("Signup", mock.Anything, req).Return(testUser(), nil)

	w := jsonRequest(t, router, http.MethodPost, "/api/auth/signup", req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "reader@example.com", resp.Email)
}

func TestSignupEndpoint_EmailInUse(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	svc.On("Signup", mock.Anything, mock.AnythingOfType("dto.SignupRequest")).
		Return(nil, service.ErrEmailInUse)

	w := jsonRequest(t, router, http.MethodPost, "/api/auth/signup", dto.SignupRequest{
		Email:    "taken@example.com",
		Name:     "Avid Reader",
		Username: "avidreader",
		Password: "Str0ngpass!",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefreshEndpoint_InvalidToken(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	svc.On("RefreshAccessToken", "stale").Return("", service.ErrInvalidToken)

	w := jsonRequest(t, router, http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{
		RefreshToken: "stale",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyEmailEndpoint_MissingToken(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "VerifyEmail", mock.Anything)
}

func TestMeEndpoint_Success(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	svc.On("ValidateToken", "valid-token").Return(&jwt.Token{
		Valid: true,
		Claims: jwt.MapClaims{
			"type":     "access",
			"user_id":  float64(1),
			"username": "avidreader",
		},
	}, nil)
	svc.On("GetUser", int64(1)).Return(testUser(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "avidreader", resp.Username)
}

func TestMeEndpoint_MissingAuthHeader(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "GetUser", mock.Anything)
}
