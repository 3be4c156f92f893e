package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/service"
)

// MockReadingService mocks service.ReadingService
type MockReadingService struct {
	mock.Mock
}

func (m *MockReadingService) Create(ctx context.Context, userID int64, req dto.ReadingCreate) (*dto.ReadingResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReadingResponse), args.Error(1)
}

func (m *MockReadingService) Update(ctx context.Context, readingID, userID int64, patch dto.ReadingUpdate) (*dto.ReadingResponse, error) {
	args := m.Called(ctx, readingID, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReadingResponse), args.Error(1)
}

func (m *MockReadingService) Delete(ctx context.Context, readingID, userID int64) error {
	args := m.Called(ctx, readingID, userID)
	return args.Error(0)
}

func (m *MockReadingService) GetByID(readingID, viewerID int64) (*dto.ReadingResponse, error) {
	args := m.Called(readingID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReadingResponse), args.Error(1)
}

func (m *MockReadingService) GetUserReadings(userID int64, status string) ([]dto.ReadingResponse, error) {
	args := m.Called(userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.ReadingResponse), args.Error(1)
}

func (m *MockReadingService) Stats(userID int64, readingGoal int) (*dto.ReadingStats, error) {
	args := m.Called(userID, readingGoal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReadingStats), args.Error(1)
}

// stubAuth stands in for the JWT middleware in handler tests.
func stubAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func setupReadingRouter(svc service.ReadingService, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/readings", stubAuth(userID))
	NewReadingHandler(svc).RegisterRoutes(group)
	return router
}

func TestCreateReadingEndpoint(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 1)

	req := dto.ReadingCreate{BookID: 7, Status: "currently_reading"}
	svc.On("Create", mock.Anything, int64(1), req).Return(&dto.ReadingResponse{
		ID:     3,
		UserID: 1,
		BookID: 7,
		Status: "currently_reading",
	}, nil)

	w := jsonRequest(t, router, http.MethodPost, "/api/readings/", req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.ReadingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.ID)
	assert.Equal(t, "currently_reading", resp.Status)
	svc.AssertExpectations(t)
}

func TestCreateReadingEndpoint_MissingBookID(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 1)

	w := jsonRequest(t, router, http.MethodPost, "/api/readings/", gin.H{"status": "want_to_read"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestListReadingsEndpoint_StatusFilter(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 1)

	svc.On("GetUserReadings", int64(1), "finished").Return([]dto.ReadingResponse{
		{ID: 3, UserID: 1, BookID: 7, Status: "finished"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/readings/?status=finished", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Readings []dto.ReadingResponse `json:"readings"`
		Count    int                   `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "finished", resp.Readings[0].Status)
}

func TestGetReadingEndpoint_NotFound(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 1)

	svc.On("GetByID", int64(99), int64(1)).Return(nil, service.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/readings/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReadingEndpoint_InvalidID(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/readings/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateReadingEndpoint_Forbidden(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 2)

	svc.On("Update", mock.Anything, int64(3), int64(2), mock.AnythingOfType("dto.ReadingUpdate")).
		Return(nil, service.ErrNotAuthorized)

	status := "finished"
	w := jsonRequest(t, router, http.MethodPut, "/api/readings/3", dto.ReadingUpdate{Status: &status})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReadingEndpoint(t *testing.T) {
	svc := new(MockReadingService)
	router := setupReadingRouter(svc, 1)

	svc.On("Delete", mock.Anything, int64(3), int64(1)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/readings/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
