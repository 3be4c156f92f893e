package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/middleware"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/service"
)

const recentlyFinishedLimit = 5

type DashboardHandler struct {
	readingSvc service.ReadingService
	authSvc    service.AuthService
}

func NewDashboardHandler(readingSvc service.ReadingService, authSvc service.AuthService) *DashboardHandler {
	return &DashboardHandler{readingSvc: readingSvc, authSvc: authSvc}
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Get)
}

// Get assembles the landing-page payload: stats plus the current and
// recently finished shelves.
func (h *DashboardHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	user, err := h.authSvc.GetUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.readingSvc.Stats(userID, user.ReadingGoal)
	if err != nil {
		respondError(c, err)
		return
	}

	currentlyReading, err := h.readingSvc.GetUserReadings(userID, models.StatusCurrentlyReading)
	if err != nil {
		respondError(c, err)
		return
	}

	finished, err := h.readingSvc.GetUserReadings(userID, models.StatusFinished)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(finished) > recentlyFinishedLimit {
		finished = finished[:recentlyFinishedLimit]
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Stats:            *stats,
		CurrentlyReading: currentlyReading,
		RecentlyFinished: finished,
	})
}
