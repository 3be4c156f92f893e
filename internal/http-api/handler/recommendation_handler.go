package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhub/internal/http-api/middleware"
	"bookhub/internal/http-api/service"
)

type RecommendationHandler struct {
	svc service.RecommendationService
}

func NewRecommendationHandler(svc service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.List)
	rg.POST("/generate", h.Generate)
	rg.PUT("/:recommendation_id/dismiss", h.Dismiss)
}

func (h *RecommendationHandler) List(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recs, err := h.svc.List(middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}

// Generate rebuilds the caller's recommendation set. Degrades rather than
// failing when the AI backend is down.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	recs, err := h.svc.Generate(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}

func (h *RecommendationHandler) Dismiss(c *gin.Context) {
	recID, err := strconv.ParseInt(c.Param("recommendation_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recommendation id"})
		return
	}

	if err := h.svc.Dismiss(recID, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recommendation dismissed"})
}
