package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/middleware"
	"bookhub/internal/http-api/service"
)

type ReadingHandler struct {
	svc service.ReadingService
}

func NewReadingHandler(svc service.ReadingService) *ReadingHandler {
	return &ReadingHandler{svc: svc}
}

func (h *ReadingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/", h.Create)
	rg.GET("/", h.List)
	rg.GET("/:reading_id", h.Get)
	rg.PUT("/:reading_id", h.Update)
	rg.DELETE("/:reading_id", h.Delete)
}

func (h *ReadingHandler) Create(c *gin.Context) {
	var req dto.ReadingCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reading)
}

// List returns the caller's library, optionally filtered by ?status=.
func (h *ReadingHandler) List(c *gin.Context) {
	readings, err := h.svc.GetUserReadings(middleware.UserID(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"readings": readings, "count": len(readings)})
}

func (h *ReadingHandler) Get(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	reading, err := h.svc.GetByID(readingID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reading)
}

func (h *ReadingHandler) Update(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	var patch dto.ReadingUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading, err := h.svc.Update(c.Request.Context(), readingID, middleware.UserID(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reading)
}

func (h *ReadingHandler) Delete(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), readingID, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reading deleted"})
}
