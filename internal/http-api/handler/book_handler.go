package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/service"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.SearchOpenLibrary)
	rg.GET("/search/local", h.SearchLocal)
	rg.POST("/", h.GetOrCreate)
	rg.GET("/:book_id", h.Get)
}

// SearchOpenLibrary proxies the external catalog search.
func (h *BookHandler) SearchOpenLibrary(c *gin.Context) {
	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.svc.SearchOpenLibrary(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

func (h *BookHandler) SearchLocal(c *gin.Context) {
	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	books, err := h.svc.SearchLocal(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		results = append(results, dto.FromModelToBookResponse(&books[i]))
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// GetOrCreate resolves the payload against the catalog, inserting only
// when no dedup key matches.
func (h *BookHandler) GetOrCreate(c *gin.Context) {
	var req dto.BookCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.svc.GetOrCreate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToBookResponse(book))
}

func (h *BookHandler) Get(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	book, err := h.svc.GetByID(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToBookResponse(book))
}
