package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/http-api/service"
	"bookhub/internal/validation"
)

// respondError maps service errors onto HTTP status codes. Validation
// failures are 400, missing rows 404, ownership violations 403,
// credential problems 401, uniqueness conflicts 409, upstream outages 502.
func respondError(c *gin.Context, err error) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrUsernameInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrExternalService):
		c.JSON(http.StatusBadGateway, gin.H{"error": "external service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
