package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/foodgram-backend/internal/service"
)

// abortWithError maps service errors onto the API error taxonomy:
// field-keyed validation errors and conflicts are 400, missing entities 404,
// ownership violations 403, everything else a logged 500.
func abortWithError(c *gin.Context, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{validation.Field: validation.Message})
		return
	}

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": conflict.Detail})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid credentials"})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
