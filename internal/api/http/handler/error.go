package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenExpired):
		// Same body for every token failure mode.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, model.ErrPoolExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no credential available"})
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
