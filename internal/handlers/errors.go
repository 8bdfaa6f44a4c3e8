package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-store/internal/identity"
	"chat-store/internal/repositories"
	"chat-store/internal/service"
)

// respondStoreError maps the store error taxonomy onto HTTP statuses.
// Validation failures are terminal for the request; StoreUnavailable gets 503
// so the caller can decide whether to retry.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidParticipants):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participants"})
	case errors.Is(err, service.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
	case errors.Is(err, service.ErrInvalidKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message kind"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, repositories.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, repositories.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, repositories.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
