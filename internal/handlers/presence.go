package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-store/internal/presence"
)

// PresenceHandler exposes best-effort presence and typing state. Failures in
// this path never affect message delivery.
type PresenceHandler struct {
	tracker *presence.Tracker
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// Heartbeat marks the caller online.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	if err := h.tracker.Heartbeat(c.Request.Context(), userIDFromContext(c)); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Typing records who the caller is typing to; empty target clears it.
func (h *PresenceHandler) Typing(c *gin.Context) {
	var req struct {
		TargetID string `json:"target_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tracker.SetTyping(c.Request.Context(), userIDFromContext(c), req.TargetID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPresence reads another user's presence snapshot.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	snapshot, err := h.tracker.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence unavailable"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
