package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-store/internal/models"
	"chat-store/internal/service"
)

// MessageHandler manages message log endpoints.
type MessageHandler struct {
	svc *service.ChatService
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(svc *service.ChatService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// GetMessages returns the room's log in order, tombstones included.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := userIDFromContext(c)

	msgs, err := h.svc.Messages(c.Request.Context(), c.Param("room_id"), userID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage appends a message. The idempotency key header, when present, is
// not interpreted here; duplicate suppression belongs to the caller.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	var req struct {
		Kind    string `json:"kind"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Kind == "" {
		req.Kind = models.KindText
	}

	userID := userIDFromContext(c)
	msg, err := h.svc.Append(c.Request.Context(), c.Param("room_id"), userID, req.Kind, req.Content)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// EditMessage replaces a message body; sender only.
func (h *MessageHandler) EditMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromContext(c)
	msg, err := h.svc.Edit(c.Request.Context(), c.Param("message_id"), userID, req.Content)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// DeleteMessage tombstones a message; sender only, idempotent.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID := userIDFromContext(c)

	msg, err := h.svc.SoftDelete(c.Request.Context(), c.Param("message_id"), userID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// MarkRead flags the peer's messages in the room as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := userIDFromContext(c)

	count, err := h.svc.MarkRead(c.Request.Context(), c.Param("room_id"), userID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// ClearHistory tombstones the whole room log in one batch.
func (h *MessageHandler) ClearHistory(c *gin.Context) {
	userID := userIDFromContext(c)

	if err := h.svc.ClearHistory(c.Request.Context(), c.Param("room_id"), userID); err != nil {
		respondStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
