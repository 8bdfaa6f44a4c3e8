package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-store/internal/service"
)

// RoomHandler manages room endpoints.
type RoomHandler struct {
	svc *service.ChatService
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(svc *service.ChatService) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// StartRoom creates or returns the room between the caller and a peer.
func (h *RoomHandler) StartRoom(c *gin.Context) {
	var req struct {
		PeerID string `json:"peer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromContext(c)
	room, err := h.svc.StartRoom(c.Request.Context(), userID, req.PeerID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListRooms returns the caller's rooms with last-message summaries.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID := userIDFromContext(c)

	rooms, err := h.svc.Rooms(c.Request.Context(), userID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom fetches one room the caller participates in.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := userIDFromContext(c)

	room, err := h.svc.Room(c.Request.Context(), c.Param("room_id"), userID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}
