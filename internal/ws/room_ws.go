package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"chat-store/internal/auth"
	"chat-store/internal/observability"
	"chat-store/internal/repositories"
	"chat-store/internal/service"
)

// RoomWebSocketHandler streams room events from a feed subscription over a
// websocket connection.
type RoomWebSocketHandler struct {
	svc       *service.ChatService
	jwtSecret string
	logger    *zap.Logger
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(svc *service.ChatService, jwtSecret string, logger *zap.Logger) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{svc: svc, jwtSecret: jwtSecret, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, upgrades the connection, and pumps the room feed
// until the client disconnects.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	roomID := c.Param("room_id")

	ctx, span := otel.Tracer("chat-store/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.svc.Room(ctx, roomID, userID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	sub := h.svc.Subscribe(roomID)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishWSEvent(ctx, roomID, info, "ws_connect", "")

	// Writer: drain the subscription into the socket. Ends when the
	// subscription is cancelled by the reader goroutine.
	go func() {
		for event := range sub.Events() {
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Warn("websocket write error",
					zap.String("room_id", roomID),
					zap.String("conn_id", info.ConnID),
					zap.Error(err))
				observability.IncWSEvent("ws_error")
				conn.Close()
				return
			}
		}
	}()

	// Reader: detect close and release the subscription.
	go func() {
		var closeReason string
		defer func() {
			sub.Cancel()
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			h.publishWSEvent(ctx, roomID, info, "ws_disconnect", closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					h.publishWSEvent(ctx, roomID, info, "ws_error", closeReason)
				}
				return
			}
		}
	}()
}

func (h *RoomWebSocketHandler) validateToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", errors.New("invalid token")
	}
	claims, err := auth.ParseToken(parts[1], h.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (h *RoomWebSocketHandler) publishWSEvent(ctx context.Context, roomID string, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"room_id":     roomID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.rooms", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}
