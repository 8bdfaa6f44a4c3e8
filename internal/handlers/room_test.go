package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-store/internal/feed"
	"chat-store/internal/identity"
	"chat-store/internal/mocks"
	"chat-store/internal/models"
	"chat-store/internal/repositories"
	"chat-store/internal/service"
)

type testEnv struct {
	rooms     *mocks.RoomRepositoryMock
	messages  *mocks.MessageRepositoryMock
	publisher *mocks.PublisherMock
	router    *gin.Engine
}

func setupRouter(userID string) *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		rooms:     new(mocks.RoomRepositoryMock),
		messages:  new(mocks.MessageRepositoryMock),
		publisher: new(mocks.PublisherMock),
	}
	svc := service.NewChatService(env.rooms, env.messages, feed.NewHub(zap.NewNop()), env.publisher, zap.NewNop())
	roomHandler := NewRoomHandler(svc)
	messageHandler := NewMessageHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/rooms/start", roomHandler.StartRoom)
	r.GET("/rooms", roomHandler.ListRooms)
	r.GET("/rooms/:room_id", roomHandler.GetRoom)
	r.GET("/rooms/:room_id/messages", messageHandler.GetMessages)
	r.POST("/rooms/:room_id/messages", messageHandler.PostMessage)
	r.PATCH("/rooms/:room_id/messages/:message_id", messageHandler.EditMessage)
	r.DELETE("/rooms/:room_id/messages/:message_id", messageHandler.DeleteMessage)
	r.POST("/rooms/:room_id/read", messageHandler.MarkRead)
	r.DELETE("/rooms/:room_id/messages", messageHandler.ClearHistory)
	env.router = r
	return env
}

func TestStartRoomSuccess(t *testing.T) {
	env := setupRouter("u1")
	room := models.Room{ID: "u1:u2", User1ID: "u1", User2ID: "u2"}

	env.rooms.On("GetOrCreate", mock.Anything, "u1", "u2").Return(room, true, nil).Once()
	env.publisher.On("Publish", mock.Anything, "room_events.created", mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/start", bytes.NewBufferString(`{"peer_id":"u2"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "u1:u2", resp.ID)
	env.rooms.AssertExpectations(t)
}

func TestStartRoomInvalidPeer(t *testing.T) {
	env := setupRouter("u1")

	env.rooms.On("GetOrCreate", mock.Anything, "u1", "u1").
		Return(models.Room{}, false, identity.ErrInvalidParticipants).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/start", bytes.NewBufferString(`{"peer_id":"u1"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartRoomMissingBody(t *testing.T) {
	env := setupRouter("u1")

	req := httptest.NewRequest(http.MethodPost, "/rooms/start", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRoomsSuccess(t *testing.T) {
	env := setupRouter("u1")
	env.rooms.On("ListForUser", mock.Anything, "u1").
		Return([]models.RoomSummary{{RoomID: "u1:u2", PeerID: "u2"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env.rooms.AssertExpectations(t)
}

func TestListRoomsStoreUnavailable(t *testing.T) {
	env := setupRouter("u1")
	env.rooms.On("ListForUser", mock.Anything, "u1").
		Return(([]models.RoomSummary)(nil), repositories.ErrStoreUnavailable).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRoomNotFound(t *testing.T) {
	env := setupRouter("u1")
	env.rooms.On("Get", mock.Anything, "u1:u9").
		Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/u1:u9", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRoomNonParticipant(t *testing.T) {
	env := setupRouter("outsider")
	env.rooms.On("Get", mock.Anything, "u1:u2").
		Return(models.Room{ID: "u1:u2", User1ID: "u1", User2ID: "u2"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/u1:u2", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
