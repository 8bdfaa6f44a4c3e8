package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-store/internal/models"
	"chat-store/internal/repositories"
)

func roomFixture() models.Room {
	return models.Room{ID: "u1:u2", User1ID: "u1", User2ID: "u2"}
}

func TestPostMessageSuccess(t *testing.T) {
	env := setupRouter("u1")
	stored := models.Message{ID: "m1", Seq: 1, RoomID: "u1:u2", SenderID: "u1", Kind: models.KindText, Content: "hi", CreatedAt: time.Now()}

	env.rooms.On("Get", mock.Anything, "u1:u2").Return(roomFixture(), nil).Once()
	env.messages.On("Append", mock.Anything, "u1:u2", "u1", models.KindText, "hi", "hi").Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/u1:u2/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "m1", resp.ID)
	env.messages.AssertExpectations(t)
}

func TestPostMessageEmptyContent(t *testing.T) {
	env := setupRouter("u1")

	req := httptest.NewRequest(http.MethodPost, "/rooms/u1:u2/messages", bytes.NewBufferString(`{"content":""}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env.messages.AssertNotCalled(t, "Append")
}

func TestPostMessageWhitespaceContent(t *testing.T) {
	env := setupRouter("u1")

	req := httptest.NewRequest(http.MethodPost, "/rooms/u1:u2/messages", bytes.NewBufferString(`{"content":"   "}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env.messages.AssertNotCalled(t, "Append")
}

func TestPostMessageRoomNotFound(t *testing.T) {
	env := setupRouter("u1")

	env.rooms.On("Get", mock.Anything, "u1:u9").Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/u1:u9/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessageUnknownKind(t *testing.T) {
	env := setupRouter("u1")

	req := httptest.NewRequest(http.MethodPost, "/rooms/u1:u2/messages", bytes.NewBufferString(`{"kind":"video","content":"clip"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesEmpty(t *testing.T) {
	env := setupRouter("u1")

	env.rooms.On("Get", mock.Anything, "u1:u2").Return(roomFixture(), nil).Once()
	env.messages.On("ListByRoom", mock.Anything, "u1:u2").Return(([]models.Message)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/u1:u2/messages", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestEditMessageForbidden(t *testing.T) {
	env := setupRouter("u2")
	msg := models.Message{ID: "m1", RoomID: "u1:u2", SenderID: "u1", Content: "hi"}

	env.messages.On("Get", mock.Anything, "m1").Return(msg, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/rooms/u1:u2/messages/m1", bytes.NewBufferString(`{"content":"edited"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	env.messages.AssertNotCalled(t, "UpdateContent")
}

func TestEditMessageSuccess(t *testing.T) {
	env := setupRouter("u1")
	now := time.Now()
	msg := models.Message{ID: "m1", RoomID: "u1:u2", SenderID: "u1", Content: "hi"}
	updated := msg
	updated.Content = "edited"
	updated.EditedAt = &now

	env.messages.On("Get", mock.Anything, "m1").Return(msg, nil).Once()
	env.messages.On("UpdateContent", mock.Anything, "m1", "edited").Return(updated, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/rooms/u1:u2/messages/m1", bytes.NewBufferString(`{"content":"edited"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "edited", resp.Content)
	assert.NotNil(t, resp.EditedAt)
}

func TestEditTombstonedMessage(t *testing.T) {
	env := setupRouter("u1")
	msg := models.Message{ID: "m1", RoomID: "u1:u2", SenderID: "u1", Content: models.Tombstone, Deleted: true}

	env.messages.On("Get", mock.Anything, "m1").Return(msg, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/rooms/u1:u2/messages/m1", bytes.NewBufferString(`{"content":"edited"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMessageSuccess(t *testing.T) {
	env := setupRouter("u1")
	msg := models.Message{ID: "m1", RoomID: "u1:u2", SenderID: "u1", Content: "hi"}

	env.messages.On("Get", mock.Anything, "m1").Return(msg, nil).Once()
	env.messages.On("SoftDelete", mock.Anything, "m1").Return(true, nil).Once()
	env.rooms.On("Get", mock.Anything, "u1:u2").Return(roomFixture(), nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/u1:u2/messages/m1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Deleted)
	assert.Equal(t, models.Tombstone, resp.Content)
}

func TestDeleteMessageIdempotent(t *testing.T) {
	env := setupRouter("u1")
	msg := models.Message{ID: "m1", RoomID: "u1:u2", SenderID: "u1", Content: models.Tombstone, Deleted: true}

	env.messages.On("Get", mock.Anything, "m1").Return(msg, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/u1:u2/messages/m1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env.messages.AssertNotCalled(t, "SoftDelete")
}

func TestMarkReadSuccess(t *testing.T) {
	env := setupRouter("u2")

	env.rooms.On("Get", mock.Anything, "u1:u2").Return(roomFixture(), nil).Once()
	env.messages.On("MarkRead", mock.Anything, "u1:u2", "u2").Return(int64(3), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/u1:u2/read", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":3}`, rec.Body.String())
}

func TestClearHistorySuccess(t *testing.T) {
	env := setupRouter("u1")

	env.rooms.On("Get", mock.Anything, "u1:u2").Return(roomFixture(), nil).Once()
	env.messages.On("ClearHistory", mock.Anything, "u1:u2").Return(nil).Once()
	env.publisher.On("Publish", mock.Anything, "room_events.cleared", mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/u1:u2/messages", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	env.messages.AssertExpectations(t)
}

func TestClearHistoryNonParticipant(t *testing.T) {
	env := setupRouter("outsider")

	env.rooms.On("Get", mock.Anything, "u1:u2").Return(roomFixture(), nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/u1:u2/messages", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	env.messages.AssertNotCalled(t, "ClearHistory")
}
