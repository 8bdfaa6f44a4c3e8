package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chat-store/internal/feed"
	"chat-store/internal/models"
	"chat-store/internal/observability"
	"chat-store/internal/rabbitmq"
	"chat-store/internal/repositories"
)

var (
	// ErrForbidden rejects edits and deletes from anyone but the original
	// sender, and room access from non-participants.
	ErrForbidden = errors.New("forbidden")

	// ErrEmptyContent rejects messages that are blank after trimming.
	ErrEmptyContent = errors.New("empty content")

	// ErrInvalidKind rejects unknown message kinds.
	ErrInvalidKind = errors.New("invalid message kind")
)

// ChatService owns the store contract: idempotent room creation, the ordered
// message log with its state machine, and live fan-out. Transports (HTTP,
// websocket) call into it and render what it returns.
type ChatService struct {
	rooms     repositories.RoomRepository
	messages  repositories.MessageRepository
	hub       *feed.Hub
	publisher rabbitmq.Publisher
	logger    *zap.Logger
}

// NewChatService builds a ChatService.
func NewChatService(rooms repositories.RoomRepository, messages repositories.MessageRepository, hub *feed.Hub, publisher rabbitmq.Publisher, logger *zap.Logger) *ChatService {
	return &ChatService{
		rooms:     rooms,
		messages:  messages,
		hub:       hub,
		publisher: publisher,
		logger:    logger,
	}
}

// StartRoom returns the room for the pair, creating it when absent. Safe under
// concurrent calls from both participants: all callers get the same room.
func (s *ChatService) StartRoom(ctx context.Context, userID, peerID string) (models.Room, error) {
	room, created, err := s.rooms.GetOrCreate(ctx, userID, peerID)
	if err != nil {
		return models.Room{}, err
	}
	if created {
		s.publishLifecycle(ctx, "room_events.created", "room_created", map[string]any{
			"room_id":  room.ID,
			"user1_id": room.User1ID,
			"user2_id": room.User2ID,
		})
	}
	return room, nil
}

// Rooms lists the user's rooms with their last-message summaries.
func (s *ChatService) Rooms(ctx context.Context, userID string) ([]models.RoomSummary, error) {
	return s.rooms.ListForUser(ctx, userID)
}

// Room fetches a room the caller participates in.
func (s *ChatService) Room(ctx context.Context, roomID, userID string) (models.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	if !room.HasParticipant(userID) {
		return models.Room{}, ErrForbidden
	}
	return room, nil
}

// Messages returns the room's full log in order, tombstones included.
func (s *ChatService) Messages(ctx context.Context, roomID, userID string) ([]models.Message, error) {
	if _, err := s.Room(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByRoom(ctx, roomID)
}

// Append validates and stores a message, refreshes the room summary, and
// notifies subscribers. The stored message carries the timestamp and sequence
// assigned by the store. Not exactly-once: a caller retrying after a
// transport failure may append twice; dedup is the caller's concern.
func (s *ChatService) Append(ctx context.Context, roomID, senderID, kind, content string) (models.Message, error) {
	if !models.ValidKind(kind) {
		observability.IncMessageOp("append", "rejected")
		return models.Message{}, ErrInvalidKind
	}
	content = strings.TrimSpace(content)
	if content == "" {
		observability.IncMessageOp("append", "rejected")
		return models.Message{}, ErrEmptyContent
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		observability.IncMessageOp("append", "error")
		return models.Message{}, err
	}
	if !room.HasParticipant(senderID) {
		observability.IncMessageOp("append", "rejected")
		return models.Message{}, ErrForbidden
	}

	msg, err := s.messages.Append(ctx, roomID, senderID, kind, content, summaryFor(kind, content))
	if err != nil {
		observability.IncMessageOp("append", "error")
		return models.Message{}, err
	}

	observability.IncMessageOp("append", "ok")
	s.emit(models.RoomEvent{Type: models.EventMessage, RoomID: roomID, Message: &msg})
	return msg, nil
}

// Edit replaces a message's content and stamps edited_at. Only the original
// sender may edit; a tombstoned message is no longer editable. Ordering
// position never changes.
func (s *ChatService) Edit(ctx context.Context, messageID, editorID, content string) (models.Message, error) {
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		observability.IncMessageOp("edit", "error")
		return models.Message{}, err
	}
	if msg.SenderID != editorID {
		observability.IncMessageOp("edit", "rejected")
		return models.Message{}, ErrForbidden
	}
	if msg.Deleted {
		// Deletion is terminal for content.
		observability.IncMessageOp("edit", "rejected")
		return models.Message{}, repositories.ErrMessageNotFound
	}
	content = strings.TrimSpace(content)
	if content == "" {
		observability.IncMessageOp("edit", "rejected")
		return models.Message{}, ErrEmptyContent
	}

	updated, err := s.messages.UpdateContent(ctx, messageID, content)
	if err != nil {
		observability.IncMessageOp("edit", "error")
		return models.Message{}, err
	}

	observability.IncMessageOp("edit", "ok")
	s.emit(models.RoomEvent{Type: models.EventMessageEdited, RoomID: updated.RoomID, Message: &updated})
	return updated, nil
}

// SoftDelete tombstones a message. Idempotent: deleting an already deleted
// message returns the tombstoned record without emitting another event.
func (s *ChatService) SoftDelete(ctx context.Context, messageID, callerID string) (models.Message, error) {
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		observability.IncMessageOp("delete", "error")
		return models.Message{}, err
	}
	if msg.SenderID != callerID {
		observability.IncMessageOp("delete", "rejected")
		return models.Message{}, ErrForbidden
	}
	if msg.Deleted {
		observability.IncMessageOp("delete", "ok")
		return msg, nil
	}

	changed, err := s.messages.SoftDelete(ctx, messageID)
	if err != nil {
		observability.IncMessageOp("delete", "error")
		return models.Message{}, err
	}

	msg.Deleted = true
	msg.Content = models.Tombstone
	observability.IncMessageOp("delete", "ok")
	if changed {
		s.emit(models.RoomEvent{Type: models.EventMessageDeleted, RoomID: msg.RoomID, MessageID: msg.ID})
		s.refreshSummaryAfterDelete(ctx, msg)
	}
	return msg, nil
}

// refreshSummaryAfterDelete rewrites the room summary when the deleted message
// was the latest one, so room lists stop previewing removed content. Best
// effort; the delete itself already succeeded.
func (s *ChatService) refreshSummaryAfterDelete(ctx context.Context, msg models.Message) {
	room, err := s.rooms.Get(ctx, msg.RoomID)
	if err != nil {
		s.logger.Warn("summary refresh skipped", zap.String("room_id", msg.RoomID), zap.Error(err))
		return
	}
	if room.LastMessageAt == nil || msg.CreatedAt.Before(*room.LastMessageAt) {
		return
	}
	if err := s.rooms.UpdateSummary(ctx, msg.RoomID, models.Tombstone, *room.LastMessageAt); err != nil {
		s.logger.Warn("summary refresh failed", zap.String("room_id", msg.RoomID), zap.Error(err))
	}
}

// MarkRead flips read on the room's messages sent by the other participant.
// Idempotent; returns the number of messages changed.
func (s *ChatService) MarkRead(ctx context.Context, roomID, readerID string) (int64, error) {
	if _, err := s.Room(ctx, roomID, readerID); err != nil {
		return 0, err
	}

	count, err := s.messages.MarkRead(ctx, roomID, readerID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.emit(models.RoomEvent{Type: models.EventRead, RoomID: roomID, ReaderID: readerID})
	}
	return count, nil
}

// ClearHistory tombstones the whole log in one batch and resets the room
// summary. Subscribers see a single history_cleared event, never a partially
// cleared state.
func (s *ChatService) ClearHistory(ctx context.Context, roomID, callerID string) error {
	if _, err := s.Room(ctx, roomID, callerID); err != nil {
		return err
	}

	if err := s.messages.ClearHistory(ctx, roomID); err != nil {
		return err
	}

	s.emit(models.RoomEvent{Type: models.EventHistoryCleared, RoomID: roomID})
	s.publishLifecycle(ctx, "room_events.cleared", "history_cleared", map[string]any{
		"room_id":    roomID,
		"cleared_by": callerID,
	})
	return nil
}

// Subscribe opens a live feed on the room. The caller owns the returned
// subscription and must Cancel it to release resources.
func (s *ChatService) Subscribe(roomID string) *feed.Subscription {
	return s.hub.Subscribe(roomID)
}

func (s *ChatService) emit(event models.RoomEvent) {
	observability.IncFeedEvent(event.Type)
	s.hub.Publish(event)
}

func (s *ChatService) publishLifecycle(ctx context.Context, routingKey, name string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, routingKey, observability.EventEnvelope{
		EventType: "room_events",
		EventName: name,
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("lifecycle publish failed", zap.String("event", name), zap.Error(err))
	}
}

func summaryFor(kind, content string) string {
	switch kind {
	case models.KindImage:
		return "[Photo]"
	case models.KindFile:
		return "[File]"
	default:
		return content
	}
}
