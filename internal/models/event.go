package models

// Room event types delivered on live subscriptions and websocket connections.
const (
	EventMessage        = "message"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
	EventRead           = "read"
	EventHistoryCleared = "history_cleared"
)

// RoomEvent is an incremental change notification for one room. Message is set
// for message and message_edited events; MessageID for message_deleted;
// ReaderID for read events. history_cleared carries only the room id.
type RoomEvent struct {
	Type      string   `json:"type"`
	RoomID    string   `json:"room_id"`
	Message   *Message `json:"message,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	ReaderID  string   `json:"reader_id,omitempty"`
}
