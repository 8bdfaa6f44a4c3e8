package models

import "time"

// Message kinds. Image and file messages carry an externally uploaded URI as
// their content; the store never touches the blob itself.
const (
	KindText  = "text"
	KindImage = "image"
	KindFile  = "file"
)

// Tombstone replaces the content of a logically deleted message. The row keeps
// its id and position in the log.
const Tombstone = "[Message deleted]"

// ClearedSummary is written to a room summary after its history is cleared.
const ClearedSummary = "[History cleared]"

// ValidKind reports whether the message kind is one the store accepts.
func ValidKind(kind string) bool {
	return kind == KindText || kind == KindImage || kind == KindFile
}

// Message is one entry in a room's append-only log. Seq is assigned by the
// database and breaks ordering ties between equal created_at values.
type Message struct {
	ID        string     `db:"id" json:"id"`
	Seq       int64      `db:"seq" json:"seq"`
	RoomID    string     `db:"room_id" json:"room_id"`
	SenderID  string     `db:"sender_id" json:"sender_id"`
	Kind      string     `db:"kind" json:"kind"`
	Content   string     `db:"content" json:"content"`
	EditedAt  *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	Deleted   bool       `db:"deleted" json:"deleted"`
	Read      bool       `db:"read" json:"read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
