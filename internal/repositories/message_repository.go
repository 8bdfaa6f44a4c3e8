package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chat-store/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, seq, room_id, sender_id, kind, content, edited_at, deleted, read, created_at`

// MessageRepository defines persistence for the per-room message log.
type MessageRepository interface {
	Append(ctx context.Context, roomID, senderID, kind, content, summary string) (models.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
	Get(ctx context.Context, messageID string) (models.Message, error)
	UpdateContent(ctx context.Context, messageID, content string) (models.Message, error)
	SoftDelete(ctx context.Context, messageID string) (bool, error)
	MarkRead(ctx context.Context, roomID, readerID string) (int64, error)
	ClearHistory(ctx context.Context, roomID string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a message and refreshes the room summary in one transaction.
// The timestamp comes from the database clock, not the client, so ordering
// stays consistent across clients with skewed clocks. seq breaks ties between
// inserts that land on the same timestamp.
func (r *MessageRepo) Append(ctx context.Context, roomID, senderID, kind, content, summary string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, storeError("append message", err)
	}
	defer tx.Rollback()

	var msg models.Message
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO messages (id, room_id, sender_id, kind, content) VALUES ($1, $2, $3, $4, $5)
         RETURNING `+messageColumns,
		uuid.NewString(), roomID, senderID, kind, content).StructScan(&msg)
	if err != nil {
		return models.Message{}, storeError("append message", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET last_message_summary=$2, last_message_at=$3 WHERE id=$1`,
		roomID, summary, msg.CreatedAt); err != nil {
		return models.Message{}, storeError("append summary", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, storeError("append message", err)
	}
	return msg, nil
}

// ListByRoom returns the full log in created_at, seq order. Tombstoned
// messages are included; they keep their position.
func (r *MessageRepo) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE room_id=$1 ORDER BY created_at ASC, seq ASC`,
		roomID)
	if err != nil {
		return nil, storeError("list messages", err)
	}
	return msgs, nil
}

// Get retrieves a single message.
func (r *MessageRepo) Get(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, storeError("get message", err)
	}
	return msg, nil
}

// UpdateContent replaces a message body and stamps edited_at. The ordering
// position (created_at, seq) is untouched. The deleted guard keeps a
// concurrent tombstone final: an edit that loses the race sees ErrMessageNotFound
// instead of rewriting tombstone content.
func (r *MessageRepo) UpdateContent(ctx context.Context, messageID, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`UPDATE messages SET content=$2, edited_at=NOW() WHERE id=$1 AND deleted=FALSE RETURNING `+messageColumns,
		messageID, content).StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, storeError("edit message", err)
	}
	return msg, nil
}

// SoftDelete tombstones a message. Returns false when the message was already
// deleted, which callers treat as an idempotent no-op.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET deleted=TRUE, content=$2 WHERE id=$1 AND deleted=FALSE`,
		messageID, models.Tombstone)
	if err != nil {
		return false, storeError("delete message", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, storeError("delete message", err)
	}
	return count == 1, nil
}

// MarkRead flips read on every unread message in the room not sent by the
// reader. Returns the number of rows changed; zero means a no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, roomID, readerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read=TRUE WHERE room_id=$1 AND sender_id<>$2 AND read=FALSE`,
		roomID, readerID)
	if err != nil {
		return 0, storeError("mark read", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("mark read", err)
	}
	return count, nil
}

// ClearHistory tombstones every message in the room and resets the room
// summary inside one transaction, so readers never observe a partially
// cleared log.
func (r *MessageRepo) ClearHistory(ctx context.Context, roomID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeError("clear history", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE messages SET deleted=TRUE, content=$2 WHERE room_id=$1 AND deleted=FALSE`,
		roomID, models.Tombstone); err != nil {
		return storeError("clear history", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET last_message_summary=$2, last_message_at=NOW() WHERE id=$1`,
		roomID, models.ClearedSummary); err != nil {
		return storeError("clear summary", err)
	}

	if err := tx.Commit(); err != nil {
		return storeError("clear history", err)
	}
	return nil
}
