package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"chat-store/internal/identity"
	"chat-store/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")

	// ErrStoreUnavailable wraps transport and backing-store failures. Callers
	// may retry at their own discretion; the repositories never retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

const roomColumns = `id, user1_id, user2_id, created_at, last_message_summary, last_message_at`

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	GetOrCreate(ctx context.Context, userA, userB string) (models.Room, bool, error)
	Get(ctx context.Context, roomID string) (models.Room, error)
	ListForUser(ctx context.Context, userID string) ([]models.RoomSummary, error)
	UpdateSummary(ctx context.Context, roomID string, text string, at time.Time) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// GetOrCreate resolves the canonical id for the pair and creates the room if
// it does not exist yet. The conditional insert is keyed on the canonical id,
// so concurrent calls from both participants produce exactly one row: the
// loser's insert is a no-op and both read back the same record. The returned
// bool reports whether this call created the room.
func (r *RoomRepo) GetOrCreate(ctx context.Context, userA, userB string) (models.Room, bool, error) {
	roomID, err := identity.RoomID(userA, userB)
	if err != nil {
		return models.Room{}, false, err
	}
	user1, user2, err := identity.Participants(roomID)
	if err != nil {
		return models.Room{}, false, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, user1_id, user2_id) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		roomID, user1, user2)
	if err != nil {
		return models.Room{}, false, storeError("create room", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return models.Room{}, false, storeError("create room", err)
	}

	var room models.Room
	if err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID); err != nil {
		return models.Room{}, false, storeError("read room", err)
	}
	return room, inserted == 1, nil
}

// Get fetches a room by its canonical id.
func (r *RoomRepo) Get(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return models.Room{}, storeError("get room", err)
	}
	return room, nil
}

// ListForUser returns the user's rooms, most recently active first.
func (r *RoomRepo) ListForUser(ctx context.Context, userID string) ([]models.RoomSummary, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
        WHERE user1_id=$1 OR user2_id=$1
        ORDER BY COALESCE(last_message_at, created_at) DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("list rooms", err)
	}
	defer rows.Close()

	var result []models.RoomSummary
	for rows.Next() {
		var room models.Room
		if err := rows.StructScan(&room); err != nil {
			return nil, storeError("scan room", err)
		}
		result = append(result, models.RoomSummary{
			RoomID:             room.ID,
			PeerID:             room.Peer(userID),
			LastMessageSummary: room.LastMessageSummary,
			LastMessageAt:      room.LastMessageAt,
			CreatedAt:          room.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list rooms", err)
	}
	return result, nil
}

// UpdateSummary overwrites the room's last-message summary. Last writer wins.
func (r *RoomRepo) UpdateSummary(ctx context.Context, roomID string, text string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET last_message_summary=$2, last_message_at=$3 WHERE id=$1`,
		roomID, text, at)
	if err != nil {
		return storeError("update summary", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return storeError("update summary", err)
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}
