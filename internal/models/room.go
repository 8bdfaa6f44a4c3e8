package models

import "time"

// Room is the persistent identity of a conversation between exactly two users.
// Its id is derived from the participant pair, so one pair maps to one room.
type Room struct {
	ID                 string     `db:"id" json:"id"`
	User1ID            string     `db:"user1_id" json:"user1_id"`
	User2ID            string     `db:"user2_id" json:"user2_id"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	LastMessageSummary *string    `db:"last_message_summary" json:"last_message_summary,omitempty"`
	LastMessageAt      *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
}

// HasParticipant reports whether the user belongs to the room.
func (r Room) HasParticipant(userID string) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// Peer returns the other participant for a given user.
func (r Room) Peer(userID string) string {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// RoomSummary provides an API-friendly view of a room for one user.
type RoomSummary struct {
	RoomID             string     `json:"room_id"`
	PeerID             string     `json:"peer_id"`
	LastMessageSummary *string    `json:"last_message_summary,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
