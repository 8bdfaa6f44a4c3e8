package models

import "time"

// User is a profile record owned by the external identity provider. The store
// keeps a copy for directory listings and references it by id only.
type User struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Email       string    `db:"email" json:"email"`
	PhotoURL    *string   `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Presence is best-effort, eventually consistent side state kept outside the
// message store.
type Presence struct {
	UserID         string     `json:"user_id"`
	Online         bool       `json:"online"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	TypingTargetID string     `json:"typing_target_id,omitempty"`
}
