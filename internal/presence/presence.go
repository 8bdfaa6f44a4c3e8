package presence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chat-store/internal/models"
)

const (
	onlineTTL = 60 * time.Second
	typingTTL = 6 * time.Second

	onlinePrefix   = "presence:online:"
	lastSeenPrefix = "presence:last_seen:"
	typingPrefix   = "presence:typing:"
)

// Tracker keeps best-effort presence and typing state in Redis. The state is
// eventually consistent: heartbeats expire on their own and a missed write is
// never an error for the caller's message flow.
type Tracker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTracker builds a Tracker on an existing Redis client.
func NewTracker(client *redis.Client, logger *zap.Logger) *Tracker {
	return &Tracker{client: client, logger: logger}
}

// Heartbeat marks the user online for the TTL window and records last-seen.
func (t *Tracker) Heartbeat(ctx context.Context, userID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	pipe := t.client.Pipeline()
	pipe.Set(ctx, onlinePrefix+userID, now, onlineTTL)
	pipe.Set(ctx, lastSeenPrefix+userID, now, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("presence heartbeat failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// SetTyping records who the user is typing to. An empty target clears it.
func (t *Tracker) SetTyping(ctx context.Context, userID, targetID string) error {
	var err error
	if targetID == "" {
		err = t.client.Del(ctx, typingPrefix+userID).Err()
	} else {
		err = t.client.Set(ctx, typingPrefix+userID, targetID, typingTTL).Err()
	}
	if err != nil {
		t.logger.Warn("typing update failed", zap.String("user_id", userID), zap.Error(err))
	}
	return err
}

// Get reads a user's presence snapshot. Missing keys mean offline/idle, not
// an error.
func (t *Tracker) Get(ctx context.Context, userID string) (models.Presence, error) {
	p := models.Presence{UserID: userID}

	if _, err := t.client.Get(ctx, onlinePrefix+userID).Result(); err == nil {
		p.Online = true
	} else if !errors.Is(err, redis.Nil) {
		return models.Presence{}, err
	}

	if raw, err := t.client.Get(ctx, lastSeenPrefix+userID).Result(); err == nil {
		if at, parseErr := time.Parse(time.RFC3339Nano, raw); parseErr == nil {
			p.LastSeenAt = &at
		}
	} else if !errors.Is(err, redis.Nil) {
		return models.Presence{}, err
	}

	if target, err := t.client.Get(ctx, typingPrefix+userID).Result(); err == nil {
		p.TypingTargetID = target
	} else if !errors.Is(err, redis.Nil) {
		return models.Presence{}, err
	}

	return p, nil
}
