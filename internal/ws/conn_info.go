package ws

import "time"

// ConnInfo carries the identity and transport metadata attached to every
// connection lifecycle event.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
