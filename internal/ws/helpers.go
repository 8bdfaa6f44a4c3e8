package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID labels one websocket connection in logs and events. Random, not
// sequential: connection counts are not exposed to clients.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
