package identity

import (
	"errors"
	"strings"
)

// Separator joins the two participant ids inside a canonical room id. Ids
// containing it are rejected rather than escaped; participant ids are opaque
// tokens issued by the identity provider.
const Separator = ":"

var ErrInvalidParticipants = errors.New("invalid participants")

// RoomID derives the canonical room id for an unordered pair of user ids.
// It is commutative and injective over unordered pairs: the ids are sorted
// lexicographically and joined, so both participants compute the same id and
// no two distinct pairs collide.
func RoomID(userA, userB string) (string, error) {
	if userA == "" || userB == "" || userA == userB {
		return "", ErrInvalidParticipants
	}
	if strings.Contains(userA, Separator) || strings.Contains(userB, Separator) {
		return "", ErrInvalidParticipants
	}
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + Separator + userB, nil
}

// Participants splits a canonical room id back into its sorted pair.
func Participants(roomID string) (string, string, error) {
	parts := strings.Split(roomID, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidParticipants
	}
	return parts[0], parts[1], nil
}
