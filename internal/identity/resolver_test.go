package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomIDCommutative(t *testing.T) {
	ab, err := RoomID("alice", "bob")
	require.NoError(t, err)
	ba, err := RoomID("bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestRoomIDDistinctPairs(t *testing.T) {
	ab, err := RoomID("alice", "bob")
	require.NoError(t, err)
	ac, err := RoomID("alice", "carol")
	require.NoError(t, err)
	assert.NotEqual(t, ab, ac)
}

func TestRoomIDInvalid(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"empty first", "", "bob"},
		{"empty second", "alice", ""},
		{"equal ids", "alice", "alice"},
		{"separator in id", "ali:ce", "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RoomID(tc.a, tc.b)
			assert.ErrorIs(t, err, ErrInvalidParticipants)
		})
	}
}

func TestParticipantsRoundTrip(t *testing.T) {
	id, err := RoomID("u7", "u2")
	require.NoError(t, err)

	first, second, err := Participants(id)
	require.NoError(t, err)
	assert.Equal(t, "u2", first)
	assert.Equal(t, "u7", second)
}

func TestParticipantsMalformed(t *testing.T) {
	_, _, err := Participants("not-a-room-id")
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}
