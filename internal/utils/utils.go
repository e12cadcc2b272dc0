package utils

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/scythe504/handkerchief-backend/internal"
)

const roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRoomID returns a human-typable room code of internal.RoomIDLength
// characters drawn from A-Z and 0-9.
func GenerateRoomID(rng *rand.Rand) string {
	var sb strings.Builder
	sb.Grow(internal.RoomIDLength)
	for range internal.RoomIDLength {
		sb.WriteByte(roomIDAlphabet[rng.IntN(len(roomIDAlphabet))])
	}
	return sb.String()
}

// IsValidRoomID reports whether id looks like a code GenerateRoomID made.
func IsValidRoomID(id string) bool {
	if len(id) != internal.RoomIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(roomIDAlphabet, rune(id[i])) {
			return false
		}
	}
	return true
}

// DefaultPlayerName falls back to "Player N" for the given 1-based seat.
func DefaultPlayerName(name string, seat int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Player %d", seat)
	}
	return name
}
