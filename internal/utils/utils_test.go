package utils_test

import (
	"math/rand/v2"
	"testing"

	"github.com/scythe504/handkerchief-backend/internal"
	"github.com/scythe504/handkerchief-backend/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomID(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	seen := make(map[string]struct{})
	for range 500 {
		id := utils.GenerateRoomID(rng)
		assert.Len(t, id, internal.RoomIDLength)
		assert.True(t, utils.IsValidRoomID(id), "generated id %q should be valid", id)
		seen[id] = struct{}{}
	}
	assert.Greater(t, len(seen), 490, "ids should rarely collide")
}

func TestGenerateRoomID_Deterministic(t *testing.T) {
	a := utils.GenerateRoomID(rand.New(rand.NewPCG(7, 7)))
	b := utils.GenerateRoomID(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

func TestIsValidRoomID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"abc123", false},
		{"ABC12", false},
		{"ABC1234", false},
		{"ABC-12", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.valid, utils.IsValidRoomID(tt.id))
		})
	}
}

func TestDefaultPlayerName(t *testing.T) {
	assert.Equal(t, "Alice", utils.DefaultPlayerName("Alice", 1))
	assert.Equal(t, "Alice", utils.DefaultPlayerName("  Alice ", 1))
	assert.Equal(t, "Player 1", utils.DefaultPlayerName("", 1))
	assert.Equal(t, "Player 2", utils.DefaultPlayerName("   ", 2))
}
