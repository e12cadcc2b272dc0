package game_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/scythe504/handkerchief-backend/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createdRoomID(t *testing.T, n *recordingNotifier, connID string) string {
	t.Helper()
	msg, ok := n.Last(connID, internal.EventRoomCreated)
	require.True(t, ok, "%s should have a room_created", connID)
	return msg.Data.(internal.RoomAssignedData).RoomId
}

func TestHandleMessage_GameFlow(t *testing.T) {
	env := newTestEnv(t, false)

	env.svc.HandleMessage("p1", []byte(`{"type":"create_room","data":{"playerName":"Alice"}}`))
	roomID := createdRoomID(t, env.notifier, "p1")

	// Lower-case codes typed by a player still match.
	env.svc.HandleMessage("p2", []byte(fmt.Sprintf(
		`{"type":"join_room","data":{"roomId":%q,"playerName":"Bob"}}`, strings.ToLower(roomID))))
	require.Equal(t, 1, env.notifier.Count("p1", internal.EventGameStart))

	env.svc.HandleMessage("p1", []byte(fmt.Sprintf(`{"type":"drop_handkerchief","data":{"roomId":%q}}`, roomID)))
	assert.Equal(t, 1, env.notifier.Count("p1", internal.EventDropped))

	env.clock.Advance(2500 * time.Millisecond)
	env.svc.HandleMessage("p2", []byte(fmt.Sprintf(`{"type":"check_handkerchief","data":{"roomId":%q}}`, roomID)))
	assert.Equal(t, 1, lastRoundResult(t, env.notifier, "p2").Points)

	env.svc.HandleMessage("p2", []byte(fmt.Sprintf(`{"type":"leave_room","data":{"roomId":%q}}`, roomID)))
	assert.Equal(t, 1, env.notifier.Count("p1", internal.EventPlayerDisconnected))
	assert.Zero(t, env.svc.Registry().Count())
}

func TestHandleMessage_Timeout(t *testing.T) {
	env := newTestEnv(t, false)
	roomID := env.startGame(t)

	env.svc.HandleMessage("p2", []byte(fmt.Sprintf(`{"type":"round_timeout","data":{"roomId":%q}}`, roomID)))

	result := lastRoundResult(t, env.notifier, "p1")
	assert.True(t, result.Timeout)
	assert.Equal(t, 60, result.Points)
}

func TestHandleMessage_CreateRoomWithoutData(t *testing.T) {
	for _, raw := range []string{
		`{"type":"create_room"}`,
		`{"type":"create_room","data":null}`,
		`{"type":"create_room","data":{}}`,
	} {
		t.Run(raw, func(t *testing.T) {
			env := newTestEnv(t, false)
			env.svc.HandleMessage("p1", []byte(raw))

			room := env.room(t, createdRoomID(t, env.notifier, "p1"))
			room.Mu.Lock()
			defer room.Mu.Unlock()
			assert.Equal(t, "Player 1", room.Players[0].Name)
		})
	}
}

func TestHandleMessage_Random(t *testing.T) {
	env := newTestEnv(t, false)

	env.svc.HandleMessage("p1", []byte(`{"type":"join_room","data":{"roomId":"random","playerName":"Alice"}}`))
	createdRoomID(t, env.notifier, "p1")

	env.svc.HandleMessage("p2", []byte(`{"type":"join_room","data":{"roomId":"random","playerName":"Bob"}}`))
	assert.Equal(t, 1, env.notifier.Count("p2", internal.EventRoomJoined))
	assert.Equal(t, 1, env.notifier.Count("p1", internal.EventGameStart))
}

func TestHandleMessage_Rejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `drop it`},
		{name: "unknown type", raw: `{"type":"steal_handkerchief","data":{"roomId":"ABC123"}}`},
		{name: "join without room id", raw: `{"type":"join_room","data":{"playerName":"Bob"}}`},
		{name: "join without data", raw: `{"type":"join_room"}`},
		{name: "drop with wrong payload type", raw: `{"type":"drop_handkerchief","data":"ABC123"}`},
		{name: "check without room id", raw: `{"type":"check_handkerchief","data":{}}`},
		{name: "create with malformed data", raw: `{"type":"create_room","data":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			roomID := env.startGame(t)
			before := len(env.notifier.Events("p1")) + len(env.notifier.Events("p2"))

			env.svc.HandleMessage("p2", []byte(tt.raw))

			after := len(env.notifier.Events("p1")) + len(env.notifier.Events("p2"))
			assert.Equal(t, before, after, "malformed frames produce no messages")
			assert.Equal(t, 1, env.svc.Registry().Count())
			assert.Empty(t, env.notifier.Events("p9"))

			room := env.room(t, roomID)
			room.Mu.Lock()
			assert.True(t, room.AcceptsRoundActions())
			room.Mu.Unlock()
		})
	}
}

func TestHandleMessage_JoinUnknownRoom(t *testing.T) {
	env := newTestEnv(t, false)

	env.svc.HandleMessage("p1", []byte(`{"type":"join_room","data":{"roomId":"zzzzzz","playerName":"Alice"}}`))

	msg, ok := env.notifier.Last("p1", internal.EventError)
	require.True(t, ok)
	assert.Equal(t, internal.ErrorData{Message: "the specified room does not exist"}, msg.Data)
}
