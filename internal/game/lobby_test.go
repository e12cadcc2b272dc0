package game_test

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/scythe504/handkerchief-backend/internal"
	"github.com/scythe504/handkerchief-backend/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// raceWindow bounds how long a hooked Subscribe waits for the competing
// action before letting the subscription through.
const raceWindow = 50 * time.Millisecond

// subscribeHook runs a one-shot function just before a given connection's
// subscription reaches the recorder.
type subscribeHook struct {
	*recordingNotifier

	mu     sync.Mutex
	connID string
	fn     func(roomID string)
}

func (h *subscribeHook) before(connID string, fn func(roomID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connID, h.fn = connID, fn
}

func (h *subscribeHook) Subscribe(roomID, connID string) {
	h.mu.Lock()
	fn := h.fn
	if connID != h.connID {
		fn = nil
	}
	if fn != nil {
		h.fn = nil
	}
	h.mu.Unlock()

	if fn != nil {
		fn(roomID)
	}
	h.recordingNotifier.Subscribe(roomID, connID)
}

func newHookedService(t *testing.T) (*game.Service, *subscribeHook) {
	t.Helper()
	hook := &subscribeHook{recordingNotifier: newRecordingNotifier()}
	svc := game.NewService(hook, game.Options{
		Clock: clockwork.NewFakeClockAt(epoch),
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	t.Cleanup(svc.Stop)
	return svc, hook
}

// inBackground starts fn and gives it up to raceWindow to finish. The
// returned channel closes once fn has returned.
func inBackground(fn func()) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		fn()
	}()
	select {
	case <-finished:
	case <-time.After(raceWindow):
	}
	return finished
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("competing action did not finish")
	}
}

func TestService_CreatorSubscribedBeforeRoomIsMatchable(t *testing.T) {
	svc, hook := newHookedService(t)

	var (
		done    <-chan struct{}
		joinErr error
	)
	hook.before("p1", func(string) {
		done = inBackground(func() {
			joinErr = svc.JoinRoom("p2", internal.RandomRoomID, "Bob")
		})
	})

	require.NoError(t, svc.JoinRoom("p1", internal.RandomRoomID, "Alice"))
	waitDone(t, done)
	require.NoError(t, joinErr)

	assert.Equal(t, []string{internal.EventRoomCreated, internal.EventGameStart}, hook.Events("p1"))
	assert.Equal(t, []string{internal.EventRoomJoined, internal.EventGameStart}, hook.Events("p2"))
	assert.Equal(t, 1, svc.Registry().Count())
}

func TestService_JoinAnnouncedBeforeRoundActions(t *testing.T) {
	svc, hook := newHookedService(t)
	roomID := svc.CreateRoom("p1", "Alice")

	var done <-chan struct{}
	hook.before("p2", func(string) {
		done = inBackground(func() {
			svc.Check("p1", roomID)
		})
	})

	require.NoError(t, svc.JoinRoom("p2", roomID, "Bob"))
	waitDone(t, done)

	assert.Equal(t,
		[]string{internal.EventRoomCreated, internal.EventGameStart, internal.EventRoundResult},
		hook.Events("p1"))
	assert.Equal(t,
		[]string{internal.EventRoomJoined, internal.EventGameStart, internal.EventRoundResult},
		hook.Events("p2"))
}

func TestService_JoinClosingRoom(t *testing.T) {
	env := newTestEnv(t, false)
	roomID := env.svc.CreateRoom("p1", "Alice")

	room := env.room(t, roomID)
	room.Mu.Lock()
	room.Closed = true
	room.Mu.Unlock()

	err := env.svc.JoinRoom("p2", roomID, "Bob")
	require.ErrorIs(t, err, game.ErrRoomNotFound)

	msg, ok := env.notifier.Last("p2", internal.EventError)
	require.True(t, ok)
	assert.Equal(t, internal.ErrorData{Message: game.ErrRoomNotFound.Error()}, msg.Data)
}
