package game

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// RoundTimer runs at most one pending one-shot task per room.
type RoundTimer struct {
	clock clockwork.Clock

	mu     sync.Mutex
	active map[string]*scheduledTask
}

type scheduledTask struct {
	timer  clockwork.Timer
	cancel context.CancelFunc
}

func NewRoundTimer(clock clockwork.Clock) *RoundTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoundTimer{
		clock:  clock,
		active: make(map[string]*scheduledTask),
	}
}

// Schedule runs fn once after d, replacing any task pending for roomID.
// The timer is armed before Schedule returns.
func (t *RoundTimer) Schedule(roomID string, d time.Duration, fn func()) {
	ctx, cancel := context.WithCancel(context.Background())
	task := &scheduledTask{
		timer:  t.clock.NewTimer(d),
		cancel: cancel,
	}
	t.replace(roomID, task)

	go func() {
		select {
		case <-task.timer.Chan():
			if !t.release(roomID, task) {
				// Replaced or cancelled between firing and here.
				return
			}
			log.Debug().Str("room_id", roomID).Dur("delay", d).Msg("round timer fired")
			fn()
		case <-ctx.Done():
			stopAndDrainTimer(task.timer)
			log.Debug().Str("room_id", roomID).Msg("round timer cancelled")
		}
	}()

	log.Debug().
		Str("room_id", roomID).
		Dur("delay", d).
		Time("deadline", t.clock.Now().Add(d)).
		Msg("scheduled round timer")
}

// Cancel abandons the task pending for roomID, if any.
func (t *RoundTimer) Cancel(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if task, exists := t.active[roomID]; exists {
		task.cancel()
		delete(t.active, roomID)
	}
}

// Pending reports whether roomID has a task that has not fired yet.
func (t *RoundTimer) Pending(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, exists := t.active[roomID]
	return exists
}

// Stop cancels every pending task.
func (t *RoundTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for roomID, task := range t.active {
		task.cancel()
		delete(t.active, roomID)
	}
}

func (t *RoundTimer) replace(roomID string, task *scheduledTask) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, exists := t.active[roomID]; exists {
		existing.cancel()
		log.Debug().Str("room_id", roomID).Msg("replaced existing round timer")
	}
	t.active[roomID] = task
}

// release drops task from the active set, returning false if it is no
// longer the task registered for roomID.
func (t *RoundTimer) release(roomID string, task *scheduledTask) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[roomID] != task {
		return false
	}
	delete(t.active, roomID)
	task.cancel()
	return true
}

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
