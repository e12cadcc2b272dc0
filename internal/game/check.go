package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

// =============================================================================
// CHECK & TIMEOUT HANDLING
// =============================================================================

// Check resolves the round from the Checker turning around.
func (s *Service) Check(connID, roomID string) {
	room, ok := s.registry.Get(roomID)
	if !ok {
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("check for unknown room ignored")
		return
	}

	now := s.nowMs()

	room.Mu.Lock()
	if !room.AcceptsRoundActions() {
		room.Mu.Unlock()
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("check ignored, round not open")
		return
	}
	if s.strictRoles {
		if checker := room.Checker(); checker == nil || checker.Id != connID {
			room.Mu.Unlock()
			log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("check from non-checker ignored")
			return
		}
	}
	s.resolveLocked(room, CheckOutcome(room.Round, now))
	room.Mu.Unlock()
}

// Timeout resolves a round the client reports as expired. It is a no-op
// once a check has been recorded for the round.
func (s *Service) Timeout(connID, roomID string) {
	room, ok := s.registry.Get(roomID)
	if !ok {
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("timeout for unknown room ignored")
		return
	}

	room.Mu.Lock()
	if !room.AcceptsRoundActions() || room.Round.CheckTime != nil {
		room.Mu.Unlock()
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("timeout ignored, round already resolved")
		return
	}
	if s.strictRoles && !room.HasPlayer(connID) {
		room.Mu.Unlock()
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("timeout from outsider ignored")
		return
	}
	s.resolveLocked(room, TimeoutOutcome(room.Round))
	room.Mu.Unlock()
}

// resolveLocked awards the outcome, swaps roles, broadcasts the result and
// arms the resolution delay. Delivery happens under the room lock so that
// results reach the players in resolution order.
func (s *Service) resolveLocked(room *internal.Room, outcome internal.RoundOutcome) {
	outcome = room.Resolve(outcome)

	result := internal.RoundResultData{
		Dropped:      outcome.Dropped,
		Points:       outcome.Points,
		DropTime:     outcome.DropTime,
		CheckTime:    outcome.CheckTime,
		Timeout:      outcome.TimedOut,
		PlayerPoints: room.PlayerPoints(),
	}
	s.notifier.Deliver(toRoom(room.Id, internal.EventRoundResult, result))

	event := log.Info().
		Str("room_id", room.Id).
		Bool("dropped", outcome.Dropped).
		Bool("timeout", outcome.TimedOut).
		Int("points", outcome.Points)
	if outcome.Dropper != nil {
		event = event.Str("dropper_id", outcome.Dropper.Id).Int("dropper_total", outcome.Dropper.Points)
	}
	event.Msg("round resolved")

	roomID, seq := room.Id, room.RoundSeq
	s.timer.Schedule(roomID, s.resolutionDelay, func() {
		s.advanceRound(roomID, seq)
	})
}
