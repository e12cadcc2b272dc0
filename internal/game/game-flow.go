package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

const recordTimeout = 5 * time.Second

// advanceRound runs when the resolution delay for round seq expires. It
// starts the next round and ends the game once someone reached the winning
// total. A room that was deleted or already advanced makes this a no-op.
func (s *Service) advanceRound(roomID string, seq int) {
	room, ok := s.registry.Get(roomID)
	if !ok {
		log.Debug().Str("room_id", roomID).Msg("resolution delay expired for deleted room")
		return
	}

	room.Mu.Lock()
	if room.Closed || room.State != internal.StatePlaying || room.RoundSeq != seq {
		room.Mu.Unlock()
		log.Debug().Str("room_id", roomID).Int("round_seq", seq).Msg("stale resolution delay ignored")
		return
	}

	room.AdvanceRound()
	notes := []Notification{
		toRoom(roomID, internal.EventNextRound, internal.PlayersData{Players: room.SnapshotPlayers()}),
	}

	var match *internal.MatchRecord
	if winner := room.Winner(); winner != nil {
		room.Finish()
		summary := MatchSummary(room, winner, s.clock.Now())
		match = &summary
		notes = append(notes, toRoom(roomID, internal.EventGameOver, internal.GameOverData{Winner: winner.Snapshot()}))

		log.Info().
			Str("room_id", roomID).
			Str("winner_id", winner.Id).
			Int("winner_points", winner.Points).
			Int("rounds_played", room.RoundsPlayed).
			Msg("game over")
	} else {
		log.Info().Str("room_id", roomID).Int("round_seq", room.RoundSeq).Msg("next round started")
	}

	s.notifier.Deliver(notes...)
	room.Mu.Unlock()

	if match != nil {
		s.recordMatch(*match)
	}
}

// recordMatch stores the finished match in the background.
func (s *Service) recordMatch(match internal.MatchRecord) {
	if s.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.RecordMatch(ctx, match); err != nil {
			log.Error().Err(err).Str("room_id", match.RoomID).Msg("failed to record match")
			return
		}
		log.Debug().Str("room_id", match.RoomID).Msg("match recorded")
	}()
}
