package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

// =============================================================================
// DROP HANDLING
// =============================================================================

// Drop records the drop time for the current round. Only the acting
// connection learns that it happened.
func (s *Service) Drop(connID, roomID string) {
	room, ok := s.registry.Get(roomID)
	if !ok {
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("drop for unknown room ignored")
		return
	}

	now := s.nowMs()

	room.Mu.Lock()
	if s.strictRoles {
		if dropper := room.Dropper(); dropper == nil || dropper.Id != connID {
			room.Mu.Unlock()
			log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("drop from non-dropper ignored")
			return
		}
	}
	recorded := room.RecordDrop(now)
	room.Mu.Unlock()

	if !recorded {
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("drop ignored, round not open or already dropped")
		return
	}

	s.notifier.Deliver(toConnection(connID, internal.EventDropped, internal.DroppedData{Time: now}))

	log.Info().Str("room_id", roomID).Int64("drop_time", now).Msg("handkerchief dropped")
}
