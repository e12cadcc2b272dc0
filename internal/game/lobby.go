package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
	"github.com/scythe504/handkerchief-backend/internal/utils"
)

// =============================================================================
// GAME FLOW - LOBBY & MATCHMAKING
// =============================================================================

// CreateRoom opens a new room for connID, who becomes the Dropper. The
// creator is subscribed before the room can be matched.
func (s *Service) CreateRoom(connID, playerName string) string {
	roomID, _ := s.registry.CreateRoom(connID, playerName, func(roomID string, role internal.Role) {
		s.notifier.Subscribe(roomID, connID)
		s.notifier.Deliver(toConnection(connID, internal.EventRoomCreated, internal.RoomAssignedData{
			RoomId: roomID,
			Role:   role,
		}))
	})
	return roomID
}

// JoinRoom seats connID in roomID as the Checker and starts the game. The
// "random" sentinel joins any waiting room, or creates one when none is
// available. Join failures go back to the requester only.
func (s *Service) JoinRoom(connID, roomID, playerName string) error {
	random := roomID == internal.RandomRoomID
	if random {
		roomID = s.registry.FindRandomRoom(connID)
		if roomID == "" {
			log.Info().Str("connection_id", connID).Msg("no waiting room for random match, creating one")
			s.CreateRoom(connID, playerName)
			return nil
		}
		log.Info().Str("connection_id", connID).Str("room_id", roomID).Msg("random match found")
	}

	announce := func(role internal.Role, players []internal.Player) {
		s.notifier.Subscribe(roomID, connID)
		s.notifier.Deliver(
			toConnection(connID, internal.EventRoomJoined, internal.RoomAssignedData{
				RoomId: roomID,
				Role:   role,
			}),
			toRoom(roomID, internal.EventGameStart, internal.PlayersData{Players: players}),
		)
	}

	var (
		players []internal.Player
		err     error
	)
	if utils.IsValidRoomID(roomID) {
		_, players, err = s.registry.JoinRoom(roomID, connID, playerName, announce)
	} else {
		err = fmt.Errorf("join %q: malformed room code: %w", roomID, ErrRoomNotFound)
	}
	if err != nil {
		if random && !errors.Is(err, ErrAlreadyJoined) {
			// The picked room filled up or vanished in the meantime.
			log.Info().Err(err).Str("connection_id", connID).Msg("random match lost, creating room")
			s.CreateRoom(connID, playerName)
			return nil
		}
		log.Info().Err(err).Str("connection_id", connID).Str("room_id", roomID).Msg("join rejected")
		s.notifier.Deliver(toConnection(connID, internal.EventError, internal.ErrorData{
			Message: clientMessage(err),
		}))
		return err
	}

	log.Info().Str("room_id", roomID).Int("players", len(players)).Msg("game started")
	return nil
}

// clientMessage maps a join error to the text shown to the player.
func clientMessage(err error) string {
	for _, known := range []error{ErrRoomNotFound, ErrRoomFull, ErrAlreadyJoined} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "unable to join room"
}
