package game

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

var errMissingData = errors.New("message data is required")

// HandleMessage decodes one inbound frame from connID and routes it.
// Malformed or unknown frames are logged and dropped.
func (s *Service) HandleMessage(connID string, raw []byte) {
	var baseMsg internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &baseMsg); err != nil {
		log.Warn().Err(err).Str("connection_id", connID).Msg("failed to parse base message")
		return
	}

	log.Debug().Str("connection_id", connID).Str("event", baseMsg.Type).Msg("received message")

	switch baseMsg.Type {
	case internal.EventCreateRoom:
		var data internal.CreateRoomData
		if len(baseMsg.Data) > 0 && string(baseMsg.Data) != "null" {
			if err := json.Unmarshal(baseMsg.Data, &data); err != nil {
				s.logInvalid(connID, baseMsg.Type, err)
				return
			}
		}
		s.CreateRoom(connID, data.PlayerName)

	case internal.EventJoinRoom:
		var data internal.JoinRoomData
		if err := decodeData(baseMsg.Data, &data); err != nil {
			s.logInvalid(connID, baseMsg.Type, err)
			return
		}
		if err := data.Normalize(); err != nil {
			s.logInvalid(connID, baseMsg.Type, err)
			return
		}
		if err := s.JoinRoom(connID, data.RoomId, data.PlayerName); err != nil {
			// Already reported to the requester.
			log.Debug().Err(err).Str("connection_id", connID).Msg("join_room rejected")
		}

	case internal.EventDrop, internal.EventCheck, internal.EventTimeout, internal.EventLeaveRoom:
		var data internal.RoomActionData
		if err := decodeData(baseMsg.Data, &data); err != nil {
			s.logInvalid(connID, baseMsg.Type, err)
			return
		}
		if err := data.Normalize(); err != nil {
			s.logInvalid(connID, baseMsg.Type, err)
			return
		}
		s.routeRoomAction(connID, baseMsg.Type, data.RoomId)

	default:
		log.Warn().Str("connection_id", connID).Str("event", baseMsg.Type).Msg("unknown message type")
	}
}

func (s *Service) routeRoomAction(connID, eventType, roomID string) {
	switch eventType {
	case internal.EventDrop:
		s.Drop(connID, roomID)
	case internal.EventCheck:
		s.Check(connID, roomID)
	case internal.EventTimeout:
		s.Timeout(connID, roomID)
	case internal.EventLeaveRoom:
		s.Leave(connID, roomID)
	}
}

// HandleDisconnect is called by the transport once a connection is gone.
func (s *Service) HandleDisconnect(connID string) {
	log.Debug().Str("connection_id", connID).Msg("connection closed")
	s.Disconnect(connID)
}

func decodeData[T any](raw json.RawMessage, dst *T) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errMissingData
	}
	return json.Unmarshal(raw, dst)
}

func (s *Service) logInvalid(connID, eventType string, err error) {
	log.Warn().Err(err).Str("connection_id", connID).Str("event", eventType).Msg("invalid message data")
}
