package internal

import (
	"errors"
	"strings"
)

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound event types.
const (
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventDrop       = "drop_handkerchief"
	EventCheck      = "check_handkerchief"
	EventTimeout    = "round_timeout"
	EventLeaveRoom  = "leave_room"
)

// Outbound event types.
const (
	EventRoomCreated        = "room_created"
	EventRoomJoined         = "room_joined"
	EventGameStart          = "game_start"
	EventDropped            = "handkerchief_dropped"
	EventRoundResult        = "round_result"
	EventNextRound          = "next_round"
	EventGameOver           = "game_over"
	EventPlayerDisconnected = "player_disconnected"
	EventError              = "error"
)

var ErrMissingRoomID = errors.New("roomId is required")

type CreateRoomData struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomData struct {
	RoomId     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// Normalize trims input and upper-cases typed room codes.
func (d *JoinRoomData) Normalize() error {
	d.PlayerName = strings.TrimSpace(d.PlayerName)
	d.RoomId = strings.TrimSpace(d.RoomId)
	if d.RoomId == "" {
		return ErrMissingRoomID
	}
	if d.RoomId != RandomRoomID {
		d.RoomId = strings.ToUpper(d.RoomId)
	}
	return nil
}

// RoomActionData carries the room id for drop, check, timeout and leave.
type RoomActionData struct {
	RoomId string `json:"roomId"`
}

func (d *RoomActionData) Normalize() error {
	d.RoomId = strings.ToUpper(strings.TrimSpace(d.RoomId))
	if d.RoomId == "" {
		return ErrMissingRoomID
	}
	return nil
}

type RoomAssignedData struct {
	RoomId string `json:"roomId"`
	Role   Role   `json:"role"`
}

type PlayersData struct {
	Players []Player `json:"players"`
}

type DroppedData struct {
	Time int64 `json:"time"`
}

type RoundResultData struct {
	Dropped      bool           `json:"dropped"`
	Points       int            `json:"points"`
	DropTime     *int64         `json:"dropTime"`
	CheckTime    *int64         `json:"checkTime"`
	Timeout      bool           `json:"timeout,omitempty"`
	PlayerPoints []PlayerPoints `json:"playerPoints"`
}

type GameOverData struct {
	Winner Player `json:"winner"`
}

type PlayerDisconnectedData struct{}

type ErrorData struct {
	Message string `json:"message"`
}
