package internal

import (
	"sync"
	"time"
)

const (
	RoundTimeLimit    = 60 * time.Second
	ResolutionDelay   = 10 * time.Second
	DropGracePeriod   = 1 * time.Second
	MaxRoundPoints    = 60
	WinningPoints     = 100
	MaxPlayersPerRoom = 2
	RoomIDLength      = 6

	// RandomRoomID is the join_room sentinel asking for matchmaking.
	RandomRoomID = "random"
)

type GameState string

const (
	StateWaiting  GameState = "waiting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

type Role string

const (
	RoleDropper Role = "drop"
	RoleChecker Role = "check"
)

// Opposite returns the role a player takes after a round resolves.
func (r Role) Opposite() Role {
	if r == RoleDropper {
		return RoleChecker
	}
	return RoleDropper
}

type Round struct {
	// Unix milliseconds, nil until the action happened in this round.
	DropTime  *int64 `json:"drop_time"`
	CheckTime *int64 `json:"check_time"`

	Points    int           `json:"points"`
	Resolved  bool          `json:"resolved"`
	TimedOut  bool          `json:"timed_out"`
	TimeLimit time.Duration `json:"time_limit"`
}

func NewRound() *Round {
	return &Round{TimeLimit: RoundTimeLimit}
}

type Room struct {
	Id      string
	Players []*Player

	// Game State
	State GameState `json:"state"`
	Round *Round    `json:"round"`

	// RoundSeq increments every time a new round replaces the old one.
	// Deferred work captures it to detect that it went stale.
	RoundSeq     int `json:"round_seq"`
	RoundsPlayed int `json:"rounds_played"`

	// Closed is set once teardown starts; the room accepts nothing after.
	Closed bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at"`

	// Concurrency control
	Mu sync.Mutex `json:"-"`
}

// RoundOutcome is the result of resolving a round, by check or by timeout.
type RoundOutcome struct {
	Dropped   bool
	Points    int
	DropTime  *int64
	CheckTime *int64
	TimedOut  bool
	Dropper   *Player
}

type PlayerPoints struct {
	Id     string `json:"id"`
	Points int    `json:"points"`
}

// MatchRecord is the summary of a finished game kept for history.
type MatchRecord struct {
	RoomID       string    `json:"room_id"`
	WinnerID     string    `json:"winner_id"`
	WinnerName   string    `json:"winner_name"`
	Players      []Player  `json:"players"`
	RoundsPlayed int       `json:"rounds_played"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
