package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
	"github.com/scythe504/handkerchief-backend/internal/utils"
)

var (
	ErrRoomNotFound  = errors.New("the specified room does not exist")
	ErrRoomFull      = errors.New("the room is full")
	ErrAlreadyJoined = errors.New("you are already in this room")
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// Registry owns every active room. Lock order is Registry.mu before Room.Mu.
// Announce callbacks run under Room.Mu and must not call back into the
// Registry on the same goroutine.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room

	clock clockwork.Clock

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewRegistry(clock clockwork.Clock, rng *rand.Rand) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Registry{
		rooms: make(map[string]*internal.Room),
		clock: clock,
		rng:   rng,
	}
}

// CreateRoom opens a waiting room with playerID seated as Dropper. announce,
// when non-nil, runs while the new room is still locked, so it completes
// before anyone else can join or act on the room.
func (r *Registry) CreateRoom(playerID, name string, announce func(roomID string, role internal.Role)) (string, internal.Role) {
	player := internal.NewPlayer(playerID, utils.DefaultPlayerName(name, 1), internal.RoleDropper)

	r.mu.Lock()
	roomID := r.newRoomIDLocked()
	room := internal.NewRoom(roomID, player, r.clock.Now())
	room.Mu.Lock()
	r.rooms[roomID] = room
	r.mu.Unlock()
	defer room.Mu.Unlock()

	log.Info().
		Str("room_id", roomID).
		Str("player_id", playerID).
		Str("player_name", player.Name).
		Msg("room created")

	if announce != nil {
		announce(roomID, internal.RoleDropper)
	}
	return roomID, internal.RoleDropper
}

func (r *Registry) newRoomIDLocked() string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	for {
		id := utils.GenerateRoomID(r.rng)
		if _, exists := r.rooms[id]; !exists {
			return id
		}
	}
}

// FindRandomRoom picks uniformly among rooms waiting for a second player
// that requesterID does not already occupy. It returns "" when none qualify.
func (r *Registry) FindRandomRoom(requesterID string) string {
	r.mu.RLock()
	candidates := make([]string, 0)
	for id, room := range r.rooms {
		room.Mu.Lock()
		if room.IsMatchable(requesterID) {
			candidates = append(candidates, id)
		}
		room.Mu.Unlock()
	}
	r.mu.RUnlock()

	log.Debug().
		Str("requester_id", requesterID).
		Int("candidates", len(candidates)).
		Msg("random match search")

	if len(candidates) == 0 {
		return ""
	}

	// Map order is not uniform; sort so the draw below is.
	slices.Sort(candidates)

	r.rngMu.Lock()
	pick := candidates[r.rng.IntN(len(candidates))]
	r.rngMu.Unlock()
	return pick
}

// JoinRoom seats playerID as Checker and moves the room to playing. The
// returned players are a snapshot taken while the room was locked. announce,
// when non-nil, receives the same snapshot and runs before the room is
// unlocked, so no round action can slip in ahead of it.
func (r *Registry) JoinRoom(roomID, playerID, name string, announce func(role internal.Role, players []internal.Player)) (internal.Role, []internal.Player, error) {
	r.mu.RLock()
	room, exists := r.rooms[roomID]
	if !exists {
		r.mu.RUnlock()
		return "", nil, fmt.Errorf("join %s: %w", roomID, ErrRoomNotFound)
	}
	room.Mu.Lock()
	r.mu.RUnlock()
	defer room.Mu.Unlock()

	if room.Closed {
		return "", nil, fmt.Errorf("join %s: room is closing: %w", roomID, ErrRoomNotFound)
	}
	if room.HasPlayer(playerID) {
		return "", nil, fmt.Errorf("join %s: %w", roomID, ErrAlreadyJoined)
	}
	player := internal.NewPlayer(playerID, utils.DefaultPlayerName(name, 2), internal.RoleChecker)
	if !room.AddChallenger(player, r.clock.Now()) {
		return "", nil, fmt.Errorf("join %s: %w", roomID, ErrRoomFull)
	}

	log.Info().
		Str("room_id", roomID).
		Str("player_id", playerID).
		Str("player_name", player.Name).
		Msg("player joined room")

	players := room.SnapshotPlayers()
	if announce != nil {
		announce(internal.RoleChecker, players)
	}
	return internal.RoleChecker, players, nil
}

func (r *Registry) Get(roomID string) (*internal.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// RemoveRoom deletes the room unconditionally and reports whether it existed.
func (r *Registry) RemoveRoom(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[roomID]; !exists {
		return false
	}
	delete(r.rooms, roomID)
	log.Info().Str("room_id", roomID).Msg("room removed")
	return true
}

// RoomsOf lists the ids of rooms where playerID holds a seat.
func (r *Registry) RoomsOf(playerID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, 1)
	for id, room := range r.rooms {
		room.Mu.Lock()
		if room.HasPlayer(playerID) {
			ids = append(ids, id)
		}
		room.Mu.Unlock()
	}
	return ids
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// =============================================================================
// TEARDOWN
// =============================================================================

// Leave handles an explicit leave_room from connID.
func (s *Service) Leave(connID, roomID string) {
	room, ok := s.registry.Get(roomID)
	if !ok {
		log.Debug().Str("room_id", roomID).Str("connection_id", connID).Msg("leave for unknown room ignored")
		return
	}
	s.teardown(room, connID, "left")
}

// Disconnect tears down every room the vanished connection sat in.
func (s *Service) Disconnect(connID string) {
	for _, roomID := range s.registry.RoomsOf(connID) {
		if room, ok := s.registry.Get(roomID); ok {
			s.teardown(room, connID, "disconnected")
		}
	}
}

// teardown tells the other seat, then deletes the room and its pending
// round timer. There is no grace period.
func (s *Service) teardown(room *internal.Room, connID, reason string) {
	room.Mu.Lock()
	if room.Closed || !room.HasPlayer(connID) {
		room.Mu.Unlock()
		return
	}
	room.Closed = true
	roomID := room.Id
	remaining := room.GetPlayerCount() - 1
	room.Mu.Unlock()

	log.Info().
		Str("room_id", roomID).
		Str("connection_id", connID).
		Str("reason", reason).
		Int("players_remaining", remaining).
		Msg("tearing down room")

	s.notifier.Deliver(toRoomExcept(roomID, connID, internal.EventPlayerDisconnected, internal.PlayerDisconnectedData{}))
	s.registry.RemoveRoom(roomID)
	s.timer.Cancel(roomID)
	s.notifier.Dissolve(roomID)
}
