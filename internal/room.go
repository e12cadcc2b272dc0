package internal

import "time"

// Methods (Room Struct)
// Callers hold room.Mu for every method below.

func NewRoom(id string, creator *Player, now time.Time) *Room {
	return &Room{
		Id:        id,
		Players:   []*Player{creator},
		State:     StateWaiting,
		Round:     NewRound(),
		CreatedAt: now,
	}
}

func (r *Room) GetPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func (r *Room) HasPlayer(id string) bool {
	return r.GetPlayer(id) != nil
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayersPerRoom
}

func (r *Room) playerWithRole(role Role) *Player {
	for _, p := range r.Players {
		if p.Role == role {
			return p
		}
	}
	return nil
}

func (r *Room) Dropper() *Player {
	return r.playerWithRole(RoleDropper)
}

func (r *Room) Checker() *Player {
	return r.playerWithRole(RoleChecker)
}

// IsMatchable reports whether a random join from requesterID may land here.
func (r *Room) IsMatchable(requesterID string) bool {
	return !r.Closed &&
		len(r.Players) == 1 &&
		r.State == StateWaiting &&
		r.Players[0].Id != requesterID
}

// AddChallenger seats the second player as Checker and starts the game.
func (r *Room) AddChallenger(p *Player, now time.Time) bool {
	if r.Closed || r.IsFull() || r.State != StateWaiting {
		return false
	}
	p.Role = RoleChecker
	p.Points = 0
	r.Players = append(r.Players, p)
	r.State = StatePlaying
	r.StartedAt = now
	return true
}

// AcceptsRoundActions is true only while a round is open for play.
func (r *Room) AcceptsRoundActions() bool {
	return !r.Closed && r.State == StatePlaying && r.Round != nil && !r.Round.Resolved
}

// RecordDrop stores the drop time once per round.
func (r *Room) RecordDrop(nowMs int64) bool {
	if !r.AcceptsRoundActions() || r.Round.DropTime != nil {
		return false
	}
	r.Round.DropTime = &nowMs
	return true
}

// Resolve awards the outcome to the current Dropper, closes the round and
// swaps both players' roles.
func (r *Room) Resolve(outcome RoundOutcome) RoundOutcome {
	dropper := r.Dropper()
	if dropper != nil {
		dropper.Points += outcome.Points
	}
	outcome.Dropper = dropper

	r.Round.Points = outcome.Points
	r.Round.CheckTime = outcome.CheckTime
	r.Round.TimedOut = outcome.TimedOut
	r.Round.Resolved = true
	r.RoundsPlayed++

	for _, p := range r.Players {
		p.SwapRole()
	}
	return outcome
}

// AdvanceRound replaces the resolved round with a fresh one.
func (r *Room) AdvanceRound() {
	r.Round = NewRound()
	r.RoundSeq++
}

// Winner returns the first player, in seat order, at or above WinningPoints.
func (r *Room) Winner() *Player {
	for _, p := range r.Players {
		if p.Points >= WinningPoints {
			return p
		}
	}
	return nil
}

func (r *Room) Finish() {
	r.State = StateFinished
}

func (r *Room) SnapshotPlayers() []Player {
	players := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.Snapshot())
	}
	return players
}

func (r *Room) PlayerPoints() []PlayerPoints {
	points := make([]PlayerPoints, 0, len(r.Players))
	for _, p := range r.Players {
		points = append(points, PlayerPoints{Id: p.Id, Points: p.Points})
	}
	return points
}
