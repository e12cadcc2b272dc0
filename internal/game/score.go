package game

import (
	"time"

	"github.com/scythe504/handkerchief-backend/internal"
)

// CalculateRoundPoints scores a check at checkTime (unix ms) against the
// round's drop. Without a drop the Dropper gets the maximum. A check within
// the grace period after the drop blocks it completely; after that every
// full second adds a point, capped at internal.MaxRoundPoints.
func CalculateRoundPoints(dropTime *int64, checkTime int64) (points int, dropped bool) {
	if dropTime == nil {
		return internal.MaxRoundPoints, false
	}

	elapsed := checkTime - *dropTime
	grace := internal.DropGracePeriod.Milliseconds()
	if elapsed <= grace {
		return 0, true
	}

	points = int((elapsed - grace) / 1000)
	return min(points, internal.MaxRoundPoints), true
}

// TimeoutOutcome is what an unanswered round is worth: the Checker never
// turned around, so the Dropper takes the maximum whether or not a drop
// happened.
func TimeoutOutcome(round *internal.Round) internal.RoundOutcome {
	return internal.RoundOutcome{
		Dropped:  round.DropTime != nil,
		Points:   internal.MaxRoundPoints,
		DropTime: round.DropTime,
		TimedOut: true,
	}
}

// CheckOutcome scores a round closed by a check at checkTime.
func CheckOutcome(round *internal.Round, checkTime int64) internal.RoundOutcome {
	points, dropped := CalculateRoundPoints(round.DropTime, checkTime)
	return internal.RoundOutcome{
		Dropped:   dropped,
		Points:    points,
		DropTime:  round.DropTime,
		CheckTime: &checkTime,
	}
}

// MatchSummary compiles the history record for a finished room.
func MatchSummary(room *internal.Room, winner *internal.Player, finishedAt time.Time) internal.MatchRecord {
	players := room.SnapshotPlayers()
	record := internal.MatchRecord{
		RoomID:       room.Id,
		Players:      players,
		RoundsPlayed: room.RoundsPlayed,
		StartedAt:    room.StartedAt,
		FinishedAt:   finishedAt,
	}
	if winner != nil {
		record.WinnerID = winner.Id
		record.WinnerName = winner.Name
	}
	return record
}
