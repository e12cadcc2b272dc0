package game

import "github.com/scythe504/handkerchief-backend/internal"

// Scope selects which connections a Notification reaches.
type Scope int

const (
	// ScopeConnection targets a single connection.
	ScopeConnection Scope = iota
	// ScopeRoom targets every connection subscribed to a room.
	ScopeRoom
	// ScopeRoomExcept targets a room minus the Except connection.
	ScopeRoomExcept
)

func (s Scope) String() string {
	switch s {
	case ScopeConnection:
		return "connection"
	case ScopeRoom:
		return "room"
	case ScopeRoomExcept:
		return "room_except"
	default:
		return "unknown"
	}
}

type Notification struct {
	Scope   Scope
	Target  string // connection id or room id, depending on Scope
	Except  string
	Message internal.Message[any]
}

// Notifier is the outbound side of the transport. Deliver must hand the
// messages to their recipients in the order given.
type Notifier interface {
	Subscribe(roomID, connID string)
	Dissolve(roomID string)
	Deliver(notes ...Notification)
}

func toConnection(connID, eventType string, data any) Notification {
	return Notification{
		Scope:   ScopeConnection,
		Target:  connID,
		Message: internal.Message[any]{Type: eventType, Data: data},
	}
}

func toRoom(roomID, eventType string, data any) Notification {
	return Notification{
		Scope:   ScopeRoom,
		Target:  roomID,
		Message: internal.Message[any]{Type: eventType, Data: data},
	}
}

func toRoomExcept(roomID, exceptConnID, eventType string, data any) Notification {
	return Notification{
		Scope:   ScopeRoomExcept,
		Target:  roomID,
		Except:  exceptConnID,
		Message: internal.Message[any]{Type: eventType, Data: data},
	}
}
