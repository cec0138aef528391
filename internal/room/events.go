package room

import (
	"strconv"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"
)

// Event types published on the room event bus. Occupant events carry a
// SessionRef source and a RoomRef target; room events carry a RoomRef
// source.
const (
	EventOccupantEntered = "room.occupant.entered"
	EventOccupantLeft    = "room.occupant.left"
	EventRoomLoaded      = "room.loaded"
	EventRoomUnloaded    = "room.unloaded"
)

// Entity types used in room events
const (
	EntityTypeSession = "session"
	EntityTypeRoom    = "room"
)

// SessionRef names a client session in an event
type SessionRef string

// GetID returns the session id
func (s SessionRef) GetID() string { return string(s) }

// GetType returns EntityTypeSession
func (s SessionRef) GetType() string { return EntityTypeSession }

// RoomRef names a room in an event
type RoomRef int

// GetID returns the room id in decimal
func (r RoomRef) GetID() string { return strconv.Itoa(int(r)) }

// GetType returns EntityTypeRoom
func (r RoomRef) GetType() string { return EntityTypeRoom }

// RoomID parses the room id back out of an event entity
func RoomID(e core.Entity) (int, bool) {
	if e == nil || e.GetType() != EntityTypeRoom {
		return 0, false
	}
	id, err := strconv.Atoi(e.GetID())
	return id, err == nil
}

// NewOccupantEvent builds an entered or left event
func NewOccupantEvent(eventType, sessionID string, roomID int) events.Event {
	return events.NewGameEvent(eventType, SessionRef(sessionID), RoomRef(roomID))
}

// NewRoomEvent builds a loaded or unloaded event
func NewRoomEvent(eventType string, roomID int) events.Event {
	return events.NewGameEvent(eventType, RoomRef(roomID), nil)
}

var (
	_ core.Entity = SessionRef("")
	_ core.Entity = RoomRef(0)
)
