package rooms

import (
	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/room"
)

// EnterRoomInput describes a user entering a room, loading it when needed
type EnterRoomInput struct {
	RoomID    int
	SessionID string
	UserID    int
	Name      string
	Figure    string
	Motto     string
	HasRights bool
}

// EnterRoomOutput contains the unit and the room's occupancy after entry
type EnterRoomOutput struct {
	UnitID    int
	UserCount int
}

// LeaveRoomInput identifies the session leaving a room
type LeaveRoomInput struct {
	RoomID    int
	SessionID string
}

// LeaveRoomOutput contains the occupancy left behind
type LeaveRoomOutput struct {
	UserCount int
}

// HandleInboundInput is one client packet for a loaded room
type HandleInboundInput struct {
	RoomID    int
	SessionID string
	Payload   string
}

// HandleInboundOutput is empty
type HandleInboundOutput struct{}

// ListRoomsInput is empty
type ListRoomsInput struct{}

// ListRoomsOutput contains every stored room with its live counters
type ListRoomsOutput struct {
	Rooms      []*RoomSummary
	GlobalPeak int
}

// RoomSummary is one room's description and occupancy
type RoomSummary struct {
	Room   *entities.Room
	Loaded bool
	Users  int
	Peak   int
}

// GetRoomInput identifies the room to inspect
type GetRoomInput struct {
	RoomID int
}

// GetRoomOutput contains a loaded room's live state
type GetRoomOutput struct {
	Snapshot *room.Snapshot
	Peak     int
}

// KickOccupantInput identifies the user to remove
type KickOccupantInput struct {
	RoomID int
	UnitID int
	Reason string
}

// KickOccupantOutput contains the occupancy left behind
type KickOccupantOutput struct {
	UserCount int
}
