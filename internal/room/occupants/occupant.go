// Package occupants tracks the users and bots standing in one room: their
// position, rotation, goal and statuses, and the cell each one occupies on
// the grid.
package occupants

import (
	"strconv"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/room/grid"
)

// Entity types reported through core.Entity
const (
	EntityTypeUser = "room_user"
	EntityTypeBot  = "room_bot"
)

// Occupant is anything that stands on the grid
type Occupant interface {
	core.Entity
	Base() *Unit
}

// Unit is the movement state shared by users and bots. A unit's goal is
// written by whoever commands it; position, rotation and occupancy are only
// written by the room loop.
type Unit struct {
	ID           int
	Name         string
	Figure       string
	Motto        string
	Pos          grid.Point
	H            float64
	BodyRotation int
	HeadRotation int
	Statuses     Statuses

	goal    grid.Point
	hasGoal bool
}

// Base returns the unit itself
func (u *Unit) Base() *Unit { return u }

// GetID returns the room-scoped unit id
func (u *Unit) GetID() string { return strconv.Itoa(u.ID) }

// SetGoal asks the unit to walk to p
func (u *Unit) SetGoal(p grid.Point) {
	u.goal = p
	u.hasGoal = true
}

// ClearGoal stops the unit's walk
func (u *Unit) ClearGoal() {
	u.goal = grid.Point{}
	u.hasGoal = false
}

// Goal returns the walk target, if any
func (u *Unit) Goal() (grid.Point, bool) {
	return u.goal, u.hasGoal
}

// Face turns head and body to rot
func (u *Unit) Face(rot int) {
	u.BodyRotation = rot
	u.HeadRotation = rot
}

// AppendStatus writes the unit's status record:
// "<id> <x>,<y>,<h>,<head>,<body>/<statuses>" and a record separator.
func (u *Unit) AppendStatus(w *packet.Writer) {
	u.AppendStatusFrom(w, u.Pos, u.H)
}

// AppendStatusFrom writes the status record with the unit drawn at pos and
// h instead of its current cell. A walking unit is reported at the cell it
// is leaving, with its destination in the mv status.
func (u *Unit) AppendStatusFrom(w *packet.Writer, pos grid.Point, h float64) {
	w.AppendNumber(u.ID).
		AppendByte(' ').
		AppendCoordinates(pos.X, pos.Y, h).
		AppendByte(',').
		AppendNumber(u.HeadRotation).
		AppendByte(',').
		AppendNumber(u.BodyRotation).
		Append(u.Statuses.String()).
		Record()
}

// AppendDetails writes the unit's appearance record as sent in the users
// list.
func (u *Unit) AppendDetails(w *packet.Writer) {
	w.Append("i:").AppendNumber(u.ID).Record().
		Append("n:").Append(u.Name).Record().
		Append("f:").Append(u.Figure).Record().
		Append("l:").AppendNumber(u.Pos.X).AppendByte(' ').AppendNumber(u.Pos.Y).AppendByte(' ').AppendHeight(u.H).Record().
		AppendIf(u.Motto != "", "c:"+u.Motto).AppendIf(u.Motto != "", "\r")
}

// User is a connected player in the room
type User struct {
	Unit
	SessionID string
	UserID    int
	HasRights bool
}

// GetType returns EntityTypeUser
func (u *User) GetType() string { return EntityTypeUser }

// Bot is a server-driven occupant
type Bot struct {
	Unit
	BotID  int
	Patrol []grid.Point
}

// GetType returns EntityTypeBot
func (b *Bot) GetType() string { return EntityTypeBot }

var (
	_ Occupant = (*User)(nil)
	_ Occupant = (*Bot)(nil)
)
