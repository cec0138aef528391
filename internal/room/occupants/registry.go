package occupants

import (
	"sort"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/pkg/idgen"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/room/pathfinding"
)

// Registry holds the occupants of one room and keeps the grid's occupancy
// layer in step with their positions. Not safe for concurrent use.
type Registry struct {
	grid      *grid.Grid
	slots     *idgen.SlotAllocator
	users     map[int]*User
	bots      map[int]*Bot
	bySession map[string]*User
}

// NewRegistry returns an empty registry over g
func NewRegistry(g *grid.Grid) *Registry {
	return &Registry{
		grid:      g,
		slots:     idgen.NewSlotAllocator(),
		users:     make(map[int]*User),
		bots:      make(map[int]*Bot),
		bySession: make(map[string]*User),
	}
}

// AddUser assigns u the lowest free unit id and stands it on at
func (r *Registry) AddUser(u *User, at grid.Point) error {
	if _, exists := r.bySession[u.SessionID]; exists {
		return errors.Invariantf("session %s is already in the room", u.SessionID)
	}
	if err := r.place(&u.Unit, at); err != nil {
		return err
	}

	r.users[u.ID] = u
	r.bySession[u.SessionID] = u
	return nil
}

// AddBot assigns b the lowest free unit id and stands it on at
func (r *Registry) AddBot(b *Bot, at grid.Point) error {
	if err := r.place(&b.Unit, at); err != nil {
		return err
	}

	r.bots[b.ID] = b
	return nil
}

func (r *Registry) place(u *Unit, at grid.Point) error {
	if err := r.grid.Occupy(at); err != nil {
		return err
	}

	u.ID = r.slots.Acquire()
	u.Pos = at
	r.Settle(u)
	return nil
}

// Remove takes the occupant with unit id out of the room and frees its cell
func (r *Registry) Remove(id int) (Occupant, error) {
	o, ok := r.Get(id)
	if !ok {
		return nil, errors.NotFoundf("unit %d is not in the room", id)
	}

	if err := r.grid.Vacate(o.Base().Pos); err != nil {
		return nil, err
	}

	if u, ok := o.(*User); ok {
		delete(r.users, id)
		delete(r.bySession, u.SessionID)
	} else {
		delete(r.bots, id)
	}
	r.slots.Release(id)

	return o, nil
}

// Get returns the user or bot with unit id
func (r *Registry) Get(id int) (Occupant, bool) {
	if u, ok := r.users[id]; ok {
		return u, true
	}
	if b, ok := r.bots[id]; ok {
		return b, true
	}
	return nil, false
}

// User returns the user with unit id
func (r *Registry) User(id int) (*User, bool) {
	u, ok := r.users[id]
	return u, ok
}

// UserBySession returns the user connected through sessionID
func (r *Registry) UserBySession(sessionID string) (*User, bool) {
	u, ok := r.bySession[sessionID]
	return u, ok
}

// Users returns every user ordered by unit id
func (r *Registry) Users() []*User {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Bots returns every bot ordered by unit id
func (r *Registry) Bots() []*Bot {
	out := make([]*Bot, 0, len(r.bots))
	for _, b := range r.bots {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns users then bots, each ordered by unit id
func (r *Registry) All() []Occupant {
	out := make([]Occupant, 0, len(r.users)+len(r.bots))
	for _, u := range r.Users() {
		out = append(out, u)
	}
	for _, b := range r.Bots() {
		out = append(out, b)
	}
	return out
}

// UserCount returns the number of users. Bots do not count.
func (r *Registry) UserCount() int {
	return len(r.users)
}

// At returns the occupant standing on p
func (r *Registry) At(p grid.Point) (Occupant, bool) {
	for _, o := range r.All() {
		if o.Base().Pos == p {
			return o, true
		}
	}
	return nil, false
}

// NextStep plans u's next cell toward its goal on snap. A seat or bed goal is
// treated as walkable unless someone already sits there.
func (r *Registry) NextStep(snap *grid.Snapshot, u *Unit) (grid.Point, bool) {
	goal, ok := u.Goal()
	if !ok {
		return grid.Point{}, false
	}
	return pathfinding.NextStep(goalMap{snap: snap, goal: goal}, u.Pos, goal)
}

// Move transfers u to an adjacent or distant cell, keeping grid occupancy
// consistent. The destination is re-checked against the live grid.
func (r *Registry) Move(u *Unit, to grid.Point) error {
	if !r.grid.InBounds(to.X, to.Y) {
		return errors.Invariantf("unit %d: move to %d,%d outside the grid", u.ID, to.X, to.Y)
	}
	if err := r.grid.MoveOccupant(u.Pos, to); err != nil {
		return err
	}
	u.Pos = to
	return nil
}

// Settle applies the cell under u to its height and statuses. On a seat or
// bed the unit stays at floor height, faces the item's rotation and gets a
// sit or lay status carrying the item's height. Anywhere else it stands at
// the cell's stand height.
func (r *Registry) Settle(u *Unit) {
	c := r.grid.At(u.Pos)

	u.Statuses.Remove(StatusSit)
	u.Statuses.Remove(StatusLay)

	switch c.State {
	case grid.StateSeat:
		u.Face(c.ItemRotation)
		u.H = float64(c.FloorHeight)
		u.Statuses.Set(StatusSit, packet.FormatHeight(c.ItemHeight))
	case grid.StateBed:
		u.Face(c.ItemRotation)
		u.H = float64(c.FloorHeight)
		u.Statuses.Set(StatusLay, packet.FormatHeight(c.ItemHeight)+" null")
	default:
		u.H = r.grid.StandHeight(u.Pos)
	}
}

// goalMap opens the goal cell when it is an unoccupied seat or bed
type goalMap struct {
	snap *grid.Snapshot
	goal grid.Point
}

func (m goalMap) Walkable(p grid.Point) bool {
	if m.snap.Walkable(p) {
		return true
	}
	return p == m.goal && m.snap.Sittable(p) && !m.snap.Occupied(p)
}
