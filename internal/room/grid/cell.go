package grid

import "github.com/KirkDiggler/room-server/internal/entities"

// State is what a cell means for movement
type State int

// Cell states
const (
	StateOpen State = iota
	StateBlocked
	StateSeat
	StateBed
	StateRug
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateBlocked:
		return "blocked"
	case StateSeat:
		return "seat"
	case StateBed:
		return "bed"
	case StateRug:
		return "rug"
	default:
		return "unknown"
	}
}

// Point is a cell coordinate
type Point struct {
	X int
	Y int
}

// Cell is the state of one grid position.
//
// State, ItemHeight and ItemRotation are derived from the item that owns the
// cell: the top of Stack, or Blocker when a non-stacking item sits directly
// on the floor. Only the item placers write them.
type Cell struct {
	State        State
	FloorHeight  byte
	ItemHeight   float64
	ItemRotation int
	Occupied     bool
	Stack        FurnitureStack
	Blocker      int
	Trigger      *entities.Trigger

	wall bool
}

// Wall reports whether the static map blocks this cell
func (c *Cell) Wall() bool {
	return c.wall
}

// Owner returns the id of the item that drives the cell's state
func (c *Cell) Owner() (int, bool) {
	if id, ok := c.Stack.Top(); ok {
		return id, true
	}
	if c.Blocker != 0 {
		return c.Blocker, true
	}
	return 0, false
}

// HasItems reports whether any floor item covers the cell
func (c *Cell) HasItems() bool {
	return c.Stack.Count() > 0 || c.Blocker != 0
}

// Reset clears everything an item contributed to the cell
func (c *Cell) Reset() {
	c.ItemHeight = 0
	c.ItemRotation = 0
	if c.wall {
		c.State = StateBlocked
	} else {
		c.State = StateOpen
	}
}

// Walkable reports whether an occupant may pass through the cell
func (c *Cell) Walkable() bool {
	return !c.Occupied && (c.State == StateOpen || c.State == StateRug)
}

// Sittable reports whether the cell is a seat or a bed
func (c *Cell) Sittable() bool {
	return c.State == StateSeat || c.State == StateBed
}
