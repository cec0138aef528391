// Package grid holds the spatial truth of one room: a fixed width by height
// array of cells carrying floor height, furniture stacks, derived movement
// state and occupancy.
//
// Coordinates outside the grid are programming errors. Cell panics on them;
// callers that deal with client input check InBounds first.
package grid

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
)

// Grid is the cell array of one room. It is not safe for concurrent use;
// the owning room serializes every access.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// Parse builds a grid from a heightmap: one record per row separated by
// carriage returns, one character per cell. 'x' or 'X' is a wall, a digit is
// open floor of that height. The record after the last carriage return is
// empty and ignored.
func Parse(heightmap string) (*Grid, error) {
	records := strings.Split(heightmap, "\r")
	for i := range records {
		records[i] = strings.Trim(records[i], "\n")
	}
	if n := len(records); n > 0 && records[n-1] == "" {
		records = records[:n-1]
	}

	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errors.InvalidArgument("heightmap is empty")
	}

	g := &Grid{
		width:  len(records[0]),
		height: len(records),
	}
	g.cells = make([]Cell, g.width*g.height)

	for y, row := range records {
		if len(row) != g.width {
			return nil, errors.InvalidArgumentf("heightmap row %d has %d cells, want %d", y, len(row), g.width)
		}

		for x := 0; x < len(row); x++ {
			c := &g.cells[y*g.width+x]
			switch ch := row[x]; {
			case ch == 'x' || ch == 'X':
				c.wall = true
				c.State = StateBlocked
			case ch >= '0' && ch <= '9':
				c.FloorHeight = ch - '0'
				c.State = StateOpen
			default:
				return nil, errors.InvalidArgumentf("heightmap cell %d,%d has invalid character %q", x, y, ch)
			}
		}
	}

	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether x,y lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Cell returns the cell at x,y. It panics when x,y is out of bounds.
func (g *Grid) Cell(x, y int) *Cell {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: cell %d,%d outside %dx%d grid", x, y, g.width, g.height))
	}
	return &g.cells[y*g.width+x]
}

// At is Cell for a Point
func (g *Grid) At(p Point) *Cell {
	return g.Cell(p.X, p.Y)
}

// SetTrigger attaches t to the cell it names
func (g *Grid) SetTrigger(t *entities.Trigger) error {
	if !g.InBounds(t.X, t.Y) {
		return errors.InvalidArgumentf("trigger %s at %d,%d is outside the grid", t.Object, t.X, t.Y)
	}
	g.Cell(t.X, t.Y).Trigger = t
	return nil
}

// Occupy marks p as holding an occupant
func (g *Grid) Occupy(p Point) error {
	if !g.InBounds(p.X, p.Y) {
		return errors.Invariantf("occupy %d,%d: outside the grid", p.X, p.Y)
	}
	c := g.At(p)
	if c.Occupied {
		return errors.Invariantf("occupy %d,%d: cell already occupied", p.X, p.Y)
	}
	c.Occupied = true
	return nil
}

// Vacate clears the occupant mark at p
func (g *Grid) Vacate(p Point) error {
	if !g.InBounds(p.X, p.Y) {
		return errors.Invariantf("vacate %d,%d: outside the grid", p.X, p.Y)
	}
	c := g.At(p)
	if !c.Occupied {
		return errors.Invariantf("vacate %d,%d: cell is not occupied", p.X, p.Y)
	}
	c.Occupied = false
	return nil
}

// MoveOccupant transfers the occupant mark from one cell to another in a
// single step. Nothing changes when either end is invalid.
func (g *Grid) MoveOccupant(from, to Point) error {
	if !g.InBounds(from.X, from.Y) || !g.InBounds(to.X, to.Y) {
		return errors.Invariantf("move %v -> %v: outside the grid", from, to)
	}
	if from == to {
		return nil
	}

	src, dst := g.At(from), g.At(to)
	if !src.Occupied {
		return errors.Invariantf("move %v -> %v: source is not occupied", from, to)
	}
	if dst.Occupied {
		return errors.Invariantf("move %v -> %v: destination already occupied", from, to)
	}

	src.Occupied = false
	dst.Occupied = true
	return nil
}

// StandHeight is the height an occupant standing on p is drawn at. Rugs
// lift occupants to the rug's surface; everything else uses the floor.
func (g *Grid) StandHeight(p Point) float64 {
	c := g.At(p)
	if c.State == StateRug {
		return c.ItemHeight
	}
	return float64(c.FloorHeight)
}

// NearestFree returns the closest walkable, unoccupied cell to p in
// breadth-first order, p itself included.
func (g *Grid) NearestFree(p Point) (Point, bool) {
	if !g.InBounds(p.X, p.Y) {
		return Point{}, false
	}

	seen := make([]bool, len(g.cells))
	queue := []Point{p}
	seen[p.Y*g.width+p.X] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if g.At(cur).Walkable() {
			return cur, true
		}

		for _, d := range neighbours {
			next := Point{X: cur.X + d.X, Y: cur.Y + d.Y}
			if !g.InBounds(next.X, next.Y) || seen[next.Y*g.width+next.X] {
				continue
			}
			seen[next.Y*g.width+next.X] = true
			queue = append(queue, next)
		}
	}

	return Point{}, false
}

var neighbours = []Point{
	{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0},
	{X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}
