package grid

// Snapshot is a copy of the movement layers of a grid taken at one instant.
// The pathfinder reads snapshots so a search never observes a grid that is
// changing under it.
type Snapshot struct {
	width    int
	height   int
	walkable []bool
	occupied []bool
	sittable []bool
}

// Snapshot copies the walkable, occupied and seat layers
func (g *Grid) Snapshot() *Snapshot {
	s := &Snapshot{
		width:    g.width,
		height:   g.height,
		walkable: make([]bool, len(g.cells)),
		occupied: make([]bool, len(g.cells)),
		sittable: make([]bool, len(g.cells)),
	}

	for i := range g.cells {
		c := &g.cells[i]
		s.walkable[i] = c.Walkable()
		s.occupied[i] = c.Occupied
		s.sittable[i] = c.Sittable()
	}

	return s
}

// Width returns the number of columns
func (s *Snapshot) Width() int { return s.width }

// Height returns the number of rows
func (s *Snapshot) Height() int { return s.height }

// InBounds reports whether p lies on the grid
func (s *Snapshot) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.width && p.Y < s.height
}

// Walkable reports whether p was open and free when the snapshot was taken.
// Out of bounds points are never walkable.
func (s *Snapshot) Walkable(p Point) bool {
	return s.InBounds(p) && s.walkable[p.Y*s.width+p.X]
}

// Occupied reports whether p held an occupant
func (s *Snapshot) Occupied(p Point) bool {
	return s.InBounds(p) && s.occupied[p.Y*s.width+p.X]
}

// Sittable reports whether p was a seat or bed
func (s *Snapshot) Sittable(p Point) bool {
	return s.InBounds(p) && s.sittable[p.Y*s.width+p.X]
}
