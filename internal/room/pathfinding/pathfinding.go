// Package pathfinding computes occupant movement over a grid snapshot.
//
// Searches are A* over eight directions with cardinal cost 10 and diagonal
// cost 14. A diagonal step is allowed unless both orthogonal cells it cuts
// past are unwalkable. Exact path shape is not part of the client contract;
// only that each step lands on a walkable cell.
package pathfinding

import (
	"container/heap"

	"github.com/KirkDiggler/room-server/internal/room/grid"
)

// Map answers walkability for a search. grid.Snapshot satisfies it; callers
// wrap it to open targets such as seats.
type Map interface {
	Walkable(p grid.Point) bool
}

// Rotations, clockwise from north
const (
	RotN  = 0
	RotNE = 1
	RotE  = 2
	RotSE = 3
	RotS  = 4
	RotSW = 5
	RotW  = 6
	RotNW = 7
)

const (
	costCardinal = 10
	costDiagonal = 14
)

// directions is indexed by rotation
var directions = [8]grid.Point{
	{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1},
}

// NextStep returns the first cell on a shortest path from from to to. It
// reports false when from equals to, when to is not walkable, or when no
// path exists.
func NextStep(m Map, from, to grid.Point) (grid.Point, bool) {
	path := Path(m, from, to)
	if len(path) == 0 {
		return grid.Point{}, false
	}
	return path[0], true
}

// Path returns the cells from the step after from up to and including to.
// It is empty whenever NextStep would report false.
func Path(m Map, from, to grid.Point) []grid.Point {
	if from == to || !m.Walkable(to) {
		return nil
	}

	open := &nodeHeap{}
	cost := map[grid.Point]int{from: 0}
	parent := map[grid.Point]grid.Point{}
	closed := map[grid.Point]bool{}
	seq := 0

	heap.Push(open, &node{p: from, g: 0, f: heuristic(from, to)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.p] {
			continue
		}
		if cur.p == to {
			return unwind(parent, from, to)
		}
		closed[cur.p] = true

		for rot, d := range directions {
			next := grid.Point{X: cur.p.X + d.X, Y: cur.p.Y + d.Y}
			if closed[next] || !m.Walkable(next) {
				continue
			}

			step := costCardinal
			if rot%2 == 1 {
				if !canCutCorner(m, cur.p, d) {
					continue
				}
				step = costDiagonal
			}

			g := cur.g + step
			if known, ok := cost[next]; ok && known <= g {
				continue
			}

			cost[next] = g
			parent[next] = cur.p
			seq++
			heap.Push(open, &node{p: next, g: g, f: g + heuristic(next, to), seq: seq})
		}
	}

	return nil
}

// Rotation returns the direction of travel from one cell to an adjacent or
// distant one. Equal points face north.
func Rotation(from, to grid.Point) int {
	dx := sign(to.X - from.X)
	dy := sign(to.Y - from.Y)

	for rot, d := range directions {
		if d.X == dx && d.Y == dy {
			return rot
		}
	}
	return RotN
}

func canCutCorner(m Map, from, d grid.Point) bool {
	return m.Walkable(grid.Point{X: from.X + d.X, Y: from.Y}) ||
		m.Walkable(grid.Point{X: from.X, Y: from.Y + d.Y})
}

// heuristic is the octile distance, admissible for the 10/14 costs
func heuristic(a, b grid.Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx < dy {
		dx, dy = dy, dx
	}
	return costCardinal*(dx-dy) + costDiagonal*dy
}

func unwind(parent map[grid.Point]grid.Point, from, to grid.Point) []grid.Point {
	var rev []grid.Point
	for p := to; p != from; p = parent[p] {
		rev = append(rev, p)
	}

	path := make([]grid.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

type node struct {
	p   grid.Point
	g   int
	f   int
	seq int
}

// nodeHeap orders by f, then by lower remaining estimate, then by insertion
// so equal-cost searches are deterministic.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if hi, hj := h[i].f-h[i].g, h[j].f-h[j].g; hi != hj {
		return hi < hj
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
