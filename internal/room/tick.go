package room

import (
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
	"github.com/KirkDiggler/room-server/internal/room/pathfinding"
)

// tick advances every walking occupant by one cell, users first and bots
// after, and broadcasts all the resulting status records as one packet.
func (r *Room) tick() {
	r.wanderBots()

	snap := r.grid.Snapshot()
	w := packet.NewWriter(packet.OutStatus)
	records := 0

	var arrived []*occupants.User
	for _, o := range r.registry.All() {
		wrote, done := r.step(snap, o.Base(), w)
		if wrote {
			records++
		}
		if u, ok := o.(*occupants.User); ok && done {
			arrived = append(arrived, u)
		}
	}

	if records > 0 {
		r.broadcast(w.Build())
	}

	for _, u := range arrived {
		if r.stopping {
			return
		}
		r.fireTrigger(u)
	}
}

// step moves u one cell toward its goal. It reports whether a status record
// was written and whether u's walk ended this tick.
func (r *Room) step(snap *grid.Snapshot, u *occupants.Unit, w *packet.Writer) (bool, bool) {
	if r.forced[u] {
		return false, false
	}

	goal, hasGoal := u.Goal()
	moving := u.Statuses.Has(occupants.StatusMove)
	if !hasGoal && !moving {
		return false, false
	}

	if hasGoal {
		if next, ok := r.registry.NextStep(snap, u); ok {
			if !r.canEnter(next, goal) {
				// taken earlier this tick; try again on the next one
				return false, false
			}
			return r.advance(u, next, w), false
		}
	}

	u.Statuses.Remove(occupants.StatusMove)
	u.ClearGoal()
	r.registry.Settle(u)
	u.AppendStatus(w)

	return true, moving || (hasGoal && u.Pos == goal)
}

// canEnter re-checks the live grid, which may have changed since the
// snapshot was taken
func (r *Room) canEnter(p, goal grid.Point) bool {
	c := r.grid.At(p)
	if c.Walkable() {
		return true
	}
	return p == goal && c.Sittable() && !c.Occupied
}

func (r *Room) advance(u *occupants.Unit, next grid.Point, w *packet.Writer) bool {
	from, fromH := u.Pos, u.H
	if err := r.registry.Move(u, next); err != nil {
		r.logger.Error("step rejected", "unit_id", u.ID, "error", err)
		u.ClearGoal()
		return false
	}

	u.Face(pathfinding.Rotation(from, next))
	r.registry.Settle(u)
	u.Statuses.Set(occupants.StatusMove, moveValue(next, u.H))
	u.AppendStatusFrom(w, from, fromH)
	return true
}

func moveValue(p grid.Point, h float64) string {
	return packet.NewRawWriter().AppendCoordinates(p.X, p.Y, h).Build()
}

// wanderBots gives idle bots with a patrol a new goal on a lucky roll
func (r *Room) wanderBots() {
	if r.wanderChance <= 0 {
		return
	}

	for _, b := range r.registry.Bots() {
		if len(b.Patrol) == 0 || b.Statuses.Has(occupants.StatusMove) {
			continue
		}
		if _, walking := b.Goal(); walking {
			continue
		}

		roll, err := r.roller.Roll(r.wanderChance)
		if err != nil || roll != 1 {
			continue
		}
		pick, err := r.roller.Roll(len(b.Patrol))
		if err != nil || pick < 1 || pick > len(b.Patrol) {
			continue
		}
		b.SetGoal(b.Patrol[pick-1])
	}
}
