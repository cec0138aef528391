package room

import (
	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
	"github.com/KirkDiggler/room-server/internal/room/pathfinding"
)

// fireTrigger runs the behavior of the cell u's walk ended on
func (r *Room) fireTrigger(u *occupants.User) {
	t := r.grid.At(u.Pos).Trigger
	if t == nil {
		return
	}

	r.logger.Debug("trigger", "object", t.Object, "unit_id", u.ID, "x", t.X, "y", t.Y)

	switch t.Object {
	case entities.TriggerDoor:
		r.forward(u, t.RoomID)

	case entities.TriggerTeleport:
		if t.RoomID != 0 && t.RoomID != r.id {
			r.forward(u, t.RoomID)
			return
		}
		r.teleport(u, grid.Point{X: t.GoalX, Y: t.GoalY})

	case entities.TriggerStep:
		r.forceStep(&u.Unit, grid.Point{X: u.Pos.X + t.StepX, Y: u.Pos.Y + t.StepY})
		r.rearm(&u.Unit, t)

	case entities.TriggerPool:
		r.pool(u, t)

	default:
		r.logger.Warn("unknown trigger", "object", t.Object)
	}
}

// forward detaches u from the room, pointing its client at roomID when set
func (r *Room) forward(u *occupants.User, roomID int) {
	if roomID != 0 {
		r.send(u.SessionID, forwardPacket(roomID))
	}
	r.removeUser(u)
}

func (r *Room) teleport(u *occupants.User, dest grid.Point) {
	if !r.grid.InBounds(dest.X, dest.Y) {
		r.logger.Warn("teleport target outside the grid", "x", dest.X, "y", dest.Y)
		return
	}
	dest, ok := r.grid.NearestFree(dest)
	if !ok {
		return
	}
	if err := r.registry.Move(&u.Unit, dest); err != nil {
		r.logger.Error("teleport", "unit_id", u.ID, "error", err)
		return
	}
	r.registry.Settle(&u.Unit)
	r.broadcast(statusPacket(u))
}

// pool moves u into or out of the water. Entering costs a ticket when a
// wallet store is configured; the spend runs off the room goroutine.
func (r *Room) pool(u *occupants.User, t *entities.Trigger) {
	if !t.Flag {
		u.Statuses.Remove(occupants.StatusSwim)
		r.forceStep(&u.Unit, grid.Point{X: u.Pos.X + t.StepX, Y: u.Pos.Y + t.StepY})
		r.rearm(&u.Unit, t)
		return
	}

	if u.Statuses.Has(occupants.StatusSwim) {
		return
	}
	if r.wallets == nil {
		r.enterWater(u, t)
		return
	}

	// hold the user on the edge until the spend resolves
	r.forced[&u.Unit] = true
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, err := r.wallets.SpendTicket(r.ctx, wallets.SpendTicketInput{UserID: u.UserID})
		r.postBack(func() {
			delete(r.forced, &u.Unit)
			if cur, ok := r.registry.User(u.ID); !ok || cur != u {
				return
			}
			if err != nil {
				if !errors.IsFailedPrecondition(err) {
					r.logger.Warn("ticket spend failed", "user_id", u.UserID, "error", err)
				}
				r.send(u.SessionID, rejectionPacket(errors.Rejectedf("no pool tickets left")))
				return
			}
			r.enterWater(u, t)
		})
	}()
}

func (r *Room) enterWater(u *occupants.User, t *entities.Trigger) {
	u.Statuses.Set(occupants.StatusSwim, "")
	r.forceStep(&u.Unit, grid.Point{X: u.Pos.X + t.StepX, Y: u.Pos.Y + t.StepY})
	r.rearm(&u.Unit, t)
}

func (r *Room) rearm(u *occupants.Unit, t *entities.Trigger) {
	if t.HasGoal {
		u.SetGoal(grid.Point{X: t.GoalX, Y: t.GoalY})
	}
}

// forceStep pushes u one cell out of band. The first status goes out at
// once; a second, settled one follows after the settle delay. Both run on
// the room goroutine.
func (r *Room) forceStep(u *occupants.Unit, to grid.Point) {
	if !r.grid.InBounds(to.X, to.Y) || !r.grid.At(to).Walkable() {
		r.logger.Debug("forced step blocked", "unit_id", u.ID, "x", to.X, "y", to.Y)
		return
	}

	o, ok := r.registry.Get(u.ID)
	if !ok || o.Base() != u {
		return
	}

	from, fromH := u.Pos, u.H
	if err := r.registry.Move(u, to); err != nil {
		r.logger.Error("forced step", "unit_id", u.ID, "error", err)
		return
	}
	u.Face(pathfinding.Rotation(from, to))
	r.registry.Settle(u)
	u.Statuses.Set(occupants.StatusMove, moveValue(to, u.H))

	w := packet.NewWriter(packet.OutStatus)
	u.AppendStatusFrom(w, from, fromH)
	r.broadcast(w.Build())

	r.forced[u] = true

	var timer clock.Timer
	timer = r.clock.AfterFunc(r.settleDelay, func() {
		r.Post(func() {
			delete(r.timers, timer)
			delete(r.forced, u)

			cur, ok := r.registry.Get(u.ID)
			if !ok || cur.Base() != u {
				return
			}
			u.Statuses.Remove(occupants.StatusMove)
			r.registry.Settle(u)
			r.broadcast(statusPacket(cur))
		})
	})
	r.timers[timer] = struct{}{}
}
