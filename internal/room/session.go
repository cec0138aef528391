package room

import (
	"context"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
)

// EnterInput describes a user walking into the room
type EnterInput struct {
	SessionID string
	UserID    int
	Name      string
	Figure    string
	Motto     string
	HasRights bool
}

// EnterOutput contains the unit id the user was given
type EnterOutput struct {
	UnitID    int
	UserCount int
}

// LeaveOutput reports how many users are left
type LeaveOutput struct {
	UnitID    int
	UserCount int
}

// Enter places a user on the free cell nearest the door, announces them to
// the room and sends them the full room snapshot
func (r *Room) Enter(ctx context.Context, input *EnterInput) (*EnterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("SessionID", input.SessionID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	var out *EnterOutput
	err := r.Do(ctx, func() error {
		if _, exists := r.registry.UserBySession(input.SessionID); exists {
			return errors.Rejectedf("session %s is already in room %d", input.SessionID, r.id)
		}

		door := grid.Point{X: r.info.Door.X, Y: r.info.Door.Y}
		spawn, ok := r.grid.NearestFree(door)
		if !ok {
			return errors.ResourceExhaustedf("room %d has no free cell", r.id)
		}

		u := &occupants.User{
			Unit: occupants.Unit{
				Name:   input.Name,
				Figure: input.Figure,
				Motto:  input.Motto,
			},
			SessionID: input.SessionID,
			UserID:    input.UserID,
			HasRights: input.HasRights || (input.UserID != 0 && input.UserID == r.info.OwnerID),
		}
		if err := r.registry.AddUser(u, spawn); err != nil {
			return err
		}

		if c := r.grid.At(spawn); !c.Sittable() {
			u.Face(r.info.Door.Rotation)
			if spawn == door && c.State == grid.StateOpen && r.info.Door.H > u.H {
				u.H = r.info.Door.H
			}
		}
		if u.HasRights {
			u.Statuses.Set(occupants.StatusFlatCtrl, "")
		}

		// everyone already here learns about the newcomer before the
		// newcomer becomes a broadcast member
		r.broadcast(usersPacket(u))
		r.broadcast(statusPacket(u))
		r.publish(NewOccupantEvent(EventOccupantEntered, u.SessionID, r.id))
		r.sendSnapshot(u)

		r.logger.Info("user entered",
			"session_id", u.SessionID,
			"unit_id", u.ID,
			"x", spawn.X,
			"y", spawn.Y,
		)

		out = &EnterOutput{UnitID: u.ID, UserCount: r.registry.UserCount()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Leave removes the user connected through sessionID. The room stops after
// its last user leaves.
func (r *Room) Leave(ctx context.Context, sessionID string) (*LeaveOutput, error) {
	var out *LeaveOutput
	err := r.Do(ctx, func() error {
		u, ok := r.registry.UserBySession(sessionID)
		if !ok {
			return errors.NotFoundf("session %s is not in room %d", sessionID, r.id)
		}
		r.removeUser(u)
		out = &LeaveOutput{UnitID: u.ID, UserCount: r.registry.UserCount()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Kick removes a user by unit id and tells their client why
func (r *Room) Kick(ctx context.Context, unitID int, reason string) (*LeaveOutput, error) {
	var out *LeaveOutput
	err := r.Do(ctx, func() error {
		u, ok := r.registry.User(unitID)
		if !ok {
			return errors.NotFoundf("unit %d is not a user in room %d", unitID, r.id)
		}
		if reason == "" {
			reason = "kicked"
		}
		r.send(u.SessionID, packet.NewWriter(packet.OutRejection).Append(reason).Build())
		r.removeUser(u)
		out = &LeaveOutput{UnitID: u.ID, UserCount: r.registry.UserCount()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Room) removeUser(u *occupants.User) {
	if _, err := r.registry.Remove(u.ID); err != nil {
		r.logger.Error("remove user", "unit_id", u.ID, "error", err)
		return
	}
	delete(r.forced, &u.Unit)

	r.publish(NewOccupantEvent(EventOccupantLeft, u.SessionID, r.id))
	r.broadcast(logoutPacket(u.ID))

	r.logger.Info("user left", "session_id", u.SessionID, "unit_id", u.ID)
	r.idleCheck()
}

// sendSnapshot gives one user everything needed to draw the room
func (r *Room) sendSnapshot(u *occupants.User) {
	all := r.registry.All()

	r.send(u.SessionID, r.readyPacket())
	r.send(u.SessionID, r.heightmapPacket())
	r.send(u.SessionID, r.floor.FloorItemsPacket())
	r.send(u.SessionID, r.wall.WallItemsPacket())
	r.send(u.SessionID, usersPacket(all...))
	r.send(u.SessionID, statusPacket(all...))
}
