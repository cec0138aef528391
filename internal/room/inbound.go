package room

import (
	"context"
	"strings"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/protocol/vl64"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
)

// HandleInbound applies one client packet sent by the user on sessionID.
// Malformed packets and refused actions never fail the call: refusals are
// answered with a rejection packet, anything else is logged.
func (r *Room) HandleInbound(ctx context.Context, sessionID, payload string) error {
	id, body, ok := packet.Split(payload)
	if !ok {
		return nil
	}

	if id == packet.InPlaceItem {
		return r.handlePlace(ctx, sessionID, body)
	}

	return r.Do(ctx, func() error {
		u, ok := r.registry.UserBySession(sessionID)
		if !ok {
			return errors.NotFoundf("session %s is not in room %d", sessionID, r.id)
		}
		r.report(u, r.dispatch(u, id, body))
		return nil
	})
}

func (r *Room) dispatch(u *occupants.User, id int, body string) error {
	rd := packet.NewReader(body)

	switch id {
	case packet.InWalk:
		x := rd.PopB64(vl64.HeaderLength)
		y := rd.PopB64(vl64.HeaderLength)
		if r.grid.InBounds(x, y) {
			u.SetGoal(grid.Point{X: x, Y: y})
		}
		return nil

	case packet.InLeaveRoom:
		r.removeUser(u)
		return nil

	case packet.InRequestObjects:
		r.sendSnapshot(u)
		return nil

	case packet.InPickupItem:
		if !u.HasRights {
			return errors.PermissionDenied("you cannot pick up items here")
		}
		itemID, _ := rd.PopInt(' ')
		if _, ok := r.floor.Get(itemID); ok {
			return r.floor.Remove(r.ctx, itemID, true)
		}
		return r.wall.Remove(r.ctx, itemID, true)

	case packet.InMoveItem:
		if !u.HasRights {
			return errors.PermissionDenied("you cannot move items here")
		}
		itemID, _ := rd.PopInt(' ')
		x, _ := rd.PopInt(' ')
		y, _ := rd.PopInt(' ')
		rot, _ := rd.PopInt(' ')
		return r.floor.Relocate(r.ctx, itemID, x, y, rot)

	case packet.InToggleFloor:
		if !u.HasRights {
			return errors.PermissionDenied("you cannot use items here")
		}
		itemID, _ := rd.PopInt(packet.FieldSeparator)
		return r.floor.ToggleStatus(r.ctx, itemID, rd.PopString())

	case packet.InToggleWall:
		itemID, _ := rd.PopInt(packet.FieldSeparator)
		return r.wall.ToggleStatus(r.ctx, itemID, rd.PopString())
	}

	r.logger.Debug("unhandled packet", "packet_id", id, "session_id", u.SessionID)
	return nil
}

// handlePlace resolves the inventory item off the room goroutine, then
// places it on the floor or the wall. Floor bodies are "<id> <x> <y> <rot>",
// wall bodies "<id> <wall position>".
func (r *Room) handlePlace(ctx context.Context, sessionID, body string) error {
	rd := packet.NewReader(body)
	itemID, ok := rd.PopInt(' ')
	if !ok {
		return nil
	}
	rest := rd.Remaining()

	var ownerID int
	var allowed bool
	err := r.Do(ctx, func() error {
		u, ok := r.registry.UserBySession(sessionID)
		if !ok {
			return errors.NotFoundf("session %s is not in room %d", sessionID, r.id)
		}
		ownerID = u.UserID
		allowed = u.HasRights
		if !allowed {
			r.report(u, errors.PermissionDenied("you cannot place items here"))
		}
		return nil
	})
	if err != nil || !allowed || r.inventory == nil {
		return err
	}

	out, lookupErr := r.inventory.GetInventoryItem(ctx, itemsrepo.GetInventoryItemInput{OwnerID: ownerID, ItemID: itemID})

	return r.Do(ctx, func() error {
		u, ok := r.registry.UserBySession(sessionID)
		if !ok {
			return errors.NotFoundf("session %s is not in room %d", sessionID, r.id)
		}
		if lookupErr != nil {
			r.report(u, lookupErr)
			return nil
		}
		r.report(u, r.placeFromInventory(out.Item, rest))
		return nil
	})
}

func (r *Room) placeFromInventory(row *entities.ItemRow, rest string) error {
	if strings.HasPrefix(rest, ":") {
		return r.wall.Add(r.ctx, &entities.WallItem{
			ID:           row.ID,
			TemplateID:   row.TemplateID,
			OwnerID:      row.OwnerID,
			WallPosition: rest,
			Var:          row.Var,
		})
	}

	rd := packet.NewReader(rest)
	x, _ := rd.PopInt(' ')
	y, _ := rd.PopInt(' ')
	rot, _ := rd.PopInt(' ')
	return r.floor.Place(r.ctx, &entities.FloorItem{
		ID:         row.ID,
		TemplateID: row.TemplateID,
		OwnerID:    row.OwnerID,
		X:          x,
		Y:          y,
		Rotation:   rot,
		Var:        row.Var,
	})
}

// report answers refused actions with a rejection packet and logs the rest
func (r *Room) report(u *occupants.User, err error) {
	switch {
	case err == nil:
	case errors.IsRejected(err), errors.IsNotFound(err), errors.IsPermissionDenied(err):
		r.send(u.SessionID, rejectionPacket(err))
	case errors.IsInvariant(err):
		r.logger.Error("invariant violation", "session_id", u.SessionID, "error", err)
	default:
		r.logger.Warn("request failed", "session_id", u.SessionID, "error", err)
	}
}
