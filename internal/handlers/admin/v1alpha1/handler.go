// Package v1alpha1 handles the admin grpc service interface
package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/orchestrators/rooms"
)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	RoomService rooms.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.RoomService == nil {
		return errors.InvalidArgument("room service is required")
	}
	return nil
}

// Handler implements AdminServiceServer on top of the room manager
type Handler struct {
	rooms rooms.Service
}

var _ AdminServiceServer = (*Handler)(nil)

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Handler{rooms: cfg.RoomService}, nil
}

// ListRooms returns every stored room with its occupancy counters
func (h *Handler) ListRooms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := h.rooms.ListRooms(ctx, &rooms.ListRoomsInput{})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	list := make([]interface{}, 0, len(out.Rooms))
	for _, sum := range out.Rooms {
		list = append(list, map[string]interface{}{
			"id":       sum.Room.ID,
			"name":     sum.Room.Name,
			"owner_id": sum.Room.OwnerID,
			"model":    sum.Room.Model,
			"loaded":   sum.Loaded,
			"users":    sum.Users,
			"peak":     sum.Peak,
		})
	}

	return toStruct(map[string]interface{}{
		"rooms":       list,
		"global_peak": out.GlobalPeak,
	})
}

// GetRoom returns the live state of a loaded room
func (h *Handler) GetRoom(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("room id must be positive"))
	}

	out, err := h.rooms.GetRoom(ctx, &rooms.GetRoomInput{RoomID: int(req.GetValue())})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	snap := out.Snapshot

	rows := make([]interface{}, len(snap.Rows))
	for i, row := range snap.Rows {
		rows[i] = row
	}
	occupants := make([]interface{}, 0, len(snap.Occupants))
	for _, o := range snap.Occupants {
		occupants = append(occupants, map[string]interface{}{
			"unit_id":    o.UnitID,
			"type":       o.Type,
			"name":       o.Name,
			"session_id": o.SessionID,
			"x":          o.X,
			"y":          o.Y,
			"h":          o.H,
			"status":     o.Status,
		})
	}

	return toStruct(map[string]interface{}{
		"id":          snap.RoomID,
		"name":        snap.Name,
		"model":       snap.Model,
		"rows":        rows,
		"occupants":   occupants,
		"users":       snap.UserCount,
		"floor_items": snap.FloorItems,
		"wall_items":  snap.WallItems,
		"peak":        out.Peak,
	})
}

// KickOccupant removes a user from a room. The request carries room_id,
// unit_id and an optional reason.
func (h *Handler) KickOccupant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	roomID := int(fields["room_id"].GetNumberValue())
	unitID := int(fields["unit_id"].GetNumberValue())

	vb := errors.NewValidationBuilder()
	errors.ValidatePositive("room_id", roomID, vb)
	errors.ValidatePositive("unit_id", unitID, vb)
	if err := vb.Build(); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.rooms.KickOccupant(ctx, &rooms.KickOccupantInput{
		RoomID: roomID,
		UnitID: unitID,
		Reason: fields["reason"].GetStringValue(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return toStruct(map[string]interface{}{"users": out.UserCount})
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrap(err, "failed to encode response"))
	}
	return s, nil
}
