package room

import (
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
)

func statusPacket(list ...occupants.Occupant) string {
	w := packet.NewWriter(packet.OutStatus)
	for _, o := range list {
		o.Base().AppendStatus(w)
	}
	return w.Build()
}

func usersPacket(list ...occupants.Occupant) string {
	w := packet.NewWriter(packet.OutUsers)
	for _, o := range list {
		o.Base().AppendDetails(w)
	}
	return w.Build()
}

func logoutPacket(unitID int) string {
	return packet.NewWriter(packet.OutLogout).AppendNumber(unitID).Build()
}

func forwardPacket(roomID int) string {
	return packet.NewWriter(packet.OutForward).AppendInt(roomID).Build()
}

func rejectionPacket(err error) string {
	return packet.NewWriter(packet.OutRejection).Append(errors.GetMessage(err)).Build()
}

func (r *Room) readyPacket() string {
	return packet.NewWriter(packet.OutRoomReady).
		Append(r.info.Model).
		AppendByte(' ').
		AppendNumber(r.id).
		Build()
}

func (r *Room) heightmapPacket() string {
	return packet.NewWriter(packet.OutHeightmap).Append(r.grid.Heightmap()).Build()
}

func (r *Room) castPacket(emitter string, effect int) string {
	return packet.NewWriter(packet.OutSpecialCast).
		Append(emitter).
		Append(" setfx ").
		AppendNumber(effect).
		Build()
}
