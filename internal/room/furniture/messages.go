package furniture

import (
	"strconv"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
)

// AppendFloorItem writes one floor item record:
// id, sprite, x, y, size x, size y, rotation, height, colour, variable.
func AppendFloorItem(w *packet.Writer, item *entities.FloorItem, tmpl *entities.Template) {
	sizeX, sizeY := Footprint(tmpl, item.Rotation)
	w.StartItem(item.ID, tmpl.Sprite).
		AppendInt(item.X).
		AppendInt(item.Y).
		AppendInt(sizeX).
		AppendInt(sizeY).
		AppendInt(item.Rotation).
		AppendField(packet.FormatHeight(item.H)).
		AppendField(tmpl.Colour).
		AppendField(item.Var)
}

// AppendWallItem writes one wall item record, tab separated and terminated
// by the record separator
func AppendWallItem(w *packet.Writer, item *entities.WallItem, tmpl *entities.Template) {
	w.AppendNumber(item.ID).Tab().
		Append(tmpl.Sprite).Tab().
		Append(" ").Tab().
		Append(item.WallPosition).Tab().
		Append(item.Var).Record()
}

// AddFloorItemPacket announces a newly placed floor item
func AddFloorItemPacket(item *entities.FloorItem, tmpl *entities.Template) string {
	w := packet.NewWriter(packet.OutAddFloorItem)
	AppendFloorItem(w, item, tmpl)
	return w.Build()
}

// UpdateFloorItemPacket announces a moved or rotated floor item
func UpdateFloorItemPacket(item *entities.FloorItem, tmpl *entities.Template) string {
	w := packet.NewWriter(packet.OutUpdateFloorItem)
	AppendFloorItem(w, item, tmpl)
	return w.Build()
}

// RemoveFloorItemPacket announces a floor item leaving the room
func RemoveFloorItemPacket(id int) string {
	return packet.NewWriter(packet.OutRemoveFloorItem).
		AppendField(strconv.Itoa(id)).
		Build()
}

// FloorItemVarPacket announces a floor item's new variable
func FloorItemVarPacket(id int, value string) string {
	return packet.NewWriter(packet.OutFloorItemVar).
		AppendField(strconv.Itoa(id)).
		AppendField(value).
		Build()
}

// AddWallItemPacket announces a newly hung wall item
func AddWallItemPacket(item *entities.WallItem, tmpl *entities.Template) string {
	w := packet.NewWriter(packet.OutAddWallItem)
	AppendWallItem(w, item, tmpl)
	return w.Build()
}

// UpdateWallItemPacket announces a wall item's new variable
func UpdateWallItemPacket(item *entities.WallItem, tmpl *entities.Template) string {
	w := packet.NewWriter(packet.OutUpdateWallItem)
	AppendWallItem(w, item, tmpl)
	return w.Build()
}

// RemoveWallItemPacket announces a wall item leaving the room
func RemoveWallItemPacket(id int) string {
	return packet.NewWriter(packet.OutRemoveWallItem).
		AppendNumber(id).
		Build()
}

// FloorItemsPacket lists every floor item, lowest first
func (p *FloorPlacer) FloorItemsPacket() string {
	items := p.Items()
	w := packet.NewWriter(packet.OutFloorItems).AppendInt(len(items))
	for _, item := range items {
		if tmpl, ok := p.Template(item); ok {
			AppendFloorItem(w, item, tmpl)
		}
	}
	return w.Build()
}

// WallItemsPacket lists every wall item
func (p *WallPlacer) WallItemsPacket() string {
	w := packet.NewWriter(packet.OutWallItems)
	for _, item := range p.Items() {
		if tmpl, ok := p.templates.Template(item.TemplateID); ok {
			AppendWallItem(w, item, tmpl)
		}
	}
	return w.Build()
}
