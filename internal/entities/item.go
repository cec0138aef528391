package entities

// ItemKind decides how a floor item affects the cells under it
type ItemKind string

// Item kinds
const (
	KindBlocking ItemKind = "blocking" // blocks movement, nothing stacks on it
	KindSolid    ItemKind = "solid"    // blocks movement, can carry other items
	KindSeat     ItemKind = "seat"
	KindBed      ItemKind = "bed"
	KindRug      ItemKind = "rug"
	KindGate     ItemKind = "gate" // open or closed depending on its variable
	KindWall     ItemKind = "wall"
)

// GateOpen is the variable value of an open gate
const GateOpen = "O"

// Template is the catalogue definition an item instance is made from
type Template struct {
	ID     int      `json:"id"`
	Sprite string   `json:"sprite"`
	Kind   ItemKind `json:"kind"`
	Length int      `json:"length"`
	Width  int      `json:"width"`
	TopH   float64  `json:"top_h"` // height this item adds to anything stacked on it
	Colour string   `json:"colour,omitempty"`
}

// CarriesStack reports whether other items may be stacked on this one
func (t *Template) CarriesStack() bool {
	switch t.Kind {
	case KindSolid, KindSeat, KindRug:
		return true
	}
	return false
}

// AllowsOccupant reports whether the item may be placed on a cell where an
// occupant is standing
func (t *Template) AllowsOccupant() bool {
	switch t.Kind {
	case KindSeat, KindBed, KindRug:
		return true
	}
	return false
}

// FloorItem is an item placed on the room grid
type FloorItem struct {
	ID         int     `json:"id"`
	TemplateID int     `json:"template_id"`
	OwnerID    int     `json:"owner_id"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Rotation   int     `json:"rotation"`
	H          float64 `json:"h"`
	Var        string  `json:"var,omitempty"`
}

// WallItem is an item hung on a wall. WallPosition is the client's own
// position string and is not interpreted by the server.
type WallItem struct {
	ID           int    `json:"id"`
	TemplateID   int    `json:"template_id"`
	OwnerID      int    `json:"owner_id"`
	WallPosition string `json:"wall_position"`
	Var          string `json:"var,omitempty"`
}

// ItemRow is an item record as stored. Rows with a wall position are wall
// items; the rest are floor items. RoomID 0 means the item sits in its
// owner's inventory.
type ItemRow struct {
	ID           int     `json:"id"`
	RoomID       int     `json:"room_id"`
	TemplateID   int     `json:"template_id"`
	OwnerID      int     `json:"owner_id"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Z            int     `json:"z"` // rotation
	H            float64 `json:"h"`
	WallPosition string  `json:"wall_position,omitempty"`
	Var          string  `json:"var,omitempty"`
}

// IsWall reports whether the row describes a wall item
func (r *ItemRow) IsWall() bool {
	return r.WallPosition != ""
}

// FloorItem converts the row into a floor item
func (r *ItemRow) FloorItem() *FloorItem {
	return &FloorItem{
		ID:         r.ID,
		TemplateID: r.TemplateID,
		OwnerID:    r.OwnerID,
		X:          r.X,
		Y:          r.Y,
		Rotation:   r.Z,
		H:          r.H,
		Var:        r.Var,
	}
}

// WallItem converts the row into a wall item
func (r *ItemRow) WallItem() *WallItem {
	return &WallItem{
		ID:           r.ID,
		TemplateID:   r.TemplateID,
		OwnerID:      r.OwnerID,
		WallPosition: r.WallPosition,
		Var:          r.Var,
	}
}
