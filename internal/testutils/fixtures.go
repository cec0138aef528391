package testutils

import (
	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/room/furniture"
)

// Test heightmaps
const (
	// Heightmap3x3 is a flat open 3x3 room
	Heightmap3x3 = "000\r000\r000\r"

	// Heightmap5x5 is a flat 5x5 room with one wall cell in the far corner
	Heightmap5x5 = "00000\r00000\r00000\r00000\r0000x\r"
)

// Template ids used by TestTemplates
const (
	TemplateTable = iota + 1
	TemplateChair
	TemplatePlant
	TemplateRug
	TemplateGate
	TemplatePoster
	TemplateShelf
)

// TestTemplates returns a small furniture catalogue covering every item kind
func TestTemplates() furniture.TemplateSet {
	return furniture.TemplateSet{
		TemplateTable:  {ID: TemplateTable, Sprite: "table", Kind: entities.KindSolid, Length: 1, Width: 1, TopH: 1.0},
		TemplateChair:  {ID: TemplateChair, Sprite: "chair", Kind: entities.KindSeat, Length: 1, Width: 1, TopH: 1.0},
		TemplatePlant:  {ID: TemplatePlant, Sprite: "plant", Kind: entities.KindBlocking, Length: 1, Width: 1},
		TemplateRug:    {ID: TemplateRug, Sprite: "rug", Kind: entities.KindRug, Length: 1, Width: 1, TopH: 0.1},
		TemplateGate:   {ID: TemplateGate, Sprite: "gate", Kind: entities.KindGate, Length: 1, Width: 1},
		TemplatePoster: {ID: TemplatePoster, Sprite: "poster", Kind: entities.KindWall},
		TemplateShelf:  {ID: TemplateShelf, Sprite: "shelf", Kind: entities.KindWall},
	}
}

// CreateTestRoom returns a room description with its door at 0,0
func CreateTestRoom(id int) *entities.Room {
	return &entities.Room{
		ID:      id,
		Name:    "Test Room",
		OwnerID: 100,
		Model:   "model_test",
		Door:    entities.Door{X: 0, Y: 0, Rotation: 2},
	}
}
