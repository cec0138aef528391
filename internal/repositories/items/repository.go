// Package items provides the repository interface and implementations for
// room and inventory items
package items

import (
	"context"

	"github.com/KirkDiggler/room-server/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=itemsmock github.com/KirkDiggler/room-server/internal/repositories/items Repository

// LoadRoomItemsInput contains parameters for loading a room's items
type LoadRoomItemsInput struct {
	RoomID int
}

// LoadRoomItemsOutput contains every item in the room ordered by height,
// lowest first
type LoadRoomItemsOutput struct {
	Items []*entities.ItemRow
}

// GetInventoryItemInput contains parameters for fetching one item from a
// user's inventory
type GetInventoryItemInput struct {
	OwnerID int
	ItemID  int
}

// GetInventoryItemOutput contains the inventory item
type GetInventoryItemOutput struct {
	Item *entities.ItemRow
}

// CreateInput contains parameters for storing a new item
type CreateInput struct {
	Item *entities.ItemRow
}

// CreateOutput contains the stored item
type CreateOutput struct {
	Item *entities.ItemRow
}

// SaveItemPositionInput moves an item into a room at a position. Z is the
// rotation.
type SaveItemPositionInput struct {
	ItemID int
	RoomID int
	X      int
	Y      int
	Z      int
	H      float64
	// WallPosition is set instead of X/Y/Z/H for wall items
	WallPosition string
}

// SaveItemPositionOutput is empty
type SaveItemPositionOutput struct{}

// SaveItemVarInput updates an item's variable
type SaveItemVarInput struct {
	ItemID int
	Var    string
}

// SaveItemVarOutput is empty
type SaveItemVarOutput struct{}

// DeleteItemInput identifies the item to destroy
type DeleteItemInput struct {
	ItemID int
}

// DeleteItemOutput is empty
type DeleteItemOutput struct{}

// TransferItemToOwnerInput moves an item out of its room into a user's
// inventory
type TransferItemToOwnerInput struct {
	ItemID  int
	OwnerID int
}

// TransferItemToOwnerOutput is empty
type TransferItemToOwnerOutput struct{}

// Loader reads items
type Loader interface {
	// LoadRoomItems returns a room's floor and wall items, ordered by height
	LoadRoomItems(ctx context.Context, input LoadRoomItemsInput) (*LoadRoomItemsOutput, error)

	// GetInventoryItem returns an item the owner holds in their inventory
	GetInventoryItem(ctx context.Context, input GetInventoryItemInput) (*GetInventoryItemOutput, error)
}

// Writer persists item changes made by a room
type Writer interface {
	SaveItemPosition(ctx context.Context, input SaveItemPositionInput) (*SaveItemPositionOutput, error)
	SaveItemVar(ctx context.Context, input SaveItemVarInput) (*SaveItemVarOutput, error)
	DeleteItem(ctx context.Context, input DeleteItemInput) (*DeleteItemOutput, error)
	TransferItemToOwner(ctx context.Context, input TransferItemToOwnerInput) (*TransferItemToOwnerOutput, error)
}

// Repository defines the interface for item storage operations
type Repository interface {
	Loader
	Writer

	// Create stores a new item, in a room or an inventory
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
}
