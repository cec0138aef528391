// Package rooms provides the repository interface and implementations for
// room descriptions and heightmap models
package rooms

import (
	"context"

	"github.com/KirkDiggler/room-server/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=roomsmock github.com/KirkDiggler/room-server/internal/repositories/rooms Repository

// GetInput identifies the room to load
type GetInput struct {
	RoomID int
}

// GetOutput contains the stored room
type GetOutput struct {
	Room *entities.Room
}

// SaveInput contains the room to store
type SaveInput struct {
	Room *entities.Room
}

// SaveOutput is empty
type SaveOutput struct{}

// ListInput is empty; every stored room is returned
type ListInput struct{}

// ListOutput contains the stored rooms ordered by id
type ListOutput struct {
	Rooms []*entities.Room
}

// LoadHeightmapInput names the heightmap model
type LoadHeightmapInput struct {
	Model string
}

// LoadHeightmapOutput contains the model's heightmap
type LoadHeightmapOutput struct {
	Heightmap string
}

// SaveHeightmapInput stores a heightmap model
type SaveHeightmapInput struct {
	Model     string
	Heightmap string
}

// SaveHeightmapOutput is empty
type SaveHeightmapOutput struct{}

// Repository defines the interface for room storage operations
type Repository interface {
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// LoadHeightmap returns the heightmap shared by every room of a model
	LoadHeightmap(ctx context.Context, input LoadHeightmapInput) (*LoadHeightmapOutput, error)
	SaveHeightmap(ctx context.Context, input SaveHeightmapInput) (*SaveHeightmapOutput, error)
}
