package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	redisclient "github.com/KirkDiggler/room-server/internal/redis"
)

const (
	roomKeyPrefix  = "room:"
	roomIndexKey   = "rooms"
	modelKeyPrefix = "model:"

	errRoomNil     = "room cannot be nil"
	errRoomIDEmpty = "room ID must be positive"
	errModelEmpty  = "model cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis room repository.
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed room repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.RoomID <= 0 {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	result, err := r.client.Get(ctx, RoomKey(input.RoomID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("room %d not found", input.RoomID)
		}
		return nil, errors.Wrapf(err, "failed to get room %d", input.RoomID)
	}

	var room entities.Room
	if err := json.Unmarshal([]byte(result), &room); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal room %d", input.RoomID)
	}
	return &GetOutput{Room: &room}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Room == nil {
		return nil, errors.InvalidArgument(errRoomNil)
	}
	if input.Room.ID <= 0 {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	data, err := json.Marshal(input.Room)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal room %d", input.Room.ID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RoomKey(input.Room.ID), data, 0)
		pipe.SAdd(ctx, roomIndexKey, strconv.Itoa(input.Room.ID))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save room %d", input.Room.ID)
	}
	return &SaveOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}
	if len(ids) == 0 {
		return &ListOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load rooms")
	}

	out := make([]*entities.Room, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var room entities.Room
		if err := json.Unmarshal([]byte(s), &room); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal room %s", ids[i])
		}
		out = append(out, &room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return &ListOutput{Rooms: out}, nil
}

func (r *redisRepository) LoadHeightmap(ctx context.Context, input LoadHeightmapInput) (*LoadHeightmapOutput, error) {
	if input.Model == "" {
		return nil, errors.InvalidArgument(errModelEmpty)
	}

	result, err := r.client.Get(ctx, ModelKey(input.Model)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("heightmap model %s not found", input.Model)
		}
		return nil, errors.Wrapf(err, "failed to get heightmap model %s", input.Model)
	}
	return &LoadHeightmapOutput{Heightmap: result}, nil
}

func (r *redisRepository) SaveHeightmap(ctx context.Context, input SaveHeightmapInput) (*SaveHeightmapOutput, error) {
	if input.Model == "" {
		return nil, errors.InvalidArgument(errModelEmpty)
	}

	if err := r.client.Set(ctx, ModelKey(input.Model), input.Heightmap, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to save heightmap model %s", input.Model)
	}
	return &SaveHeightmapOutput{}, nil
}

// RoomKey returns the Redis key of a room description
func RoomKey(roomID int) string {
	return fmt.Sprintf("%s%d", roomKeyPrefix, roomID)
}

// ModelKey returns the Redis key of a heightmap model
func ModelKey(model string) string {
	return modelKeyPrefix + model
}
