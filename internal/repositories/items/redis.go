package items

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
	itemKeyPrefix      = "item:"
	roomItemsPrefix    = "room:items:"
	inventoryKeyPrefix = "inventory:"
	itemSequenceKey    = "item:next_id"

	errItemIDInvalid = "item ID must be positive"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis item repository.
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

// NewRedis creates a new Redis-backed item repository. Each item is one JSON
// value; rooms and inventories index their items in sets.
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) LoadRoomItems(ctx context.Context, input LoadRoomItemsInput) (*LoadRoomItemsOutput, error) {
	ids, err := r.client.SMembers(ctx, RoomItemsKey(input.RoomID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list items of room %d", input.RoomID)
	}
	if len(ids) == 0 {
		return &LoadRoomItemsOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load items of room %d", input.RoomID)
	}

	rows := make([]*entities.ItemRow, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry without a value; skip rather than fail the room
			continue
		}
		var row entities.ItemRow
		if err := json.Unmarshal([]byte(s), &row); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal item %s", ids[i])
		}
		rows = append(rows, &row)
	}
	SortByHeight(rows)

	return &LoadRoomItemsOutput{Items: rows}, nil
}

func (r *redisRepository) GetInventoryItem(ctx context.Context, input GetInventoryItemInput) (*GetInventoryItemOutput, error) {
	if input.ItemID <= 0 {
		return nil, errors.InvalidArgument(errItemIDInvalid)
	}

	held, err := r.client.SIsMember(ctx, InventoryKey(input.OwnerID), strconv.Itoa(input.ItemID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check inventory of user %d", input.OwnerID)
	}
	if !held {
		return nil, errors.NotFoundf("item %d is not in the inventory of user %d", input.ItemID, input.OwnerID)
	}

	row, err := r.get(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	return &GetInventoryItemOutput{Item: row}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Item == nil {
		return nil, errors.InvalidArgument("item cannot be nil")
	}

	row := *input.Item
	if row.ID == 0 {
		id, err := r.client.Incr(ctx, itemSequenceKey).Result()
		if err != nil {
			return nil, errors.Wrap(err, "failed to allocate item id")
		}
		row.ID = int(id)
	} else {
		n, err := r.client.Exists(ctx, ItemKey(row.ID)).Result()
		if err != nil {
			return nil, errors.Wrap(err, "failed to check item")
		}
		if n > 0 {
			return nil, errors.AlreadyExistsf("item %d already exists", row.ID)
		}
	}

	if err := r.write(ctx, nil, &row); err != nil {
		return nil, err
	}
	return &CreateOutput{Item: &row}, nil
}

func (r *redisRepository) SaveItemPosition(ctx context.Context, input SaveItemPositionInput) (*SaveItemPositionOutput, error) {
	row, err := r.get(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	before := *row

	row.RoomID = input.RoomID
	row.X, row.Y, row.Z, row.H = input.X, input.Y, input.Z, input.H
	row.WallPosition = input.WallPosition

	if err := r.write(ctx, &before, row); err != nil {
		return nil, err
	}
	return &SaveItemPositionOutput{}, nil
}

func (r *redisRepository) SaveItemVar(ctx context.Context, input SaveItemVarInput) (*SaveItemVarOutput, error) {
	row, err := r.get(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	before := *row
	row.Var = input.Var

	if err := r.write(ctx, &before, row); err != nil {
		return nil, err
	}
	return &SaveItemVarOutput{}, nil
}

func (r *redisRepository) DeleteItem(ctx context.Context, input DeleteItemInput) (*DeleteItemOutput, error) {
	row, err := r.get(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	id := strconv.Itoa(row.ID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, RoomItemsKey(row.RoomID), id)
		pipe.SRem(ctx, InventoryKey(row.OwnerID), id)
		pipe.Del(ctx, ItemKey(row.ID))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete item %d", row.ID)
	}
	return &DeleteItemOutput{}, nil
}

func (r *redisRepository) TransferItemToOwner(ctx context.Context, input TransferItemToOwnerInput) (*TransferItemToOwnerOutput, error) {
	row, err := r.get(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	before := *row

	row.RoomID = 0
	row.OwnerID = input.OwnerID
	row.X, row.Y, row.Z, row.H = 0, 0, 0, 0
	row.WallPosition = ""

	if err := r.write(ctx, &before, row); err != nil {
		return nil, err
	}
	return &TransferItemToOwnerOutput{}, nil
}

func (r *redisRepository) get(ctx context.Context, itemID int) (*entities.ItemRow, error) {
	if itemID <= 0 {
		return nil, errors.InvalidArgument(errItemIDInvalid)
	}

	result, err := r.client.Get(ctx, ItemKey(itemID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("item %d not found", itemID)
		}
		return nil, errors.Wrapf(err, "failed to get item %d", itemID)
	}

	var row entities.ItemRow
	if err := json.Unmarshal([]byte(result), &row); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal item %d", itemID)
	}
	return &row, nil
}

// write stores row and moves its index entry from where before was kept
func (r *redisRepository) write(ctx context.Context, before, row *entities.ItemRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal item %d", row.ID)
	}

	id := strconv.Itoa(row.ID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if before != nil {
			pipe.SRem(ctx, indexKey(before), id)
		}
		pipe.Set(ctx, ItemKey(row.ID), data, 0)
		pipe.SAdd(ctx, indexKey(row), id)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to save item %d", row.ID)
	}
	return nil
}

func indexKey(row *entities.ItemRow) string {
	if row.RoomID == 0 {
		return InventoryKey(row.OwnerID)
	}
	return RoomItemsKey(row.RoomID)
}

// SortByHeight orders rows the way rooms restore them: lowest first, ties by
// id
func SortByHeight(rows []*entities.ItemRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].H != rows[j].H {
			return rows[i].H < rows[j].H
		}
		return rows[i].ID < rows[j].ID
	})
}

// ItemKey returns the Redis key of one item
// Exposed for testing purposes
func ItemKey(itemID int) string {
	return fmt.Sprintf("%s%d", itemKeyPrefix, itemID)
}

// RoomItemsKey returns the Redis key of a room's item index
func RoomItemsKey(roomID int) string {
	return fmt.Sprintf("%s%d", roomItemsPrefix, roomID)
}

// InventoryKey returns the Redis key of a user's inventory index
func InventoryKey(ownerID int) string {
	return fmt.Sprintf("%s%d", inventoryKeyPrefix, ownerID)
}
