package wallets

import (
	"context"
	"fmt"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/room-server/internal/errors"
	redisclient "github.com/KirkDiggler/room-server/internal/redis"
)

const walletKeyPrefix = "wallet:tickets:"

// spendScript takes one ticket if the balance allows it. It returns the new
// balance, or -1 when there was nothing to spend.
var spendScript = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]) or "0")
if n <= 0 then
	return -1
end
return redis.call("DECR", KEYS[1])
`)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis wallet repository.
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

// NewRedis creates a new Redis-backed wallet repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) SpendTicket(ctx context.Context, input SpendTicketInput) (*SpendTicketOutput, error) {
	left, err := spendScript.Run(ctx, r.client, []string{WalletKey(input.UserID)}).Int()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to spend ticket of user %d", input.UserID)
	}
	if left < 0 {
		return nil, errors.FailedPrecondition(fmt.Sprintf("user %d has no tickets", input.UserID))
	}
	return &SpendTicketOutput{Remaining: left}, nil
}

func (r *redisRepository) AddTickets(ctx context.Context, input AddTicketsInput) (*AddTicketsOutput, error) {
	if input.Count <= 0 {
		return nil, errors.InvalidArgument("count must be positive")
	}

	n, err := r.client.IncrBy(ctx, WalletKey(input.UserID), int64(input.Count)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to add tickets for user %d", input.UserID)
	}
	return &AddTicketsOutput{Balance: int(n)}, nil
}

func (r *redisRepository) GetBalance(ctx context.Context, input GetBalanceInput) (*GetBalanceOutput, error) {
	result, err := r.client.Get(ctx, WalletKey(input.UserID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &GetBalanceOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to get balance of user %d", input.UserID)
	}

	n, err := strconv.Atoi(result)
	if err != nil {
		return nil, errors.Wrapf(err, "corrupt balance for user %d", input.UserID)
	}
	return &GetBalanceOutput{Tickets: n}, nil
}

// WalletKey returns the Redis key of a user's ticket balance
func WalletKey(userID int) string {
	return fmt.Sprintf("%s%d", walletKeyPrefix, userID)
}
