// Package testutils provides shared test helpers: in-memory Redis, room
// fixtures and a transport that records what rooms send
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/room-server/internal/redis"
)

// CreateTestRedisClient starts a miniredis server and connects a client to
// it. The returned func closes both.
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	client, _, cleanup := StartTestRedis(t)
	return client, cleanup
}

// StartTestRedis is CreateTestRedisClient that also hands back the server,
// for tests that seed keys directly or fast forward TTLs.
func StartTestRedis(t *testing.T) (redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client, err := redis.New(&redis.Config{Addrs: []string{mr.Addr()}})
	require.NoError(t, err, "failed to create redis client")

	return client, mr, func() {
		_ = client.Close()
		mr.Close()
	}
}
