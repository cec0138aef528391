package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/lib/pq" // postgres driver

	redisclient "github.com/KirkDiggler/room-server/internal/redis"
	"github.com/KirkDiggler/room-server/internal/repositories/items"
	roomsrepo "github.com/KirkDiggler/room-server/internal/repositories/rooms"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
)

// Storage backends
const (
	storeRedis    = "redis"
	storePostgres = "postgres"
)

var (
	storeKind   string
	redisMode   string
	redisAddrs  string
	redisMaster string
	redisTLS    bool
	postgresDSN string
	initSchema  bool
)

func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&storeKind, "store", storeRedis, "storage backend: redis or postgres")
	f.StringVar(&redisMode, "redis-mode", redisclient.ModeSingle, "single, cluster or sentinel")
	f.StringVar(&redisAddrs, "redis-addrs", "localhost:6379", "comma separated redis endpoints")
	f.StringVar(&redisMaster, "redis-master", "", "sentinel master name")
	f.BoolVar(&redisTLS, "redis-tls", false, "connect to redis over TLS")
	f.StringVar(&postgresDSN, "postgres-dsn", "", "postgres connection string")
	f.BoolVar(&initSchema, "init-schema", false, "create postgres tables on start")
}

// stores is the set of repositories the server runs on
type stores struct {
	rooms   roomsrepo.Repository
	items   items.Repository
	wallets wallets.Repository
	close   func()
}

func openStores(ctx context.Context) (*stores, error) {
	switch storeKind {
	case storeRedis:
		return openRedisStores(ctx)
	case storePostgres:
		return openPostgresStores(ctx)
	default:
		return nil, fmt.Errorf("unknown store %q", storeKind)
	}
}

func openRedisStores(ctx context.Context) (*stores, error) {
	client, err := redisclient.New(&redisclient.Config{
		Mode:       redisMode,
		Addrs:      splitList(redisAddrs),
		MasterName: redisMaster,
		UseTLS:     redisTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	roomRepo, err := roomsrepo.NewRedis(&roomsrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, err
	}
	itemRepo, err := items.NewRedis(&items.RedisConfig{Client: client})
	if err != nil {
		return nil, err
	}
	walletRepo, err := wallets.NewRedis(&wallets.RedisConfig{Client: client})
	if err != nil {
		return nil, err
	}

	log.Printf("Using redis (%s) at %s", redisMode, redisAddrs)
	return &stores{
		rooms:   roomRepo,
		items:   itemRepo,
		wallets: walletRepo,
		close:   func() { _ = client.Close() },
	}, nil
}

func openPostgresStores(ctx context.Context) (*stores, error) {
	if postgresDSN == "" {
		return nil, fmt.Errorf("postgres store needs --postgres-dsn")
	}

	db, err := sql.Open("postgres", postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	roomRepo, err := roomsrepo.NewPostgres(ctx, &roomsrepo.PostgresConfig{DB: db, InitSchema: initSchema})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	itemRepo, err := items.NewPostgres(ctx, &items.PostgresConfig{DB: db, InitSchema: initSchema})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	walletRepo, err := wallets.NewPostgres(ctx, &wallets.PostgresConfig{DB: db, InitSchema: initSchema})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Println("Using postgres")
	return &stores{
		rooms:   roomRepo,
		items:   itemRepo,
		wallets: walletRepo,
		close:   func() { _ = db.Close() },
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
