// Package redis builds the go-redis client the repositories share. They
// depend on the Client interface so tests can point them at miniredis.
package redis

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/room-server/internal/errors"
)

// Client is what the room, item and wallet stores talk to. Single,
// cluster and sentinel clients all satisfy it.
type Client interface {
	redis.UniversalClient
}

// Nil is returned by reads of missing keys
var Nil = redis.Nil

// Deployment modes
const (
	ModeSingle   = "single"
	ModeCluster  = "cluster"
	ModeSentinel = "sentinel"
)

// Config describes how to reach Redis. Addrs holds one endpoint in single
// mode, the seed nodes in cluster mode and the sentinels in sentinel mode.
type Config struct {
	Mode       string
	Addrs      []string
	MasterName string

	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	UseTLS          bool

	// ReadOnly routes cluster reads to replicas
	ReadOnly bool
}

// Validate checks the config for the chosen mode
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Mode {
	case "", ModeSingle:
		if len(c.Addrs) != 1 {
			vb.InvalidField("addrs", "single mode takes exactly one endpoint")
		}
	case ModeCluster:
		if len(c.Addrs) == 0 {
			vb.RequiredField("addrs")
		}
	case ModeSentinel:
		if len(c.Addrs) == 0 {
			vb.RequiredField("addrs")
		}
		if c.MasterName == "" {
			vb.RequiredField("master_name")
		}
	default:
		vb.InvalidField("mode", "unknown mode "+c.Mode)
	}

	return vb.Build()
}

// New connects according to cfg. No traffic is sent until the first command.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	var tlsConfig *tls.Config
	if cfg.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402 // self-signed certs
		}
	}

	switch cfg.Mode {
	case ModeCluster:
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           cfg.Addrs,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			MaxRetries:      cfg.MaxRetries,
			ReadOnly:        cfg.ReadOnly,
			TLSConfig:       tlsConfig,
		}), nil
	case ModeSentinel:
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:      cfg.MasterName,
			SentinelAddrs:   cfg.Addrs,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			MaxRetries:      cfg.MaxRetries,
			TLSConfig:       tlsConfig,
		}), nil
	default:
		return redis.NewClient(&redis.Options{
			Addr:            cfg.Addrs[0],
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			MaxRetries:      cfg.MaxRetries,
			TLSConfig:       tlsConfig,
		}), nil
	}
}
