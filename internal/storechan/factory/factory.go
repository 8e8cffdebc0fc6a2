// Package factory constructs storage channels by driver name. It sits beside
// the drivers so the channel contract package stays import-free of them.
package factory

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/duelboard/duelboard/internal/storechan"
	"github.com/duelboard/duelboard/internal/storechan/bolt"
	"github.com/duelboard/duelboard/internal/storechan/memory"
	"github.com/duelboard/duelboard/internal/storechan/redis"
	"github.com/duelboard/duelboard/internal/storechan/sqlite"
)

// Driver names a storage channel implementation.
type Driver string

const (
	// DriverMemory keeps records in process memory.
	DriverMemory Driver = "memory"
	// DriverSQLite stores records in a SQLite database file.
	DriverSQLite Driver = "sqlite"
	// DriverBolt stores records in a BoltDB file.
	DriverBolt Driver = "bolt"
	// DriverRedis stores records in Redis.
	DriverRedis Driver = "redis"
)

// Option configures channel construction.
type Option func(*config)

type config struct {
	path        string
	redisClient *goredis.Client
}

// WithPath sets the database file path for file-backed drivers.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *goredis.Client) Option {
	return func(c *config) {
		c.redisClient = client
	}
}

// Open constructs a channel for the named driver.
func Open(driver Driver, opts ...Option) (storechan.Channel, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.Open(cfg.path)
	case DriverBolt:
		return bolt.Open(cfg.path)
	case DriverRedis:
		return redis.New(cfg.redisClient)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
