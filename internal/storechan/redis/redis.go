// Package redis provides a Redis-backed storage channel. Payloads live under
// plain keys while a per-scope sorted set scored by append time keeps the
// newest-first listing cheap.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/duelboard/duelboard/internal/storechan"
)

const (
	recordKeyPrefix = "duelboard:record:"
	indexKeyPrefix  = "duelboard:index:"
	scopesKey       = "duelboard:scopes"
)

// Channel stores records in Redis.
type Channel struct {
	client *goredis.Client
}

// New creates a Redis channel over an existing client.
func New(client *goredis.Client) (*Channel, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Channel{client: client}, nil
}

func recordKey(scope, name string) string {
	return recordKeyPrefix + scope + ":" + name
}

func indexKey(scope string) string {
	return indexKeyPrefix + scope
}

// Append stores a record and indexes it under the scope.
func (c *Channel) Append(ctx context.Context, scope, name string, payload []byte) error {
	score := float64(time.Now().UTC().UnixMilli())
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, recordKey(scope, name), payload, 0)
		pipe.ZAdd(ctx, indexKey(scope), goredis.Z{Score: score, Member: name})
		pipe.SAdd(ctx, scopesKey, scope)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// List returns record names for the scope, newest-first.
func (c *Channel) List(ctx context.Context, scope string, limit int) ([]string, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	names, err := c.client.ZRevRange(ctx, indexKey(scope), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return names, nil
}

// Fetch returns a record payload, or storechan.ErrNotFound.
func (c *Channel) Fetch(ctx context.Context, scope, name string) ([]byte, error) {
	payload, err := c.client.Get(ctx, recordKey(scope, name)).Bytes()
	if err == goredis.Nil {
		return nil, storechan.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record: %w", err)
	}
	return payload, nil
}

// Delete removes a record and its index entry.
func (c *Channel) Delete(ctx context.Context, scope, name string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, recordKey(scope, name))
		pipe.ZRem(ctx, indexKey(scope), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Scopes returns every scope that has appended at least one record.
func (c *Channel) Scopes(ctx context.Context) ([]string, error) {
	scopes, err := c.client.SMembers(ctx, scopesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	return scopes, nil
}

// Close closes the underlying client.
func (c *Channel) Close() error {
	return c.client.Close()
}
