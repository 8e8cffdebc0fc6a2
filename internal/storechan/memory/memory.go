// Package memory provides an in-process storage channel for tests and
// single-node development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/duelboard/duelboard/internal/storechan"
)

// Channel stores records in memory.
type Channel struct {
	mu     sync.Mutex
	scopes map[string]map[string][]byte
}

// New creates an empty in-memory channel.
func New() *Channel {
	return &Channel{scopes: make(map[string]map[string][]byte)}
}

// Append stores a record under the scope.
func (c *Channel) Append(ctx context.Context, scope, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	records, ok := c.scopes[scope]
	if !ok {
		records = make(map[string][]byte)
		c.scopes[scope] = records
	}
	records[name] = append([]byte(nil), payload...)
	return nil
}

// List returns record names for the scope, newest-first.
func (c *Channel) List(ctx context.Context, scope string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	records := c.scopes[scope]
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Fetch returns a record payload, or storechan.ErrNotFound.
func (c *Channel) Fetch(ctx context.Context, scope, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.scopes[scope][name]
	if !ok {
		return nil, storechan.ErrNotFound
	}
	return append([]byte(nil), payload...), nil
}

// Delete removes a record. Missing records are ignored.
func (c *Channel) Delete(ctx context.Context, scope, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if records, ok := c.scopes[scope]; ok {
		delete(records, name)
		if len(records) == 0 {
			delete(c.scopes, scope)
		}
	}
	return nil
}

// Scopes returns every scope holding at least one record, sorted.
func (c *Channel) Scopes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	scopes := make([]string, 0, len(c.scopes))
	for scope := range c.scopes {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes, nil
}

// Close releases the channel's records.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scopes = make(map[string]map[string][]byte)
	return nil
}
