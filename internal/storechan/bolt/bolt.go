// Package bolt provides a BoltDB-backed storage channel.
package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/duelboard/duelboard/internal/storechan"
)

// Channel stores records in a BoltDB file, one bucket per scope.
type Channel struct {
	db *bbolt.DB
}

// Open opens a BoltDB channel at the provided path.
func Open(path string) (*Channel, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	return &Channel{db: db}, nil
}

// Append stores a record under the scope bucket.
func (c *Channel) Append(ctx context.Context, scope, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return fmt.Errorf("ensure scope bucket: %w", err)
		}
		if err := bucket.Put([]byte(name), payload); err != nil {
			return fmt.Errorf("put record: %w", err)
		}
		return nil
	})
}

// List returns record names for the scope, newest-first. Bolt keys are stored
// in lexical order, so a backwards cursor walk yields newest-first directly.
func (c *Channel) List(ctx context.Context, scope string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var names []string
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scope))
		if bucket == nil {
			return nil
		}
		cursor := bucket.Cursor()
		for key, _ := cursor.Last(); key != nil; key, _ = cursor.Prev() {
			names = append(names, string(key))
			if limit > 0 && len(names) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return names, nil
}

// Fetch returns a record payload, or storechan.ErrNotFound.
func (c *Channel) Fetch(ctx context.Context, scope, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scope))
		if bucket == nil {
			return storechan.ErrNotFound
		}
		value := bucket.Get([]byte(name))
		if value == nil {
			return storechan.ErrNotFound
		}
		payload = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Delete removes a record. Missing records and scopes are ignored.
func (c *Channel) Delete(ctx context.Context, scope, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scope))
		if bucket == nil {
			return nil
		}
		if err := bucket.Delete([]byte(name)); err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		return nil
	})
}

// Scopes returns every scope bucket name.
func (c *Channel) Scopes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var scopes []string
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			scopes = append(scopes, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	return scopes, nil
}

// Close closes the underlying database.
func (c *Channel) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
