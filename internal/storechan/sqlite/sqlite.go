// Package sqlite provides a SQLite-backed storage channel.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/duelboard/duelboard/internal/platform/storage/sqlitemigrate"
	"github.com/duelboard/duelboard/internal/storechan"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Channel stores records in a SQLite database.
type Channel struct {
	sqlDB *sql.DB
}

// Open opens (and migrates) a SQLite channel at the provided path.
func Open(path string) (*Channel, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrationsFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Channel{sqlDB: sqlDB}, nil
}

// Append stores a record under the scope, replacing a same-named record.
func (c *Channel) Append(ctx context.Context, scope, name string, payload []byte) error {
	const insertSQL = `
INSERT INTO records (scope, name, payload, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (scope, name) DO UPDATE SET payload = excluded.payload
`
	if _, err := c.sqlDB.ExecContext(ctx, insertSQL, scope, name, payload, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// List returns record names for the scope, newest-first.
func (c *Channel) List(ctx context.Context, scope string, limit int) ([]string, error) {
	listSQL := "SELECT name FROM records WHERE scope = ? ORDER BY name DESC"
	args := []any{scope}
	if limit > 0 {
		listSQL += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.sqlDB.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan record name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read record names: %w", err)
	}
	return names, nil
}

// Fetch returns a record payload, or storechan.ErrNotFound.
func (c *Channel) Fetch(ctx context.Context, scope, name string) ([]byte, error) {
	const fetchSQL = "SELECT payload FROM records WHERE scope = ? AND name = ?"
	var payload []byte
	err := c.sqlDB.QueryRowContext(ctx, fetchSQL, scope, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, storechan.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record: %w", err)
	}
	return payload, nil
}

// Delete removes a record. Missing records are ignored.
func (c *Channel) Delete(ctx context.Context, scope, name string) error {
	const deleteSQL = "DELETE FROM records WHERE scope = ? AND name = ?"
	if _, err := c.sqlDB.ExecContext(ctx, deleteSQL, scope, name); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Scopes returns every scope holding at least one record, sorted.
func (c *Channel) Scopes(ctx context.Context) ([]string, error) {
	const scopesSQL = "SELECT DISTINCT scope FROM records ORDER BY scope"
	rows, err := c.sqlDB.QueryContext(ctx, scopesSQL)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read scopes: %w", err)
	}
	return scopes, nil
}

// Close closes the underlying database.
//
// Close is nil-safe so callers can defer it in all startup paths.
func (c *Channel) Close() error {
	if c == nil || c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}
