package config

import "time"

// Config holds the duelboard service settings, loaded from DUELBOARD_*
// environment variables.
type Config struct {
	// HTTPAddr is the listen address for the trigger API and display hub.
	HTTPAddr string `env:"DUELBOARD_HTTP_ADDR" envDefault:":8080"`

	// StoreDriver selects the snapshot record backend: memory, sqlite,
	// bolt or redis.
	StoreDriver string `env:"DUELBOARD_STORE_DRIVER" envDefault:"sqlite"`
	// StorePath is the database file path for the sqlite and bolt drivers.
	StorePath string `env:"DUELBOARD_STORE_PATH" envDefault:"duelboard.db"`
	// RedisAddr is the redis server address for the redis driver.
	RedisAddr string `env:"DUELBOARD_REDIS_ADDR" envDefault:"localhost:6379"`

	// SnapshotMinInterval is the debounce window between non-forced
	// snapshot writes per scope.
	SnapshotMinInterval time.Duration `env:"DUELBOARD_SNAPSHOT_MIN_INTERVAL" envDefault:"10s"`
	// SnapshotRetention is how many records to keep per scope.
	SnapshotRetention int `env:"DUELBOARD_SNAPSHOT_RETENTION" envDefault:"5"`
	// SnapshotSearchWindow bounds how many records restore inspects,
	// newest first, before giving up on a scope.
	SnapshotSearchWindow int `env:"DUELBOARD_SNAPSHOT_SEARCH_WINDOW" envDefault:"50"`
}
