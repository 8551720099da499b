// Package storage persists small string values such as user preferences.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store defines the interface for key/value storage backends.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open picks a backend: Redis when redisAddr is set, otherwise SQLite in
// dataDir. A dataDir of ":memory:" gives a process-local store.
func Open(ctx context.Context, dataDir, redisAddr string) (Store, error) {
	switch {
	case strings.TrimSpace(redisAddr) != "":
		return NewRedis(ctx, RedisConfig{Addr: redisAddr})
	case dataDir == ":memory:":
		return NewMemory(), nil
	case dataDir == "":
		return nil, fmt.Errorf("storage: no data directory configured")
	default:
		return OpenSQLite(dataDir)
	}
}
