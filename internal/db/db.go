// Package db defines the key-value cache contract shared by the Wikipedia
// page, oracle score and embedding caches.
package db

import (
	"context"
	"time"
)

// Store is the cache facade: connectivity plus TTL-scoped key-value access.
type Store interface {
	Pinger
	Cache
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache stores opaque values under expiring keys. A non-positive ttl keeps
// the value until it is deleted.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
