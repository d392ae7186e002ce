// Package cache is an optional read-through layer for screens fetched from
// the API. Entries expire after a TTL and the server stays authoritative;
// session state is never stored here.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Ping tests the cache connection
	Ping(ctx context.Context) error

	// Set stores a value with optional expiration; zero means no expiry
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Get retrieves a value by key. A missing key is reported as ok == false.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error

	// Exists reports whether any of the keys exist
	Exists(ctx context.Context, keys ...string) (bool, error)

	Close() error
}
