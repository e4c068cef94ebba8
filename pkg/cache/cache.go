// Package cache stores fetched floor layouts so viewers can mount without a
// round trip to the backend.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: Redis strings with native TTLs, for "floorview serve"
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// Values are opaque bytes. [Scoped] prefixes keys so several sources can
// share one backend, and [Key] builds stable keys from arbitrary parts.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry TTLs. A TTL of 0 never expires.
type Cache interface {
	// Get returns the value and true on a hit. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Scoped returns a view of c that prefixes every key.
func Scoped(c Cache, prefix string) Cache {
	if s, ok := c.(*scoped); ok {
		return &scoped{inner: s.inner, prefix: s.prefix + prefix}
	}
	return &scoped{inner: c, prefix: prefix}
}

type scoped struct {
	inner  Cache
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the shared backend.
func (s *scoped) Close() error { return s.inner.Close() }
