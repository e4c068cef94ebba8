package source

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorview/pkg/cache"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/observability"
)

// Cached serves floors from a cache, falling through to the wrapped source
// on a miss. Cache failures are logged and never fail a lookup.
type Cached struct {
	src    Source
	cache  cache.Cache
	ttl    time.Duration
	name   string
	logger *log.Logger
}

// NewCached wraps src. name scopes the keys, so sources can share a cache.
func NewCached(src Source, c cache.Cache, ttl time.Duration, name string, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cached{src: src, cache: c, ttl: ttl, name: name, logger: logger}
}

func (c *Cached) Floor(ctx context.Context, id string) (*floorplan.Floor, error) {
	key := cache.Key("floor", c.name, id)
	hooks := observability.Cache()

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", "floor", id, "err", err)
	} else if ok {
		var f floorplan.Floor
		if err := json.Unmarshal(data, &f); err == nil {
			hooks.OnCacheHit(ctx, "floor")
			c.logger.Debug("floor from cache", "floor", id)
			return &f, nil
		}
		_ = c.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, "floor")

	f, err := c.src.Floor(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(f); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "floor", id, "err", err)
		} else {
			hooks.OnCacheSet(ctx, "floor", len(data))
		}
	}
	return f, nil
}

// Invalidate drops the cached copy of id.
func (c *Cached) Invalidate(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, cache.Key("floor", c.name, id))
}

// Floors passes through when the wrapped source is a [Lister].
func (c *Cached) Floors(ctx context.Context) ([]string, error) {
	if l, ok := c.src.(Lister); ok {
		return l.Floors(ctx)
	}
	return nil, nil
}

// Close closes the wrapped source and then the cache.
func (c *Cached) Close() error {
	err := c.src.Close()
	if cerr := c.cache.Close(); err == nil {
		err = cerr
	}
	return err
}
