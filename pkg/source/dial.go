package source

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorview/pkg/cache"
	"github.com/matzehuels/floorview/pkg/errors"
)

// Kind selects a source backend.
type Kind string

const (
	KindFile     Kind = "file"
	KindHTTP     Kind = "http"
	KindMongo    Kind = "mongo"
	KindPostgres Kind = "postgres"
)

// DefaultCacheTTL bounds how stale a cached layout may be.
const DefaultCacheTTL = 5 * time.Minute

// Config selects and configures a source.
type Config struct {
	Kind          Kind          `toml:"kind"`
	Dir           string        `toml:"dir"`
	BaseURL       string        `toml:"base_url"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	PostgresDSN   string        `toml:"postgres_dsn"`
	CacheDir      string        `toml:"cache_dir"`
	CacheRedis    string        `toml:"cache_redis"`
	CacheTTL      time.Duration `toml:"cache_ttl"`
	NoCache       bool          `toml:"no_cache"`
}

// DefaultConfig reads layouts from ./floors.
func DefaultConfig() Config {
	return Config{
		Kind:          KindFile,
		Dir:           "floors",
		MongoDatabase: "floorview",
		CacheTTL:      DefaultCacheTTL,
	}
}

// Validate checks that the fields the kind needs are set.
func (c Config) Validate() error {
	switch c.Kind {
	case KindFile:
		if c.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.dir is required for file sources")
		}
	case KindHTTP:
		if err := errors.ValidateURL(c.BaseURL, "http", "https"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source.base_url")
		}
	case KindMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.mongo_uri and source.mongo_database are required")
		}
	case KindPostgres:
		if c.PostgresDSN == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.postgres_dsn is required")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown source kind %q", c.Kind)
	}
	if c.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "source.cache_ttl must not be negative")
	}
	return nil
}

// Open builds the configured source. Remote kinds are wrapped in [Cached]
// unless NoCache is set; file sources are read directly.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		src Source
		err error
	)
	switch cfg.Kind {
	case KindFile:
		return NewFile(cfg.Dir)
	case KindHTTP:
		src, err = NewHTTP(cfg.BaseURL)
	case KindMongo:
		src, err = DialMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case KindPostgres:
		src, err = OpenPostgres(ctx, cfg.PostgresDSN)
	}
	if err != nil {
		return nil, err
	}
	if cfg.NoCache {
		return src, nil
	}

	c, err := openCache(ctx, cfg)
	if err != nil {
		if logger != nil {
			logger.Warn("layout cache unavailable", "err", err)
		}
		c = cache.NullCache{}
	}
	return NewCached(src, c, cfg.CacheTTL, string(cfg.Kind), logger), nil
}

func openCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	if cfg.CacheRedis != "" {
		c, err := cache.DialRedisCache(ctx, cfg.CacheRedis, "", 0)
		if err != nil {
			return nil, err
		}
		return cache.Scoped(c, "floorview:"), nil
	}
	dir := cfg.CacheDir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}
