// Package config loads floorview settings.
//
// Settings come from three layers, later ones winning:
//
//  1. [Default]
//  2. a TOML file passed to [Load]
//  3. FLOORVIEW_* environment variables, applied by [Config.LoadFromEnv]
//
// A minimal file:
//
//	[source]
//	kind = "http"
//	base_url = "https://bms.example.com/api"
//
//	[realtime]
//	transport = "mqtt"
//	mqtt.broker = "tcp://broker:1883"
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan/fit"
	"github.com/matzehuels/floorview/pkg/floorplan/gesture"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/source"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLOORVIEW"

// Config is the complete configuration.
type Config struct {
	Viewer   ViewerConfig    `toml:"viewer"`
	Realtime realtime.Config `toml:"realtime"`
	Source   source.Config   `toml:"source"`
	Server   ServerConfig    `toml:"server"`
	Log      LogConfig       `toml:"log"`
}

// ViewerConfig tunes gestures and the reset view.
type ViewerConfig struct {
	DragThreshold    float64 `toml:"drag_threshold"`
	DefaultScale     float64 `toml:"default_scale"`
	NarrowScale      float64 `toml:"narrow_scale"`
	NarrowBreakpoint float64 `toml:"narrow_breakpoint"`
	ZoomStep         float64 `toml:"zoom_step"`
}

// Defaults returns the reset-view defaults.
func (v ViewerConfig) Defaults() fit.Defaults {
	return fit.Defaults{Scale: v.DefaultScale, NarrowScale: v.NarrowScale, Breakpoint: v.NarrowBreakpoint}
}

// ServerConfig configures "floorview serve".
type ServerConfig struct {
	Addr        string        `toml:"addr"`
	SessionTTL  time.Duration `toml:"session_ttl"`
	MaxSessions int           `toml:"max_sessions"`
	LinkBase    string        `toml:"link_base"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	d := fit.DefaultDefaults
	return Config{
		Viewer: ViewerConfig{
			DragThreshold:    gesture.DefaultDragThreshold,
			DefaultScale:     d.Scale,
			NarrowScale:      d.NarrowScale,
			NarrowBreakpoint: d.Breakpoint,
			ZoomStep:         0.1,
		},
		Realtime: realtime.DefaultConfig(),
		Source:   source.DefaultConfig(),
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  30 * time.Minute,
			MaxSessions: 1000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over [Default], applies the environment and validates.
// An empty path skips the file. Unknown keys in the file are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.LoadFromEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFromEnv overrides fields from FLOORVIEW_* variables read through getenv.
func (c *Config) LoadFromEnv(getenv func(string) string) error {
	e := envReader{getenv: getenv}

	e.float("VIEWER_DRAG_THRESHOLD", &c.Viewer.DragThreshold)
	e.float("VIEWER_DEFAULT_SCALE", &c.Viewer.DefaultScale)
	e.float("VIEWER_NARROW_SCALE", &c.Viewer.NarrowScale)
	e.float("VIEWER_NARROW_BREAKPOINT", &c.Viewer.NarrowBreakpoint)
	e.float("VIEWER_ZOOM_STEP", &c.Viewer.ZoomStep)

	e.str("TRANSPORT", &c.Realtime.Transport)
	e.str("CHANNEL_PREFIX", &c.Realtime.Prefix)
	e.str("REDIS_ADDR", &c.Realtime.Redis.Addr)
	e.str("REDIS_PASSWORD", &c.Realtime.Redis.Password)
	e.int("REDIS_DB", &c.Realtime.Redis.DB)
	e.str("MQTT_BROKER", &c.Realtime.MQTT.Broker)
	e.str("MQTT_CLIENT_ID", &c.Realtime.MQTT.ClientID)
	e.str("MQTT_USERNAME", &c.Realtime.MQTT.Username)
	e.str("MQTT_PASSWORD", &c.Realtime.MQTT.Password)
	e.str("WEBSOCKET_URL", &c.Realtime.WebSocket.URL)

	var kind string
	if e.str("SOURCE", &kind) {
		c.Source.Kind = source.Kind(kind)
	}
	e.str("SOURCE_DIR", &c.Source.Dir)
	e.str("SOURCE_URL", &c.Source.BaseURL)
	e.str("MONGO_URI", &c.Source.MongoURI)
	e.str("MONGO_DATABASE", &c.Source.MongoDatabase)
	e.str("POSTGRES_DSN", &c.Source.PostgresDSN)
	e.str("CACHE_DIR", &c.Source.CacheDir)
	e.str("CACHE_REDIS", &c.Source.CacheRedis)
	e.duration("CACHE_TTL", &c.Source.CacheTTL)

	e.str("ADDR", &c.Server.Addr)
	e.duration("SESSION_TTL", &c.Server.SessionTTL)
	e.int("MAX_SESSIONS", &c.Server.MaxSessions)
	e.str("LINK_BASE", &c.Server.LinkBase)

	e.str("LOG_LEVEL", &c.Log.Level)
	return e.err
}

// Validate checks every section.
func (c Config) Validate() error {
	v := c.Viewer
	switch {
	case v.DragThreshold < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewer.drag_threshold must not be negative")
	case v.DefaultScale <= 0 || v.NarrowScale <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewer scales must be positive")
	case v.NarrowBreakpoint < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewer.narrow_breakpoint must not be negative")
	case v.ZoomStep <= 0 || v.ZoomStep >= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "viewer.zoom_step must be in (0, 1)")
	}
	if err := c.Realtime.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_sessions must be positive")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return lvl, nil
}

type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) lookup(key string) (string, bool) {
	v := e.getenv(EnvPrefix + "_" + key)
	return v, v != ""
}

func (e *envReader) fail(key, v string, err error) {
	if e.err == nil {
		e.err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s_%s=%q", EnvPrefix, key, v)
	}
}

func (e *envReader) str(key string, dst *string) bool {
	v, ok := e.lookup(key)
	if ok {
		*dst = v
	}
	return ok
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, v, fmt.Errorf("parse duration: %w", err))
			return
		}
		*dst = d
	}
}
