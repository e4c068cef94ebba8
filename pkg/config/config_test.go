package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/source"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "floorview.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	d := Default().Viewer.Defaults()
	if d.Scale != 1.0 || d.NarrowScale != 0.6 || d.Breakpoint != 768 {
		t.Errorf("Defaults() = %+v", d)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[viewer]
drag_threshold = 8
zoom_step = 0.25

[realtime]
transport = "redis"
redis.addr = "cache:6379"

[source]
kind = "http"
base_url = "https://bms.example.com/api"
cache_ttl = "90s"

[server]
session_ttl = "1h"

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Viewer.DragThreshold != 8 || cfg.Viewer.ZoomStep != 0.25 {
		t.Errorf("viewer = %+v", cfg.Viewer)
	}
	if cfg.Viewer.DefaultScale != 1.0 {
		t.Errorf("unset default_scale = %v, want default 1.0", cfg.Viewer.DefaultScale)
	}
	if cfg.Realtime.Transport != "redis" || cfg.Realtime.Redis.Addr != "cache:6379" {
		t.Errorf("realtime = %+v", cfg.Realtime)
	}
	if cfg.Source.Kind != source.KindHTTP || cfg.Source.CacheTTL != 90*time.Second {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Server.SessionTTL != time.Hour {
		t.Errorf("session_ttl = %v", cfg.Server.SessionTTL)
	}
	if lvl, _ := cfg.LogLevel(); lvl != log.DebugLevel {
		t.Errorf("LogLevel() = %v", lvl)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"unknown key", "[viewer]\nzoom = 2\n", errors.ErrCodeInvalidConfig},
		{"syntax", "[viewer\n", errors.ErrCodeInvalidConfig},
		{"bad zoom step", "[viewer]\nzoom_step = 1.5\n", errors.ErrCodeInvalidConfig},
		{"bad transport", "[realtime]\ntransport = \"carrier-pigeon\"\n", errors.ErrCodeInvalidConfig},
		{"bad log level", "[log]\nlevel = \"loud\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	env := map[string]string{
		"FLOORVIEW_TRANSPORT":           "mqtt",
		"FLOORVIEW_MQTT_BROKER":         "tcp://broker:1883",
		"FLOORVIEW_SOURCE":              "postgres",
		"FLOORVIEW_POSTGRES_DSN":        "postgres://floorview@db/floorview",
		"FLOORVIEW_SESSION_TTL":         "5m",
		"FLOORVIEW_MAX_SESSIONS":        "12",
		"FLOORVIEW_VIEWER_NARROW_SCALE": "0.5",
	}
	cfg := Default()
	if err := cfg.LoadFromEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Realtime.Transport != "mqtt" || cfg.Realtime.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("realtime = %+v", cfg.Realtime)
	}
	if cfg.Source.Kind != source.KindPostgres || cfg.Source.PostgresDSN == "" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Server.SessionTTL != 5*time.Minute || cfg.Server.MaxSessions != 12 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Viewer.NarrowScale != 0.5 {
		t.Errorf("narrow scale = %v", cfg.Viewer.NarrowScale)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFromEnvRejectsGarbage(t *testing.T) {
	for _, key := range []string{"FLOORVIEW_REDIS_DB", "FLOORVIEW_VIEWER_ZOOM_STEP", "FLOORVIEW_CACHE_TTL"} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.LoadFromEnv(func(k string) string {
				if k == key {
					return "lots"
				}
				return ""
			})
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("LoadFromEnv() error = %v", err)
			}
		})
	}
}
