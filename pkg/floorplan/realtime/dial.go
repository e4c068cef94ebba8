package realtime

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/floorview/pkg/errors"
)

// Transport names accepted by [Open].
const (
	TransportMemory    = "memory"
	TransportRedis     = "redis"
	TransportMQTT      = "mqtt"
	TransportWebSocket = "websocket"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// WebSocketConfig holds the relay URL template.
type WebSocketConfig struct {
	URL string `toml:"url"`
}

// Config selects and configures a transport.
type Config struct {
	Transport string          `toml:"transport"`
	Prefix    string          `toml:"prefix"`
	Redis     RedisConfig     `toml:"redis"`
	MQTT      MQTTConfig      `toml:"mqtt"`
	WebSocket WebSocketConfig `toml:"websocket"`
}

// DefaultConfig uses the in-process broker.
func DefaultConfig() Config {
	return Config{
		Transport: TransportMemory,
		Prefix:    DefaultPrefix,
		Redis:     RedisConfig{Addr: "localhost:6379"},
		MQTT:      MQTTConfig{Broker: "tcp://localhost:1883", QoS: 1},
		WebSocket: WebSocketConfig{URL: DefaultStreamURL},
	}
}

// Validate checks the settings of the selected transport only.
func (c Config) Validate() error {
	switch strings.ToLower(c.Transport) {
	case TransportMemory:
	case TransportRedis:
		if c.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "realtime.redis.addr is required")
		}
	case TransportMQTT:
		if c.MQTT.Broker == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "realtime.mqtt.broker is required")
		}
		if c.MQTT.QoS > 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "realtime.mqtt.qos must be 0, 1 or 2")
		}
	case TransportWebSocket:
		if err := errors.ValidateURL(c.WebSocket.URL, "ws", "wss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "realtime.websocket.url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown realtime transport %q", c.Transport)
	}
	return nil
}

// Open connects the configured transport. The returned transport owns its
// connection and must be closed.
func Open(ctx context.Context, c Config, logger *log.Logger) (Transport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []Option{WithPrefix(c.Prefix), WithLogger(logger), WithOwnedClient()}

	switch strings.ToLower(c.Transport) {
	case TransportRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis %s", c.Redis.Addr)
		}
		return NewRedis(client, opts...), nil
	case TransportMQTT:
		client, err := DialMQTT(c.MQTT)
		if err != nil {
			return nil, err
		}
		return NewMQTT(client, append(opts, WithQoS(c.MQTT.QoS))...), nil
	case TransportWebSocket:
		return NewWebSocket(c.WebSocket.URL, opts...), nil
	default:
		return NewMemory(opts...), nil
	}
}
