package realtime

import (
	"context"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/observability"
)

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	QoS      byte   `toml:"qos"`
}

// mqttTimeout bounds broker round trips that paho only exposes as tokens.
const mqttTimeout = 10 * time.Second

// DialMQTT connects a paho client. An empty ClientID gets a random one.
func DialMQTT(cfg MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "floorview-" + uuid.NewString()[:8]
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, errors.New(errors.ErrCodeTimeout, "connect to MQTT broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to MQTT broker %s", cfg.Broker)
	}
	return client, nil
}

// MQTT carries patches over MQTT topics. Subscriptions to the same floor
// share one broker subscription.
type MQTT struct {
	client mqtt.Client
	opts   options
	hub    hub
	mu     sync.Mutex // serializes broker subscribe/unsubscribe
}

var (
	_ Transport = (*MQTT)(nil)
	_ Publisher = (*MQTT)(nil)
)

// NewMQTT wraps a connected client.
func NewMQTT(client mqtt.Client, opts ...Option) *MQTT {
	return &MQTT{client: client, opts: newOptions(opts)}
}

// Subscribe registers h for the floor's topic.
func (m *MQTT) Subscribe(ctx context.Context, floorID string, h Handler) (Subscription, error) {
	if err := errors.ValidateFloorID(floorID); err != nil {
		return nil, err
	}
	topic := TopicName(m.opts.prefix, floorID)

	m.mu.Lock()
	defer m.mu.Unlock()

	s := &subscription{handler: h}
	s.release = func() error { return m.release(topic, s) }
	if !m.hub.add(topic, s) {
		return s, nil
	}

	token := m.client.Subscribe(topic, m.opts.qos, m.onMessage(ctx))
	err := wait(token)
	observability.Transport().OnSubscribe(ctx, "mqtt", topic, err)
	if err != nil {
		m.hub.remove(topic, s)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "subscribe %s", topic)
	}
	m.opts.logger.Debug("subscribed", "topic", topic, "qos", m.opts.qos)
	return s, nil
}

func (m *MQTT) onMessage(ctx context.Context) mqtt.MessageHandler {
	ctx = context.WithoutCancel(ctx)
	return func(_ mqtt.Client, msg mqtt.Message) {
		observability.Transport().OnMessage(ctx, "mqtt", msg.Topic(), len(msg.Payload()))
		m.hub.deliver(msg.Topic(), msg.Payload())
	}
}

func (m *MQTT) release(topic string, s *subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hub.remove(topic, s) {
		return nil
	}
	observability.Transport().OnUnsubscribe(context.Background(), "mqtt", topic)
	if err := wait(m.client.Unsubscribe(topic)); err != nil {
		m.opts.logger.Warn("unsubscribe failed", "topic", topic, "err", err)
		return errors.Wrap(errors.ErrCodeNetwork, err, "unsubscribe %s", topic)
	}
	return nil
}

// Publish sends p to the floor's topic.
func (m *MQTT) Publish(ctx context.Context, floorID string, p Patch) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	topic := TopicName(m.opts.prefix, floorID)
	err = wait(m.client.Publish(topic, m.opts.qos, false, data))
	observability.Transport().OnPublish(ctx, "mqtt", topic, err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "publish %s", topic)
	}
	return nil
}

// Close disconnects the client when it is owned.
func (m *MQTT) Close() error {
	if m.opts.owned {
		m.client.Disconnect(250)
	}
	return nil
}

func wait(t mqtt.Token) error {
	if !t.WaitTimeout(mqttTimeout) {
		return errors.New(errors.ErrCodeTimeout, "MQTT broker did not respond within %s", mqttTimeout)
	}
	return t.Error()
}
