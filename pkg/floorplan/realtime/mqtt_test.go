package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroker is an in-memory stand-in for a connected paho client.
type fakeBroker struct {
	mqtt.Client
	mu           sync.Mutex
	routes       map[string]mqtt.MessageHandler
	subscribes   int
	unsubscribes int
	disconnected bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{routes: make(map[string]mqtt.MessageHandler)}
}

func (b *fakeBroker) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[topic] = cb
	b.subscribes++
	return doneToken{}
}

func (b *fakeBroker) Unsubscribe(topics ...string) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		delete(b.routes, t)
	}
	b.unsubscribes++
	return doneToken{}
}

func (b *fakeBroker) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	cb := b.routes[topic]
	b.mu.Unlock()
	if cb != nil {
		cb(b, fakeMessage{topic: topic, payload: payload.([]byte)})
	}
	return doneToken{}
}

func (b *fakeBroker) Disconnect(uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = true
}

type doneToken struct {
	mqtt.Token
}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func TestMQTT_PublishSubscribe(t *testing.T) {
	b := newFakeBroker()
	m := NewMQTT(b, WithPrefix("home"), WithQoS(1))
	ctx := context.Background()

	var got []string
	sub, err := m.Subscribe(ctx, "ground", func(p []byte) { got = append(got, string(p)) })
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, m.Publish(ctx, "ground", LightPatch("kitchen", false)))
	require.NoError(t, m.Publish(ctx, "upper", LightPatch("attic", true)))

	require.Len(t, got, 1)
	assert.JSONEq(t, `{"roomId":"kitchen","lightOn":false}`, got[0])
	assert.Contains(t, b.routes, "home/floors/ground/patches")
}

func TestMQTT_SharedTopicSubscription(t *testing.T) {
	b := newFakeBroker()
	m := NewMQTT(b)
	ctx := context.Background()

	var a, c int
	s1, err := m.Subscribe(ctx, "ground", func([]byte) { a++ })
	require.NoError(t, err)
	s2, err := m.Subscribe(ctx, "ground", func([]byte) { c++ })
	require.NoError(t, err)
	assert.Equal(t, 1, b.subscribes)

	require.NoError(t, m.Publish(ctx, "ground", LightPatch("kitchen", true)))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, c)

	require.NoError(t, s1.Close())
	assert.Equal(t, 0, b.unsubscribes)
	require.NoError(t, m.Publish(ctx, "ground", LightPatch("kitchen", false)))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, c)

	require.NoError(t, s2.Close())
	assert.Equal(t, 1, b.unsubscribes)
	assert.Empty(t, b.routes)
}

func TestMQTT_CloseDisconnectsOwnedClient(t *testing.T) {
	b := newFakeBroker()
	require.NoError(t, NewMQTT(b).Close())
	assert.False(t, b.disconnected)

	require.NoError(t, NewMQTT(b, WithOwnedClient()).Close())
	assert.True(t, b.disconnected)
}
