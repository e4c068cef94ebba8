package realtime

import (
	"context"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/observability"
)

// Memory is an in-process broker. Publish delivers synchronously on the
// caller's goroutine, in subscription order per subscriber.
type Memory struct {
	hub  hub
	opts options
}

var (
	_ Transport = (*Memory)(nil)
	_ Publisher = (*Memory)(nil)
)

// NewMemory returns an empty broker.
func NewMemory(opts ...Option) *Memory {
	return &Memory{opts: newOptions(opts)}
}

// Subscribe registers h for the floor's patches.
func (m *Memory) Subscribe(ctx context.Context, floorID string, h Handler) (Subscription, error) {
	if err := errors.ValidateFloorID(floorID); err != nil {
		return nil, err
	}
	name := ChannelName(m.opts.prefix, floorID)
	s := &subscription{handler: h}
	s.release = func() error {
		m.hub.remove(name, s)
		observability.Transport().OnUnsubscribe(context.Background(), "memory", name)
		return nil
	}
	m.hub.add(name, s)
	observability.Transport().OnSubscribe(ctx, "memory", name, nil)
	return s, nil
}

// Publish encodes p and delivers it to the floor's subscribers.
func (m *Memory) Publish(ctx context.Context, floorID string, p Patch) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return m.PublishRaw(ctx, floorID, data)
}

// PublishRaw delivers payload as-is, malformed or not.
func (m *Memory) PublishRaw(ctx context.Context, floorID string, payload []byte) error {
	name := ChannelName(m.opts.prefix, floorID)
	n := m.hub.deliver(name, payload)
	observability.Transport().OnPublish(ctx, "memory", name, nil)
	m.opts.logger.Debug("published", "channel", name, "subscribers", n)
	return nil
}

// Subscribers returns the number of live subscriptions for a floor.
func (m *Memory) Subscribers(floorID string) int {
	return m.hub.count(ChannelName(m.opts.prefix, floorID))
}

// Close is a no-op; subscriptions stay valid until closed individually.
func (m *Memory) Close() error { return nil }
