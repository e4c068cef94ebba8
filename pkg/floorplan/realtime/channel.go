package realtime

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Handler receives the raw payload of one push message.
type Handler func(payload []byte)

// Channel subscribes to the push stream of a floor.
type Channel interface {
	Subscribe(ctx context.Context, floorID string, h Handler) (Subscription, error)
}

// Subscription is an active stream. Close is synchronous and idempotent.
type Subscription interface {
	Close() error
}

// Publisher sends patches to every subscriber of a floor.
type Publisher interface {
	Publish(ctx context.Context, floorID string, p Patch) error
}

// Transport is a Channel that owns a connection.
type Transport interface {
	Channel
	Close() error
}

// DefaultPrefix namespaces channel and topic names.
const DefaultPrefix = "floorview"

// ChannelName returns the Redis channel for a floor.
func ChannelName(prefix, floorID string) string {
	return prefix + ":floor:" + floorID
}

// TopicName returns the MQTT topic for a floor.
func TopicName(prefix, floorID string) string {
	return prefix + "/floors/" + floorID + "/patches"
}

// StreamURL expands the {floor} placeholder of a WebSocket URL template.
func StreamURL(template, floorID string) string {
	return strings.ReplaceAll(template, "{floor}", url.PathEscape(floorID))
}

// Option configures a transport.
type Option func(*options)

type options struct {
	prefix string
	logger *log.Logger
	qos    byte
	owned  bool
}

func newOptions(opts []Option) options {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// WithPrefix sets the namespace used for channel and topic names.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithLogger sets the transport logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithQoS sets the MQTT quality of service for subscriptions and publishes.
func WithQoS(qos byte) Option {
	return func(o *options) {
		if qos <= 2 {
			o.qos = qos
		}
	}
}

// WithOwnedClient makes Close on the transport close the underlying client.
func WithOwnedClient() Option {
	return func(o *options) { o.owned = true }
}

// gate serializes handler calls and blocks them once closed. close waits for
// an in-flight call to finish, which is what makes Subscription.Close
// synchronous.
type gate struct {
	mu     sync.Mutex
	closed bool
}

func (g *gate) deliver(h Handler, payload []byte) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	h(payload)
	return true
}

// close reports whether this call closed the gate.
func (g *gate) close() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.closed = true
	return true
}

// subscription is a gated handler registered in a hub.
type subscription struct {
	gate
	handler Handler
	release func() error
}

func (s *subscription) Close() error {
	if !s.close() {
		return nil
	}
	if s.release != nil {
		return s.release()
	}
	return nil
}

// hub fans payloads out to the subscriptions of each channel name.
type hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}
}

// add reports whether s is the first subscriber of name.
func (h *hub) add(name string, s *subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[string]map[*subscription]struct{})
	}
	set, ok := h.subs[name]
	if !ok {
		set = make(map[*subscription]struct{})
		h.subs[name] = set
	}
	set[s] = struct{}{}
	return len(set) == 1
}

// remove reports whether name has no subscribers left.
func (h *hub) remove(name string, s *subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[name]
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, name)
		return true
	}
	return false
}

func (h *hub) count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[name])
}

// deliver calls every live subscriber of name and returns how many ran.
// Handlers run outside the hub lock so they may subscribe or close others.
func (h *hub) deliver(name string, payload []byte) int {
	h.mu.RLock()
	targets := make([]*subscription, 0, len(h.subs[name]))
	for s := range h.subs[name] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	n := 0
	for _, s := range targets {
		if s.deliver(s.handler, payload) {
			n++
		}
	}
	return n
}
