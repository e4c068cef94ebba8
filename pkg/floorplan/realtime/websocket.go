package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/observability"
)

// DefaultStreamURL points at the relay served by "floorview serve".
const DefaultStreamURL = "ws://localhost:8080/api/v1/floors/{floor}/ws"

// WebSocket reads patches from a relay that writes one patch per text
// message. The URL template's {floor} placeholder is replaced by the floor id.
type WebSocket struct {
	template string
	dialer   *websocket.Dialer
	opts     options
}

var _ Transport = (*WebSocket)(nil)

// NewWebSocket returns a client for the given URL template.
func NewWebSocket(template string, opts ...Option) *WebSocket {
	if template == "" {
		template = DefaultStreamURL
	}
	return &WebSocket{
		template: template,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		opts:     newOptions(opts),
	}
}

// Subscribe dials the floor's stream.
func (w *WebSocket) Subscribe(ctx context.Context, floorID string, h Handler) (Subscription, error) {
	if err := errors.ValidateFloorID(floorID); err != nil {
		return nil, err
	}
	u := StreamURL(w.template, floorID)
	conn, resp, err := w.dialer.DialContext(ctx, u, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	observability.Transport().OnSubscribe(ctx, "websocket", u, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "dial %s", u)
	}

	s := &wsSubscription{url: u, conn: conn, done: make(chan struct{})}
	s.handler = h
	go s.run(context.WithoutCancel(ctx), w.opts)
	return s, nil
}

// Close is a no-op; each subscription owns its connection.
func (w *WebSocket) Close() error { return nil }

type wsSubscription struct {
	subscription
	url       string
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func (s *wsSubscription) run(ctx context.Context, o options) {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isClosed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				o.logger.Warn("stream closed", "url", s.url, "err", err)
			}
			return
		}
		observability.Transport().OnMessage(ctx, "websocket", s.url, len(data))
		if !s.deliver(s.handler, data) {
			return
		}
	}
}

func (s *wsSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close sends a close frame, drops the connection and waits for the read
// loop to exit.
func (s *wsSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.close()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = s.conn.Close()
		<-s.done
		observability.Transport().OnUnsubscribe(context.Background(), "websocket", s.url)
	})
	return nil
}
