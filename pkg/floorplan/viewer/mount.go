package viewer

import (
	"context"
	"sync"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/observability"
)

// ErrClosed is returned by a Mount that has been closed.
var ErrClosed = errors.New(errors.ErrCodeClosed, "viewer is unmounted")

// ResizeObserver reports viewport size changes until stop is called. stop
// must not return while a notification is still being delivered.
type ResizeObserver interface {
	Observe(fn func(geom.Size)) (stop func())
}

// MountConfig wires a Mount to its surroundings. Every field is optional.
type MountConfig struct {
	// Channel streams the floor's patches.
	Channel realtime.Channel
	// Resize reports viewport changes.
	Resize ResizeObserver
	// Viewport is the initial viewport size.
	Viewport geom.Size
	// OnChange runs on the event loop after every visible change. It must
	// not call Close.
	OnChange func(State)
	// QueueSize bounds pending events. Default 64.
	QueueSize int
}

type request struct {
	ev    Event
	reply chan State
}

// Mount runs a Model on its own event loop.
type Mount struct {
	model   *Model
	floorID string

	events   chan request
	done     chan struct{}
	loopDone chan struct{}

	sub        realtime.Subscription
	stopResize func()
	closeOnce  sync.Once
}

// Open mounts floor. When cfg.Channel is set, Open returns only after the
// subscription is live; a subscription error unmounts and is returned.
func Open(ctx context.Context, floor *floorplan.Floor, cfg MountConfig, opts ...Option) (*Mount, error) {
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	model := NewModel(floor, cfg.Viewport, opts...)
	if cfg.OnChange != nil {
		model.Subscribe(cfg.OnChange)
	}

	m := &Mount{
		model:    model,
		events:   make(chan request, size),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	if floor != nil {
		m.floorID = floor.ID
	}
	go m.loop()

	if cfg.Resize != nil {
		m.stopResize = cfg.Resize.Observe(func(s geom.Size) {
			m.post(ResizeEvent{Size: s})
		})
	}
	if cfg.Channel != nil && m.floorID != "" {
		sub, err := cfg.Channel.Subscribe(ctx, m.floorID, func(p []byte) {
			m.post(MessageEvent{Payload: p})
		})
		if err != nil {
			m.Close()
			return nil, err
		}
		m.sub = sub
	}

	rooms := 0
	if floor != nil {
		rooms = len(floor.Blocks)
	}
	observability.Viewer().OnMount(m.floorID, rooms)
	model.logger.Debug("mounted", "floor", m.floorID, "rooms", rooms)
	return m, nil
}

func (m *Mount) loop() {
	defer close(m.loopDone)
	defer m.model.Close()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.events:
			if req.ev != nil {
				m.model.Handle(req.ev)
			}
			if req.reply != nil {
				req.reply <- m.model.State()
			}
		}
	}
}

// post queues ev from a callback. It gives up once the mount is closed.
func (m *Mount) post(ev Event) {
	select {
	case m.events <- request{ev: ev}:
	case <-m.done:
	}
}

// Send queues ev behind everything already pending and returns the state
// after it was applied. A nil ev only reads the state.
func (m *Mount) Send(ctx context.Context, ev Event) (State, error) {
	req := request{ev: ev, reply: make(chan State, 1)}
	select {
	case <-m.done:
		return State{}, ErrClosed
	default:
	}
	select {
	case m.events <- req:
	case <-m.done:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	select {
	case s := <-req.reply:
		return s, nil
	case <-m.done:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Snapshot returns the current state once pending events are applied.
func (m *Mount) Snapshot(ctx context.Context) (State, error) {
	return m.Send(ctx, nil)
}

// Close unsubscribes the push channel, detaches the resize observer and
// stops the event loop, in that order, before returning. It is idempotent.
func (m *Mount) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.sub != nil {
			err = m.sub.Close()
		}
		if m.stopResize != nil {
			m.stopResize()
		}
		close(m.done)
		<-m.loopDone
		observability.Viewer().OnUnmount(m.floorID)
	})
	return err
}

// Done is closed once the mount is closed.
func (m *Mount) Done() <-chan struct{} { return m.done }

// Resizer is a ResizeObserver fed by explicit Notify calls, for surfaces
// that learn about size changes from their own input (terminals, HTTP).
type Resizer struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(geom.Size)
}

// Observe registers fn until stop is called.
func (r *Resizer) Observe(fn func(geom.Size)) (stop func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fns == nil {
		r.fns = make(map[int]func(geom.Size))
	}
	id := r.next
	r.next++
	r.fns[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.fns, id)
	}
}

// Notify delivers s to every observer. Delivery holds the lock so stop
// cannot return mid-delivery.
func (r *Resizer) Notify(s geom.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fn := range r.fns {
		fn(s)
	}
}
