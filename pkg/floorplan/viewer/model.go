package viewer

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/fit"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/gesture"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/observability"
)

// State is an immutable snapshot of a Model.
type State struct {
	FloorID   string
	FloorName string
	Blocks    []floorplan.RoomBlock
	Transform geom.Transform
	// Home is the transform ResetEvent would restore.
	Home     geom.Transform
	Viewport geom.Size
	Gesture  gesture.Mode
	// Version increases with every visible change.
	Version uint64
}

// Empty reports whether the floor has no rooms.
func (s State) Empty() bool { return len(s.Blocks) == 0 }

// ResetVisible reports whether the reset control has anything to restore.
func (s State) ResetVisible() bool {
	return !s.Empty() && s.Transform != s.Home
}

// Option configures a Model.
type Option func(*Model)

// WithRouter sets the navigation target for taps.
func WithRouter(r Router) Option {
	return func(m *Model) {
		if r != nil {
			m.router = r
		}
	}
}

// WithLogger sets the model logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDefaults sets the scales ResetEvent restores.
func WithDefaults(d fit.Defaults) Option {
	return func(m *Model) { m.defaults = d }
}

// WithDragThreshold sets the tap/drag threshold in screen pixels.
func WithDragThreshold(px float64) Option {
	return func(m *Model) { m.gestureOpts = append(m.gestureOpts, gesture.WithDragThreshold(px)) }
}

// Model is the viewer state container. It is not safe for concurrent use.
type Model struct {
	floorID   string
	floorName string
	blocks    []floorplan.RoomBlock
	transform geom.Transform
	viewport  geom.Size

	recognizer  *gesture.Recognizer
	gestureOpts []gesture.Option
	defaults    fit.Defaults
	router      Router
	logger      *log.Logger
	listener    func(State)
	version     uint64
	closed      bool
}

// NewModel returns a model showing floor at the reset view for viewport.
// A nil floor shows the empty state.
func NewModel(floor *floorplan.Floor, viewport geom.Size, opts ...Option) *Model {
	m := &Model{
		viewport: viewport,
		defaults: fit.DefaultDefaults,
		router:   NopRouter{},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.recognizer = gesture.New(append(m.gestureOpts, gesture.WithBounds(viewport))...)
	if floor != nil {
		m.floorID, m.floorName = floor.ID, floor.Name
		m.blocks = floorplan.Clone(floor.Blocks)
	}
	m.transform = m.home()
	return m
}

// Subscribe sets the single listener notified after each visible change and
// returns a function that removes it.
func (m *Model) Subscribe(fn func(State)) (cancel func()) {
	m.listener = fn
	return func() { m.listener = nil }
}

// State returns a snapshot.
func (m *Model) State() State {
	return State{
		FloorID:   m.floorID,
		FloorName: m.floorName,
		Blocks:    floorplan.Clone(m.blocks),
		Transform: m.transform,
		Home:      m.home(),
		Viewport:  m.viewport,
		Gesture:   m.recognizer.State().Mode,
		Version:   m.version,
	}
}

// Close detaches the listener. Later events are ignored.
func (m *Model) Close() {
	m.closed = true
	m.listener = nil
	m.recognizer.Cancel()
}

// Closed reports whether Close was called.
func (m *Model) Closed() bool { return m.closed }

// Handle applies ev and reports whether the visible state changed.
func (m *Model) Handle(ev Event) bool {
	if m.closed {
		return false
	}
	var changed bool
	switch ev := ev.(type) {
	case InputEvent:
		changed = m.input(ev.Input)
	case ResizeEvent:
		changed = m.resize(ev.Size)
	case MessageEvent:
		changed = m.message(ev.Payload)
	case PatchEvent:
		changed = m.patch(ev.Patch)
	case ResetEvent:
		m.recognizer.Cancel()
		changed = m.setTransform(m.home())
	case ZoomEvent:
		if ev.Factor > 0 {
			changed = m.setTransform(m.transform.Zoom(ev.Factor))
		}
	case PanEvent:
		changed = m.setTransform(m.transform.Pan(ev.Delta))
	case LoadEvent:
		m.load(ev.Floor)
		changed = true
	}
	if changed {
		m.version++
		if m.listener != nil {
			m.listener(m.State())
		}
	}
	return changed
}

func (m *Model) home() geom.Transform {
	return fit.Reset(m.blocks, m.viewport, m.defaults, m.transform)
}

func (m *Model) setTransform(t geom.Transform) bool {
	if t == m.transform {
		return false
	}
	m.transform = t
	return true
}

func (m *Model) input(in gesture.Input) bool {
	d := m.recognizer.Handle(in)
	changed := m.setTransform(d.Apply(m.transform))
	if d.Tapped {
		m.tap(d.Tap)
	}
	return changed
}

func (m *Model) tap(screen geom.Point) {
	if len(m.blocks) == 0 {
		m.logger.Debug("tap on empty floor", "floor", m.floorID)
		observability.Viewer().OnNavigate(m.floorID, string(IntentEditor))
		m.router.OpenEditor(m.floorID)
		return
	}
	i := floorplan.HitTest(m.blocks, geom.ToLayout(screen, m.transform))
	if i < 0 {
		return
	}
	id := m.blocks[i].ID
	m.logger.Debug("open room", "floor", m.floorID, "room", id)
	observability.Viewer().OnNavigate(m.floorID, id)
	m.router.OpenRoom(id)
}

func (m *Model) resize(s geom.Size) bool {
	if s == m.viewport {
		return false
	}
	first := m.viewport.Empty()
	m.viewport = s
	m.recognizer.SetBounds(s)
	if first {
		// The first real size picks the default scale for it.
		m.transform = m.home()
		return true
	}
	m.transform.Offset = fit.Center(m.blocks, s, m.transform.Scale, m.transform.Offset)
	return true
}

func (m *Model) message(payload []byte) bool {
	p, err := realtime.Decode(payload)
	if err != nil {
		m.logger.Warn("dropping malformed patch", "floor", m.floorID, "err", err)
		observability.Viewer().OnPatchDropped(m.floorID, "malformed")
		return false
	}
	return m.patch(p)
}

func (m *Model) patch(p realtime.Patch) bool {
	i := floorplan.Index(m.blocks, p.RoomID)
	if i < 0 {
		m.logger.Debug("dropping patch for unknown room", "floor", m.floorID, "room", p.RoomID)
		observability.Viewer().OnPatchDropped(m.floorID, "unknown room")
		return false
	}
	before := m.blocks[i]
	realtime.Apply(m.blocks, p)
	observability.Viewer().OnPatchApplied(m.floorID, p.RoomID)
	return m.blocks[i] != before
}

func (m *Model) load(f *floorplan.Floor) {
	m.recognizer.Cancel()
	m.floorID, m.floorName, m.blocks = "", "", nil
	if f != nil {
		m.floorID, m.floorName = f.ID, f.Name
		m.blocks = floorplan.Clone(f.Blocks)
	}
	m.transform.Offset = fit.Center(m.blocks, m.viewport, m.transform.Scale, m.transform.Offset)
}
