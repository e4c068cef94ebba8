package gesture

import (
	"fmt"

	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

// DefaultDragThreshold is the pointer travel, in screen pixels, beyond which
// a press is a drag rather than a tap.
const DefaultDragThreshold = 5.0

// Phase is the kind of raw input event.
type Phase int

const (
	Start Phase = iota // a contact went down
	Move               // one or more contacts moved
	End                // a contact was lifted or left the canvas
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "start"
	case Move:
		return "move"
	case End:
		return "end"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Input is one normalized pointer or touch event. Contacts lists every
// contact that is down after the event, in screen coordinates.
type Input struct {
	Phase    Phase        `json:"phase"`
	Contacts []geom.Point `json:"contacts"`
}

// Mode is the recognizer's gesture state.
type Mode int

const (
	Idle Mode = iota
	Panning
	Pinching
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// State is a snapshot of the recognizer.
type State struct {
	Mode Mode
	// Last is the most recent pointer position while panning.
	Last geom.Point
	// Origin is where the pan started.
	Origin geom.Point
	// Dragged is set once the pan travelled past the drag threshold.
	Dragged bool
	// LastDistance is the contact spread while pinching.
	LastDistance float64
}

// Delta is the effect of one input on the viewport transform.
type Delta struct {
	Pan    geom.Point
	Zoom   float64 // multiplicative; 0 means no change
	Tapped bool
	Tap    geom.Point
}

// Changed reports whether applying d would alter a transform.
func (d Delta) Changed() bool {
	return d.Pan != (geom.Point{}) || (d.Zoom != 0 && d.Zoom != 1)
}

// Apply returns t with the pan added to the offset and the scale multiplied
// by the zoom factor, clamped.
func (d Delta) Apply(t geom.Transform) geom.Transform {
	if d.Pan != (geom.Point{}) {
		t = t.Pan(d.Pan)
	}
	if d.Zoom != 0 && d.Zoom != 1 {
		t = t.Zoom(d.Zoom)
	}
	return t
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithDragThreshold sets the tap/drag threshold in screen pixels.
func WithDragThreshold(px float64) Option {
	return func(r *Recognizer) {
		if px >= 0 {
			r.threshold = px
		}
	}
}

// WithBounds sets the canvas size used to accept new pans.
func WithBounds(s geom.Size) Option {
	return func(r *Recognizer) { r.bounds = s }
}

// Recognizer is the pan/pinch state machine. It is not safe for concurrent
// use; callers serialize input through one goroutine.
type Recognizer struct {
	bounds    geom.Size
	threshold float64
	state     State
}

// New returns an idle Recognizer.
func New(opts ...Option) *Recognizer {
	r := &Recognizer{threshold: DefaultDragThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetBounds updates the canvas size. A zero size accepts every contact.
func (r *Recognizer) SetBounds(s geom.Size) { r.bounds = s }

// Bounds returns the canvas size.
func (r *Recognizer) Bounds() geom.Size { return r.bounds }

// Threshold returns the tap/drag threshold in screen pixels.
func (r *Recognizer) Threshold() float64 { return r.threshold }

// State returns the current gesture state.
func (r *Recognizer) State() State { return r.state }

// Cancel abandons any gesture in progress without emitting a tap.
func (r *Recognizer) Cancel() { r.state = State{} }

// Handle advances the state machine by one input.
func (r *Recognizer) Handle(in Input) Delta {
	switch r.state.Mode {
	case Idle:
		return r.idle(in)
	case Panning:
		return r.panning(in)
	case Pinching:
		return r.pinching(in)
	}
	return Delta{}
}

func (r *Recognizer) idle(in Input) Delta {
	if in.Phase != Start {
		return Delta{}
	}
	switch {
	case len(in.Contacts) == 1:
		p := in.Contacts[0]
		if !r.inside(p) {
			return Delta{}
		}
		r.state = State{Mode: Panning, Last: p, Origin: p}
	case len(in.Contacts) >= 2:
		if !r.inside(in.Contacts[0]) {
			return Delta{}
		}
		r.state = State{Mode: Pinching, LastDistance: spread(in.Contacts)}
	}
	return Delta{}
}

func (r *Recognizer) panning(in Input) Delta {
	if len(in.Contacts) >= 2 {
		r.state = State{Mode: Pinching, LastDistance: spread(in.Contacts)}
		return Delta{}
	}
	if in.Phase == End || len(in.Contacts) == 0 {
		s := r.state
		r.state = State{}
		if s.Dragged {
			return Delta{}
		}
		return Delta{Tapped: true, Tap: s.Last}
	}
	if in.Phase == Start {
		// A press without a release in between restarts the pan from there.
		r.state = State{}
		return r.idle(in)
	}
	if in.Phase != Move {
		return Delta{}
	}

	p := in.Contacts[0]
	d := p.Sub(r.state.Last)
	r.state.Last = p
	if !r.state.Dragged && geom.Distance(r.state.Origin, p) > r.threshold {
		r.state.Dragged = true
	}
	return Delta{Pan: d}
}

func (r *Recognizer) pinching(in Input) Delta {
	if len(in.Contacts) < 2 {
		r.state = State{}
		return Delta{}
	}
	dist := spread(in.Contacts)
	last := r.state.LastDistance
	r.state.LastDistance = dist
	if in.Phase != Move || last == 0 || dist == 0 {
		return Delta{}
	}
	return Delta{Zoom: dist / last}
}

func (r *Recognizer) inside(p geom.Point) bool {
	if r.bounds.Empty() {
		return true
	}
	return p.X >= 0 && p.Y >= 0 && p.X <= r.bounds.Width && p.Y <= r.bounds.Height
}

// spread is the distance between the first two contacts. Extra contacts are
// ignored.
func spread(contacts []geom.Point) float64 {
	return geom.Distance(contacts[0], contacts[1])
}
