// Package gesture turns raw pointer and touch input into transform deltas.
//
// # Input
//
// Platform adapters translate native events into [Input] values. Each input
// carries a [Phase] and the full list of contacts that are down after the
// event, so the recognizer never has to track contact identities:
//
//	r := gesture.New(gesture.WithBounds(geom.Size{Width: 800, Height: 600}))
//	d := r.Handle(gesture.Input{Phase: gesture.Start, Contacts: []geom.Point{{X: 100, Y: 100}}})
//	d = r.Handle(gesture.Input{Phase: gesture.Move, Contacts: []geom.Point{{X: 130, Y: 115}}})
//	t = d.Apply(t) // offset shifted by (30, 15)
//
// # States
//
// A [Recognizer] is always in exactly one [Mode]:
//
//   - [Idle]: no gesture. A single contact going down inside the canvas
//     starts a pan. Two contacts going down together start a pinch.
//   - [Panning]: every move yields a [Delta] whose Pan field is the screen
//     distance travelled since the previous event. A second contact switches
//     straight to pinching with no blended frame.
//   - [Pinching]: every move yields a Zoom factor, the ratio of the new
//     contact distance to the previous one. When fewer than two contacts
//     remain the recognizer returns to Idle; the remaining contact must be
//     lifted and pressed again to pan.
//
// Events that make no sense in the current state (a move while idle, a
// release with nothing down) are ignored and produce a zero [Delta].
//
// # Taps
//
// A pan whose contact never travels further than the drag threshold from
// where it went down ends with Delta.Tapped set. Surfaces hit-test the tap
// position to turn it into a click. Once the threshold is crossed the pan can
// no longer become a tap, even if the contact returns to its start.
package gesture
