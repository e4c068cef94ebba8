// Package viewer holds the state of one floor-plan viewer and runs it.
//
// # Model
//
// [Model] is the state container: the floor's blocks, the viewport transform,
// the viewport size and the gesture recognizer. Every change goes through
// [Model.Handle], which applies one [Event] and, if anything visible changed,
// hands an immutable [State] to the single registered listener:
//
//	m := viewer.NewModel(floor, geom.Size{Width: 800, Height: 600})
//	m.Subscribe(func(s viewer.State) { redraw(render.NewFrame(s)) })
//	m.Handle(viewer.InputEvent{Input: in})
//
// A Model is not safe for concurrent use. Surfaces with their own event loop
// (the terminal UI) drive it directly.
//
// # Mount
//
// [Open] mounts a Model: it subscribes to the floor's push channel, observes
// viewport resizes and processes all of that, plus input sent with
// [Mount.Send], on one goroutine in arrival order. [Mount.Close] unsubscribes
// the channel and detaches the resize observer before it returns; nothing
// delivered afterwards mutates the state.
//
// # Navigation
//
// A tap on a room calls [Router.OpenRoom]. A tap anywhere on a floor without
// rooms calls [Router.OpenEditor], the empty state's call to action. The
// viewer only signals; routing is the caller's business.
package viewer
