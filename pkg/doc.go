// Package pkg provides the core libraries for Floorview, an interactive floor
// plan viewer.
//
// # Overview
//
// A floor is a set of rectangular rooms in layout units. Floorview maps them
// to the screen through a pan and zoom transform, turns pointer and touch
// input into gestures, keeps the plan centered as the viewport changes, and
// applies room light changes as they arrive on a realtime channel. The pkg
// directory is organized into three areas:
//
//  1. [floorplan] - Domain logic (geometry, gestures, fitting, patches, viewer, rendering)
//  2. [source] - Where floors come from (files, HTTP, MongoDB, PostgreSQL)
//  3. Infrastructure ([cache], [config], [session], [httputil], [errors], [observability])
//
// # Architecture
//
// The data flow for one viewer:
//
//	Layout source (file, HTTP, MongoDB, PostgreSQL)
//	         ↓
//	    [source] package (load and validate, optionally cached)
//	         ↓
//	    [floorplan/viewer] package (transform + gestures + patches)
//	         ↑                ↓
//	realtime channel     [floorplan/render] package
//	(memory, Redis,           ↓
//	 MQTT, WebSocket)    SVG/JSON/terminal frame
//
// # Quick Start
//
// Load a floor and render it centered in a phone-sized viewport:
//
//	src, _ := source.NewFile("floors")
//	floor, _ := source.Load(ctx, src, "ground", logger)
//
//	m := viewer.NewModel(floor, geom.Size{Width: 390, Height: 844})
//	defer m.Close()
//
//	m.Handle(viewer.ZoomIn(0.1))
//	svg := render.RenderSVG(render.NewFrame(m.State()))
//
// # Main Packages
//
// ## Core Domain Logic
//
// [floorplan/geom] - Points, sizes, rectangles and the layout to screen
// transform. Scale is always clamped to [geom.MinScale, geom.MaxScale].
//
// [floorplan/gesture] - Pointer state machine recognizing taps, pans and
// pinches from normalized input.
//
// [floorplan/fit] - Default scale for a viewport and the offset that centers
// a floor in it.
//
// [floorplan/realtime] - Light patches and the channels that carry them:
// in-process memory, Redis pub/sub, MQTT topics and WebSocket streams.
//
// [floorplan/viewer] - The viewer state machine and its mount, an event loop
// owning one model per surface.
//
// [floorplan/render] - Frames in screen space and their SVG, JSON and
// terminal renderings.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches behind one interface.
//
// [config] - TOML configuration with FLOORVIEW_ environment overrides.
//
// [session] - TTL store of mounted viewers for the HTTP server.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/floorplan/...        # Domain logic only
//	go test -run Example ./pkg/...     # Examples only
//
// [floorplan]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan
// [floorplan/geom]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan/geom
// [floorplan/gesture]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan/gesture
// [floorplan/fit]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan/fit
// [floorplan/realtime]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan/realtime
// [floorplan/viewer]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan/viewer
// [floorplan/render]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/floorplan/render
// [source]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/config
// [session]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/floorview/pkg/observability
package pkg
