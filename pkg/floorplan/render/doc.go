// Package render turns viewer state into something a surface can show.
//
// [NewFrame] projects a [viewer.State] into screen space: one [Block] per room
// with its on-screen rectangle and light state, the zoom percentage, whether
// the reset control should be offered and whether the floor is empty. Frames
// are plain data; the sinks draw them:
//
//   - [RenderSVG]: standalone SVG with optional room links and controls
//   - [RenderJSON]: the frame as indented JSON
//   - [RenderTerminal]: a styled character grid for terminal surfaces
//
// [Frame.HitTest] maps a screen point back to the room drawn there, for
// surfaces that do their own click handling.
package render
