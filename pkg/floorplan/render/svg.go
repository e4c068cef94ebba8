package render

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"
)

// Theme holds the SVG colors.
type Theme struct {
	Background string
	Room       string
	RoomLit    string
	Stroke     string
	Text       string
	Muted      string
}

// DefaultTheme is a light dashboard palette.
var DefaultTheme = Theme{
	Background: "#f8fafc",
	Room:       "#e2e8f0",
	RoomLit:    "#fde68a",
	Stroke:     "#475569",
	Text:       "#0f172a",
	Muted:      "#64748b",
}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme    Theme
	labels   bool
	controls bool
	linkBase string
}

// WithTheme replaces the color palette.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithoutLabels omits room names.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithoutControls omits the zoom readout and reset control.
func WithoutControls() SVGOption { return func(r *svgRenderer) { r.controls = false } }

// WithLinks wraps each room in a link to base + "/rooms/" + id, and the empty
// state's call to action in a link to base + "/floors/" + floor + "/editor".
func WithLinks(base string) SVGOption {
	return func(r *svgRenderer) { r.linkBase = strings.TrimRight(base, "/") }
}

// RenderSVG draws the frame at its viewport size.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := svgRenderer{theme: DefaultTheme, labels: true, controls: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := f.Viewport.Width, f.Viewport.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)

	if f.Empty {
		r.renderEmpty(&buf, f)
	} else {
		for _, b := range f.Blocks {
			r.renderBlock(&buf, b)
		}
	}
	if r.controls && !f.Empty {
		r.renderControls(&buf, f)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderBlock(buf *bytes.Buffer, b Block) {
	fill, class := r.theme.Room, "room"
	if b.LightOn {
		fill, class = r.theme.RoomLit, "room lit"
	}
	if r.linkBase != "" {
		fmt.Fprintf(buf, `  <a href="%s/rooms/%s">`+"\n", html.EscapeString(r.linkBase), url.PathEscape(b.ID))
	}
	fmt.Fprintf(buf, `  <rect id="room-%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		html.EscapeString(b.ID), class, b.Rect.X, b.Rect.Y, b.Rect.Width, b.Rect.Height, fill, r.theme.Stroke)
	if r.labels && b.Name != "" {
		c := b.Rect.Center()
		fmt.Fprintf(buf, `  <text class="room-label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			c.X, c.Y, r.theme.Text, html.EscapeString(b.Name))
	}
	if r.linkBase != "" {
		buf.WriteString("  </a>\n")
	}
}

func (r *svgRenderer) renderEmpty(buf *bytes.Buffer, f Frame) {
	cx, cy := f.Viewport.Width/2, f.Viewport.Height/2
	fmt.Fprintf(buf, `  <text class="empty" x="%.2f" y="%.2f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="%s">%s</text>`+"\n",
		cx, cy-12, r.theme.Muted, EmptyMessage)
	if r.linkBase != "" {
		fmt.Fprintf(buf, `  <a href="%s/floors/%s/editor">`+"\n", html.EscapeString(r.linkBase), url.PathEscape(f.FloorID))
	}
	fmt.Fprintf(buf, `  <text class="cta" x="%.2f" y="%.2f" text-anchor="middle" font-family="sans-serif" font-size="14" font-weight="bold" fill="%s">%s</text>`+"\n",
		cx, cy+12, r.theme.Text, EditorCTA)
	if r.linkBase != "" {
		buf.WriteString("  </a>\n")
	}
}

func (r *svgRenderer) renderControls(buf *bytes.Buffer, f Frame) {
	x := f.Viewport.Width - 8
	fmt.Fprintf(buf, `  <text class="zoom" x="%.2f" y="20" text-anchor="end" font-family="sans-serif" font-size="12" fill="%s">%d%%</text>`+"\n",
		x, r.theme.Muted, f.ZoomPercent)
	if f.ShowReset {
		fmt.Fprintf(buf, `  <text class="reset" x="%.2f" y="38" text-anchor="end" font-family="sans-serif" font-size="12" fill="%s">Reset view</text>`+"\n",
			x, r.theme.Text)
	}
}
