package geom

import "math"

// Scale bounds enforced by [ClampScale].
const (
	MinScale = 0.5
	MaxScale = 2.0
)

// Point is a 2D position. Units depend on context: layout or screen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Size is a width/height pair, typically the viewport in screen pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x" toml:"x" bson:"x"`
	Y      float64 `json:"y" toml:"y" bson:"y"`
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r. The top-left edges are
// inclusive and the bottom-right edges exclusive, so adjacent rooms never
// both claim a shared border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Transform maps layout space to screen space.
type Transform struct {
	Scale  float64 `json:"scale"`
	Offset Point   `json:"offset"`
}

// Identity is the transform with scale 1 and no offset.
var Identity = Transform{Scale: 1}

// ZoomPercent returns the scale as a rounded percentage.
func (t Transform) ZoomPercent() int { return int(math.Round(t.Scale * 100)) }

// Pan adds a screen-space delta to the offset without dividing by the
// scale, so pan speed in offset units is the same at every zoom level.
func (t Transform) Pan(d Point) Transform {
	t.Offset = t.Offset.Add(d)
	return t
}

// Zoom multiplies the scale by factor and clamps the result.
func (t Transform) Zoom(factor float64) Transform {
	t.Scale = ClampScale(t.Scale * factor)
	return t
}

// ToScreen converts a layout-space point to screen space.
func ToScreen(p Point, t Transform) Point {
	return p.Add(t.Offset).Mul(t.Scale)
}

// ToLayout converts a screen-space point to layout space.
// It is the inverse of [ToScreen] for any non-zero scale.
func ToLayout(p Point, t Transform) Point {
	return p.Mul(1 / t.Scale).Sub(t.Offset)
}

// RectToScreen converts a layout rectangle to its on-screen rectangle.
func RectToScreen(r Rect, t Transform) Rect {
	tl := ToScreen(Point{X: r.X, Y: r.Y}, t)
	return Rect{X: tl.X, Y: tl.Y, Width: r.Width * t.Scale, Height: r.Height * t.Scale}
}

// ClampScale restricts s to [MinScale, MaxScale]. NaN maps to MinScale.
func ClampScale(s float64) float64 {
	switch {
	case math.IsNaN(s), s < MinScale:
		return MinScale
	case s > MaxScale:
		return MaxScale
	default:
		return s
	}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Bounds returns the smallest rectangle enclosing all rects.
// The second result is false when rects is empty.
func Bounds(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].Right(), rects[0].Bottom()
	for _, r := range rects[1:] {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
