package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

// Default terminal cell size in screen pixels.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

var (
	termRoomStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	termLitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E293B")).Background(lipgloss.Color("#FDE68A"))
	termMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	termCTAStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
)

// TermOption configures [RenderTerminal].
type TermOption func(*termRenderer)

type termRenderer struct {
	cellW, cellH float64
	plain        bool
}

// WithCellSize sets how many screen pixels one character cell covers.
func WithCellSize(w, h float64) TermOption {
	return func(r *termRenderer) {
		if w > 0 && h > 0 {
			r.cellW, r.cellH = w, h
		}
	}
}

// WithPlain disables colors, which keeps output comparable in tests and
// readable when piped.
func WithPlain() TermOption { return func(r *termRenderer) { r.plain = true } }

// CellToScreen returns the screen point at the center of a character cell.
func CellToScreen(col, row int, cellW, cellH float64) geom.Point {
	return geom.Point{X: (float64(col) + 0.5) * cellW, Y: (float64(row) + 0.5) * cellH}
}

// RenderTerminal draws the frame as lines of text filling the viewport.
// Later rooms overwrite earlier ones where they overlap.
func RenderTerminal(f Frame, opts ...TermOption) string {
	r := termRenderer{cellW: DefaultCellWidth, cellH: DefaultCellHeight}
	for _, opt := range opts {
		opt(&r)
	}
	cols := int(f.Viewport.Width / r.cellW)
	rows := int(f.Viewport.Height / r.cellH)
	if cols <= 0 || rows <= 0 {
		return ""
	}

	g := newGrid(cols, rows)
	if f.Empty {
		g.center(rows/2-1, EmptyMessage, ownerMuted)
		g.center(rows/2+1, "[ "+EditorCTA+" ]", ownerCTA)
	} else {
		for i, b := range f.Blocks {
			x0, y0, x1, y1 := r.cells(b.Rect)
			g.block(i, x0, y0, x1, y1, b.Name)
		}
	}
	return g.String(f, r.plain)
}

func (r termRenderer) cells(rect geom.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Round(rect.X / r.cellW))
	y0 = int(math.Round(rect.Y / r.cellH))
	x1 = int(math.Round(rect.Right()/r.cellW)) - 1
	y1 = int(math.Round(rect.Bottom()/r.cellH)) - 1
	return
}

const (
	ownerNone  = -1
	ownerMuted = -2
	ownerCTA   = -3
)

type grid struct {
	cols, rows int
	runes      [][]rune
	owner      [][]int
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, runes: make([][]rune, rows), owner: make([][]int, rows)}
	for y := 0; y < rows; y++ {
		g.runes[y] = []rune(strings.Repeat(" ", cols))
		g.owner[y] = make([]int, cols)
		for x := range g.owner[y] {
			g.owner[y][x] = ownerNone
		}
	}
	return g
}

func (g *grid) set(x, y int, r rune, owner int) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.runes[y][x] = r
	g.owner[y][x] = owner
}

func (g *grid) block(i, x0, y0, x1, y1 int, name string) {
	if x1 < x0 || y1 < y0 {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ch := ' '
			switch {
			case (x == x0 || x == x1) && (y == y0 || y == y1):
				ch = '+'
			case y == y0 || y == y1:
				ch = '-'
			case x == x0 || x == x1:
				ch = '|'
			}
			g.set(x, y, ch, i)
		}
	}
	inner := x1 - x0 - 1
	if inner <= 0 || y1-y0 < 2 || name == "" {
		return
	}
	label := []rune(name)
	if len(label) > inner {
		label = label[:inner]
	}
	y := (y0 + y1) / 2
	x := x0 + 1 + (inner-len(label))/2
	for j, ch := range label {
		g.set(x+j, y, ch, i)
	}
}

func (g *grid) center(y int, text string, owner int) {
	rs := []rune(text)
	x := (g.cols - len(rs)) / 2
	for j, ch := range rs {
		g.set(x+j, y, ch, owner)
	}
}

func (g *grid) String(f Frame, plain bool) string {
	var sb strings.Builder
	for y := 0; y < g.rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		if plain {
			sb.WriteString(string(g.runes[y]))
			continue
		}
		start := 0
		for x := 1; x <= g.cols; x++ {
			if x < g.cols && g.owner[y][x] == g.owner[y][start] {
				continue
			}
			sb.WriteString(styleFor(f, g.owner[y][start]).Render(string(g.runes[y][start:x])))
			start = x
		}
	}
	return sb.String()
}

func styleFor(f Frame, owner int) lipgloss.Style {
	switch {
	case owner == ownerMuted:
		return termMutedStyle
	case owner == ownerCTA:
		return termCTAStyle
	case owner >= 0 && f.Blocks[owner].LightOn:
		return termLitStyle
	case owner >= 0:
		return termRoomStyle
	}
	return lipgloss.NewStyle()
}
