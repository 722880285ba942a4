// pkg/render/terminal.go
package render

import (
	"io"
	"math"
	"strings"

	"golang.org/x/term"

	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// Glyphs used by the terminal renderer.
const (
	glyphEmpty  = ' '
	glyphBody   = 'o'
	glyphCenter = '@'
	glyphRegion = '.'
)

// hudRows is the number of lines below the field reserved for the HUD.
const hudRows = 3

// TerminalRenderer provides a simple ASCII-based rendering for terminals.
// Lines end in "\r\n" so output stays aligned in raw mode.
type TerminalRenderer struct {
	out    io.Writer
	width  int
	height int
	buffer [][]rune
	world  physics.Bounds
	hud    []string
	err    error
}

// NewTerminalRenderer creates a renderer drawing world into a field of
// width×height cells.
func NewTerminalRenderer(out io.Writer, width, height int, world physics.Bounds) *TerminalRenderer {
	r := &TerminalRenderer{out: out, world: world}
	r.Resize(width, height)
	return r
}

// FieldSize returns the field dimensions that fit a terminal of cols×rows
// next to the border and the HUD.
func FieldSize(cols, rows int) (int, int) {
	return max(cols-2, 1), max(rows-2-hudRows, 1)
}

// TerminalFieldSize queries the terminal on fd and returns FieldSize for
// it, or the fallback when fd is not a terminal.
func TerminalFieldSize(fd int, fallbackCols, fallbackRows int) (int, int) {
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		cols, rows = fallbackCols, fallbackRows
	}
	return FieldSize(cols, rows)
}

// Resize reallocates the field.
func (r *TerminalRenderer) Resize(width, height int) {
	r.width = max(width, 1)
	r.height = max(height, 1)
	r.buffer = make([][]rune, r.height)
	for i := range r.buffer {
		r.buffer[i] = make([]rune, r.width)
	}
	r.Clear()
}

// Err returns the last write error, if any.
func (r *TerminalRenderer) Err() error {
	return r.err
}

// cellSize returns the world size of one cell on each axis.
func (r *TerminalRenderer) cellSize() (float64, float64) {
	return r.world.Width / float64(r.width), r.world.Height / float64(r.height)
}

// worldToScreen converts world coordinates to cell coordinates.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	cw, ch := r.cellSize()
	x := int(math.Floor((pos.X - r.world.Origin.X) / cw))
	y := int(math.Floor((pos.Y - r.world.Origin.Y) / ch))
	return min(x, r.width-1), min(y, r.height-1)
}

func (r *TerminalRenderer) inField(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = glyphEmpty
		}
	}
	r.hud = nil
}

// DrawBody implements Renderer. Cells whose center lies inside the disc
// are filled; the center cell is always marked.
func (r *TerminalRenderer) DrawBody(body engine.BodyView) {
	cw, ch := r.cellSize()
	x0, y0 := r.worldToScreen(body.Position.Sub(physics.Vector2D{X: body.Radius, Y: body.Radius}))
	x1, y1 := r.worldToScreen(body.Position.Add(physics.Vector2D{X: body.Radius, Y: body.Radius}))
	rSq := body.Radius * body.Radius

	for y := max(y0, 0); y <= y1 && y < r.height; y++ {
		for x := max(x0, 0); x <= x1 && x < r.width; x++ {
			center := physics.Vector2D{
				X: r.world.Origin.X + (float64(x)+0.5)*cw,
				Y: r.world.Origin.Y + (float64(y)+0.5)*ch,
			}
			if center.Sub(body.Position).LengthSquared() <= rSq {
				r.buffer[y][x] = glyphBody
			}
		}
	}

	if cx, cy := r.worldToScreen(body.Position); r.inField(cx, cy) {
		r.buffer[cy][cx] = glyphCenter
	}
}

// DrawRegion implements Renderer. Region edges never overwrite bodies.
func (r *TerminalRenderer) DrawRegion(region physics.Bounds, _ int) {
	x0, y0 := r.worldToScreen(region.Origin)
	x1, y1 := r.worldToScreen(region.Max())

	for x := x0; x <= x1; x++ {
		r.plotRegion(x, y0)
		r.plotRegion(x, y1)
	}
	for y := y0; y <= y1; y++ {
		r.plotRegion(x0, y)
		r.plotRegion(x1, y)
	}
}

func (r *TerminalRenderer) plotRegion(x, y int) {
	if r.inField(x, y) && r.buffer[y][x] == glyphEmpty {
		r.buffer[y][x] = glyphRegion
	}
}

// DrawHUD implements Renderer.
func (r *TerminalRenderer) DrawHUD(hud HUD) {
	r.hud = hud.Compact()
}

// Present implements Renderer. The whole frame is written in one call.
func (r *TerminalRenderer) Present() {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\r\n"

	sb.WriteString("\033[H\033[2J")
	sb.WriteString(border)
	for y := range r.buffer {
		sb.WriteByte('|')
		sb.WriteString(string(r.buffer[y]))
		sb.WriteString("|\r\n")
	}
	sb.WriteString(border)
	for _, line := range r.hud {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}

	if _, err := io.WriteString(r.out, sb.String()); err != nil {
		r.err = err
	}
}
