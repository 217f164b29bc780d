package render

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/physics"
)

// TerminalRenderer rasterises polygon outlines into a character grid.
// Character cells are about twice as tall as wide, so vertical distances
// are halved.
type TerminalRenderer struct {
	out       io.Writer
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	aspect    float64
	centerPos physics.Vector2D
	status    string

	// ClearScreen emits the ANSI home-and-clear sequence before each frame.
	ClearScreen bool
}

// NewTerminalRenderer creates a renderer of width×height cells writing to
// out. scale is world units per cell horizontally.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	r := &TerminalRenderer{
		out:         out,
		width:       width,
		height:      height,
		buffer:      buffer,
		scale:       scale,
		aspect:      2,
		ClearScreen: true,
	}
	r.Clear()
	return r
}

// SetCenter sets the world position shown in the middle of the grid.
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// SetStatus sets a line printed under the frame.
func (r *TerminalRenderer) SetStatus(s string) {
	r.status = s
}

// Fit centres the view on box and picks the scale that shows all of it.
func (r *TerminalRenderer) Fit(box physics.AABB) {
	r.centerPos = box.Min.Add(box.Max).Scale(0.5)
	sx := (box.Max.X - box.Min.X) / float64(r.width-1)
	sy := (box.Max.Y - box.Min.Y) / (float64(r.height-1) * r.aspect)
	if s := math.Max(sx, sy); s > 0 {
		r.scale = s
	}
}

func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := (pos.X-r.centerPos.X)/r.scale + float64(r.width)/2
	screenY := (pos.Y-r.centerPos.Y)/(r.scale*r.aspect) + float64(r.height)/2
	return int(math.Floor(screenX)), int(math.Floor(screenY))
}

func (r *TerminalRenderer) plot(x, y int, c rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = c
	}
}

func (r *TerminalRenderer) line(a, b physics.Vector2D, c rune) {
	x0, y0 := r.worldToScreen(a)
	x1, y1 := r.worldToScreen(b)
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		r.plot(x0, y0, c)
		return
	}
	// Skip lines that lie wholly outside the grid on one side.
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= r.width && x1 >= r.width) || (y0 >= r.height && y1 >= r.height) {
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.plot(x0+int(math.Round(float64(dx)*t)), y0+int(math.Round(float64(dy)*t)), c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderBody implements Renderer. Static bodies are drawn with '#', others
// with 'o'.
func (r *TerminalRenderer) RenderBody(body engine.BodyState) {
	c := 'o'
	if body.Static {
		c = '#'
	}
	n := len(body.Vertices)
	for i, v := range body.Vertices {
		r.line(v, body.Vertices[(i+1)%n], c)
	}
}

// RenderJoint implements Renderer. Springs are drawn as a dotted line,
// anchors as '+'.
func (r *TerminalRenderer) RenderJoint(joint engine.JointState) {
	if joint.Type == physics.JointSpring {
		r.line(joint.PointA, joint.PointB, '.')
	}
	for _, p := range []physics.Vector2D{joint.PointA, joint.PointB} {
		x, y := r.worldToScreen(p)
		r.plot(x, y, '+')
	}
}

// Frame returns the grid as text, one line per row, without a border.
func (r *TerminalRenderer) Frame() string {
	var sb strings.Builder
	for _, row := range r.buffer {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	if r.ClearScreen {
		w.WriteString("\033[H\033[2J")
	}
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for _, row := range r.buffer {
		w.WriteString("|")
		w.WriteString(string(row))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	if r.status != "" {
		w.WriteString(r.status)
		w.WriteByte('\n')
	}
	w.Flush()
}
