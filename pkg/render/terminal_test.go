package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/physics"
)

func square(half float64, static bool) engine.BodyState {
	return engine.BodyState{
		ID:     1,
		Static: static,
		Vertices: []physics.Vector2D{
			{X: -half, Y: -half}, {X: half, Y: -half},
			{X: half, Y: half}, {X: -half, Y: half},
		},
	}
}

func TestWorldToScreen(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 10, 6, 1)
	tests := []struct {
		name  string
		pos   physics.Vector2D
		wantX int
		wantY int
	}{
		{"center", physics.Vector2D{}, 5, 3},
		{"right", physics.Vector2D{X: 4}, 9, 3},
		{"cells_are_twice_as_tall", physics.Vector2D{Y: 4}, 5, 5},
		{"left_above", physics.Vector2D{X: -5, Y: -6}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := r.worldToScreen(tt.pos)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("worldToScreen(%v) = (%d, %d), want (%d, %d)", tt.pos, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRenderBodyOutline(t *testing.T) {
	tests := []struct {
		name   string
		static bool
		want   rune
	}{
		{"static_body", true, '#'},
		{"dynamic_body", false, 'o'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTerminalRenderer(&bytes.Buffer{}, 10, 6, 1)
			r.RenderBody(square(2, tt.static))

			// Corners (-2,-2) and (2,2) land on cells (3,2) and (7,4).
			for _, c := range [][2]int{{3, 2}, {7, 2}, {7, 4}, {3, 4}, {5, 2}} {
				if got := r.buffer[c[1]][c[0]]; got != tt.want {
					t.Errorf("cell %v = %q, want %q", c, got, tt.want)
				}
			}
			if got := r.buffer[3][5]; got != ' ' {
				t.Errorf("interior cell = %q, want blank", got)
			}
		})
	}
}

func TestRenderOffscreenIsClipped(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 10, 6, 1)
	b := square(2, false)
	for i := range b.Vertices {
		b.Vertices[i] = b.Vertices[i].Add(physics.Vector2D{X: 1000})
	}
	r.RenderBody(b)
	if strings.ContainsAny(r.Frame(), "o#") {
		t.Errorf("offscreen body was drawn:\n%s", r.Frame())
	}
}

func TestRenderJoint(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 10, 6, 1)
	r.RenderJoint(engine.JointState{
		Type:   physics.JointSpring,
		PointA: physics.Vector2D{X: -4},
		PointB: physics.Vector2D{X: 4},
	})
	if got := r.buffer[3][1]; got != '+' {
		t.Errorf("anchor A = %q, want '+'", got)
	}
	if got := r.buffer[3][9]; got != '+' {
		t.Errorf("anchor B = %q, want '+'", got)
	}
	if got := r.buffer[3][5]; got != '.' {
		t.Errorf("spring midpoint = %q, want '.'", got)
	}
}

func TestFit(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 11, 6, 1)
	r.Fit(physics.AABB{Min: physics.Vector2D{}, Max: physics.Vector2D{X: 100, Y: 50}})

	if r.scale != 10 {
		t.Errorf("scale = %v, want 10", r.scale)
	}
	if r.centerPos != (physics.Vector2D{X: 50, Y: 25}) {
		t.Errorf("center = %v, want (50, 25)", r.centerPos)
	}
	for _, p := range []physics.Vector2D{{}, {X: 100, Y: 50}} {
		x, y := r.worldToScreen(p)
		if x < 0 || x >= r.width || y < 0 || y >= r.height {
			t.Errorf("corner %v maps off grid to (%d, %d)", p, x, y)
		}
	}
}

func TestPresent(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 4, 2, 1)
	r.ClearScreen = false
	r.SetStatus("tick 7")

	Draw(r, engine.State{})

	want := "+----+\n|    |\n|    |\n+----+\ntick 7\n"
	if out.String() != want {
		t.Errorf("Present() wrote %q, want %q", out.String(), want)
	}

	out.Reset()
	r.ClearScreen = true
	r.Present()
	if !strings.HasPrefix(out.String(), "\033[H\033[2J") {
		t.Error("Present() did not clear the screen")
	}
}

func TestDrawClearsPreviousFrame(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 10, 6, 1)
	Draw(r, engine.State{Bodies: []engine.BodyState{square(2, true)}})
	if !strings.Contains(r.Frame(), "#") {
		t.Fatal("first frame is empty")
	}
	Draw(r, engine.State{})
	if strings.TrimSpace(r.Frame()) != "" {
		t.Errorf("second frame kept old content:\n%s", r.Frame())
	}
}
