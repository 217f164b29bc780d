// pkg/render/engo/renderer.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/physics"
)

// jointMarkerSize is the on-screen diameter of a joint anchor.
const jointMarkerSize = 6

// entitySink receives render entities. *common.RenderSystem satisfies it.
type entitySink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// sprite is one entity in the render system.
type sprite struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	seen   bool

	// Body shape in the body frame: the top-left corner relative to the
	// centroid and the unrotated size.
	corner physics.Vector2D
	size   physics.Vector2D
}

type jointKey struct {
	id  uint64
	end int
}

// EngoRenderer implements render.Renderer with engo entities. Each body
// becomes a fan of triangles built once from its shape; later frames only
// move and rotate it.
type EngoRenderer struct {
	sink   entitySink
	camera *CameraSystem
	assets *AssetManager

	bodies map[uint64]*sprite
	joints map[jointKey]*sprite

	hovered uint64
	grabbed uint64
}

// NewEngoRenderer creates a renderer adding entities to sink.
func NewEngoRenderer(sink entitySink, camera *CameraSystem, assets *AssetManager) *EngoRenderer {
	return &EngoRenderer{
		sink:   sink,
		camera: camera,
		assets: assets,
		bodies: make(map[uint64]*sprite),
		joints: make(map[jointKey]*sprite),
	}
}

// Highlight marks the bodies under and held by the pointer. Zero clears.
func (r *EngoRenderer) Highlight(hovered, grabbed uint64) {
	r.hovered, r.grabbed = hovered, grabbed
}

// Clear implements render.Renderer.
func (r *EngoRenderer) Clear() {
	for _, s := range r.bodies {
		s.seen = false
	}
	for _, s := range r.joints {
		s.seen = false
	}
}

// RenderBody implements render.Renderer.
func (r *EngoRenderer) RenderBody(body engine.BodyState) {
	s, ok := r.bodies[body.ID]
	if !ok {
		s = newBodySprite(body)
		r.bodies[body.ID] = s
		r.sink.Add(&s.basic, &s.render, &s.space)
	}
	s.seen = true

	zoom := r.camera.GetZoom()
	pos := r.camera.WorldToScreen(body.Position.Add(s.corner.Rotate(body.Angle)))
	s.space.Position = engo.Point{X: float32(pos.X), Y: float32(pos.Y)}
	s.space.Width = float32(s.size.X) * zoom
	s.space.Height = float32(s.size.Y) * zoom
	s.space.Rotation = float32(body.Angle * 180 / math.Pi)
	s.render.Color = r.assets.BodyColor(body, r.hovered, r.grabbed)
}

// newBodySprite triangulates the body outline in its own frame, normalised
// to the unit square as common.ComplexTriangles expects.
func newBodySprite(body engine.BodyState) *sprite {
	local := make([]physics.Vector2D, len(body.Vertices))
	lo := physics.Vector2D{X: math.Inf(1), Y: math.Inf(1)}
	hi := physics.Vector2D{X: math.Inf(-1), Y: math.Inf(-1)}
	for i, v := range body.Vertices {
		l := v.Sub(body.Position).Rotate(-body.Angle)
		local[i] = l
		lo.X, lo.Y = math.Min(lo.X, l.X), math.Min(lo.Y, l.Y)
		hi.X, hi.Y = math.Max(hi.X, l.X), math.Max(hi.Y, l.Y)
	}
	size := hi.Sub(lo)

	norm := func(v physics.Vector2D) engo.Point {
		return engo.Point{
			X: float32((v.X - lo.X) / size.X),
			Y: float32((v.Y - lo.Y) / size.Y),
		}
	}
	points := make([]engo.Point, 0, 3*(len(local)-2))
	for i := 1; i+1 < len(local); i++ {
		points = append(points, norm(local[0]), norm(local[i]), norm(local[i+1]))
	}

	return &sprite{
		basic:  ecs.NewBasic(),
		render: common.RenderComponent{Drawable: common.ComplexTriangles{Points: points}},
		corner: lo,
		size:   size,
	}
}

// RenderJoint implements render.Renderer by marking both anchors.
func (r *EngoRenderer) RenderJoint(joint engine.JointState) {
	for end, p := range [2]physics.Vector2D{joint.PointA, joint.PointB} {
		key := jointKey{joint.ID, end}
		s, ok := r.joints[key]
		if !ok {
			s = &sprite{
				basic: ecs.NewBasic(),
				render: common.RenderComponent{
					Drawable: common.Circle{},
					Color:    r.assets.Joint,
				},
				space: common.SpaceComponent{Width: jointMarkerSize, Height: jointMarkerSize},
			}
			s.render.SetZIndex(1)
			r.joints[key] = s
			r.sink.Add(&s.basic, &s.render, &s.space)
		}
		s.seen = true
		pos := r.camera.WorldToScreen(p)
		s.space.Position = engo.Point{
			X: float32(pos.X) - jointMarkerSize/2,
			Y: float32(pos.Y) - jointMarkerSize/2,
		}
	}
}

// Present implements render.Renderer. Entities whose body or joint was not
// drawn this frame have left the world and are removed.
func (r *EngoRenderer) Present() {
	for id, s := range r.bodies {
		if !s.seen {
			r.sink.Remove(s.basic)
			delete(r.bodies, id)
		}
	}
	for key, s := range r.joints {
		if !s.seen {
			r.sink.Remove(s.basic)
			delete(r.joints, key)
		}
	}
}
