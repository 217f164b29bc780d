// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/logging"
)

// Renderer draws one simulation snapshot per frame.
type Renderer interface {
	Clear()
	RenderBody(body engine.BodyState)
	RenderJoint(joint engine.JointState)
	Present()
}

// Draw renders st with r: bodies in world order, then joints on top.
func Draw(r Renderer, st engine.State) {
	r.Clear()
	for _, b := range st.Bodies {
		r.RenderBody(b)
	}
	for _, j := range st.Joints {
		r.RenderJoint(j)
	}
	r.Present()
}

// NullRenderer draws nothing and logs each call at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames int
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called", "frame", d.frames)
}

// RenderBody implements Renderer.
func (d *NullRenderer) RenderBody(body engine.BodyState) {
	d.logger.Debug(context.Background(), "RenderBody called",
		"body_id", body.ID,
		"label", body.Label,
		"x", body.Position.X,
		"y", body.Position.Y,
	)
}

// RenderJoint implements Renderer.
func (d *NullRenderer) RenderJoint(joint engine.JointState) {
	d.logger.Debug(context.Background(), "RenderJoint called",
		"joint_id", joint.ID,
		"type", joint.Type.String(),
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	d.logger.Debug(context.Background(), "Present called", "frame", d.frames)
}

// Frames returns the number of frames presented.
func (d *NullRenderer) Frames() int { return d.frames }
