package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/components"
	"spectral/internal/ecs"
)

// CameraView is what a renderer needs to draw one frame from a camera.
type CameraView struct {
	Camera rl.Camera3D
	Near   float32
	Far    float32
}

// ViewOf snapshots a runtime camera.
func ViewOf(c *components.RuntimeCamera) CameraView {
	return CameraView{Camera: c.Camera3D, Near: c.Near, Far: c.Far}
}

// Frustum returns the eight frustum corners, near plane first.
func (v CameraView) Frustum(aspect float32) [8]rl.Vector3 {
	rc := components.RuntimeCamera{Camera3D: v.Camera, Near: v.Near, Far: v.Far}
	return rc.FrustumCorners(aspect)
}

// Renderer draws scene content. internal/render has the raylib one.
type Renderer interface {
	Begin(view CameraView)
	DrawSprite(world rl.Matrix, sprite *components.Sprite)
	DrawModel(world rl.Matrix, model *components.Model)
	DrawCameraDebug(view CameraView)
	End()
}

// RenderRuntime draws the scene from the active camera. It reports false and
// draws nothing when no camera is active.
func (s *Scene) RenderRuntime(r Renderer) bool {
	_, cam, ok := s.ActiveCamera()
	if !ok {
		return false
	}
	r.Begin(ViewOf(cam.Camera))
	s.drawContent(r)
	r.End()
	return true
}

// RenderEditor draws the scene from an editor view, plus frustum lines for
// cameras flagged Debug.
func (s *Scene) RenderEditor(r Renderer, view CameraView) {
	r.Begin(view)
	s.drawContent(r)
	for _, cam := range ecs.Each[components.Camera](s.registry) {
		if cam.Debug && cam.Camera != nil {
			r.DrawCameraDebug(ViewOf(cam.Camera))
		}
	}
	r.End()
}

func (s *Scene) drawContent(r Renderer) {
	for _, row := range ecs.Each2[components.Transform, components.Sprite](s.registry) {
		r.DrawSprite(row.A.Matrix(), row.B)
	}
	for _, row := range ecs.Each2[components.Transform, components.Model](s.registry) {
		r.DrawModel(row.A.Matrix(), row.B)
	}
}
