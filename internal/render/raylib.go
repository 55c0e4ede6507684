// Package render draws scenes with raylib. It implements engine.Renderer and
// must be used on the thread that owns the window.
package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/assets"
	"spectral/internal/components"
	"spectral/internal/engine"
)

// Stats counts the last frame's draws.
type Stats struct {
	Drawn  int
	Culled int
}

type Raylib struct {
	// Grid draws a reference grid of this many cells. Zero disables it.
	Grid int32

	frustum Frustum
	aspect  float32
	stats   Stats
	bounds  map[*assets.Model]sphere
}

type sphere struct {
	center rl.Vector3
	radius float32
}

var _ engine.Renderer = (*Raylib)(nil)

func NewRaylib() *Raylib {
	return &Raylib{bounds: make(map[*assets.Model]sphere)}
}

func (r *Raylib) Stats() Stats { return r.stats }

// Begin enters 3D mode with the view's own clip planes.
func (r *Raylib) Begin(view engine.CameraView) {
	r.stats = Stats{}
	r.aspect = float32(rl.GetRenderWidth()) / float32(max(rl.GetRenderHeight(), 1))
	r.frustum = FrustumOf(view, r.aspect)

	rl.BeginMode3D(view.Camera)
	rc := components.RuntimeCamera{Camera3D: view.Camera, Near: view.Near, Far: view.Far}
	rl.SetMatrixProjection(rc.ProjectionMatrix(r.aspect))
	if r.Grid > 0 {
		rl.DrawGrid(r.Grid, 1)
	}
}

func (r *Raylib) End() {
	rl.EndMode3D()
}

// DrawSprite draws a unit quad in the XY plane of world.
func (r *Raylib) DrawSprite(world rl.Matrix, sprite *components.Sprite) {
	center, radius := boundingSphere(world, rl.Vector3{}, 0.7072)
	if !r.frustum.ContainsSphere(center, radius) {
		r.stats.Culled++
		return
	}
	r.stats.Drawn++

	corners := [4]rl.Vector3{
		rl.Vector3Transform(rl.Vector3{X: -0.5, Y: -0.5}, world),
		rl.Vector3Transform(rl.Vector3{X: 0.5, Y: -0.5}, world),
		rl.Vector3Transform(rl.Vector3{X: 0.5, Y: 0.5}, world),
		rl.Vector3Transform(rl.Vector3{X: -0.5, Y: 0.5}, world),
	}
	tint := components.TintColor(sprite.Tint)
	if !sprite.Texture.Loaded() {
		rl.DrawTriangle3D(corners[0], corners[1], corners[2], tint)
		rl.DrawTriangle3D(corners[0], corners[2], corners[3], tint)
		return
	}

	rl.SetTexture(sprite.Texture.Raw().ID)
	rl.Begin(rl.Quads)
	rl.Color4ub(tint.R, tint.G, tint.B, tint.A)
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for i, c := range corners {
		rl.TexCoord2f(uv[i][0], uv[i][1])
		rl.Vertex3f(c.X, c.Y, c.Z)
	}
	rl.End()
	rl.SetTexture(0)
}

// DrawModel draws the mesh at world. A model that failed to load is drawn as
// an axis-aligned wire cube.
func (r *Raylib) DrawModel(world rl.Matrix, model *components.Model) {
	tint := components.TintColor(model.Tint)
	if !model.Model.Loaded() {
		center, radius := boundingSphere(world, rl.Vector3{}, 0.87)
		if !r.frustum.ContainsSphere(center, radius) {
			r.stats.Culled++
			return
		}
		r.stats.Drawn++
		edge := radius / 0.87
		rl.DrawCubeWiresV(center, rl.Vector3{X: edge, Y: edge, Z: edge}, tint)
		return
	}

	b := r.modelBounds(model.Model)
	center, radius := boundingSphere(world, b.center, b.radius)
	if !r.frustum.ContainsSphere(center, radius) {
		r.stats.Culled++
		return
	}
	r.stats.Drawn++
	raw := model.Model.Raw()
	raw.Transform = rl.MatrixMultiply(raw.Transform, world)
	rl.DrawModel(raw, rl.Vector3{}, 1, tint)
}

func (r *Raylib) modelBounds(m *assets.Model) sphere {
	if s, ok := r.bounds[m]; ok {
		return s
	}
	box := rl.GetModelBoundingBox(m.Raw())
	center := rl.Vector3Scale(rl.Vector3Add(box.Min, box.Max), 0.5)
	s := sphere{center: center, radius: rl.Vector3Distance(center, box.Max)}
	r.bounds[m] = s
	return s
}

// Forget drops cached bounds, for use after assets are unloaded.
func (r *Raylib) Forget() {
	clear(r.bounds)
}

// DrawCameraDebug outlines a camera frustum.
func (r *Raylib) DrawCameraDebug(view engine.CameraView) {
	c := view.Frustum(r.aspect)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		rl.DrawLine3D(c[i], c[j], rl.Yellow)
		rl.DrawLine3D(c[4+i], c[4+j], rl.Yellow)
		rl.DrawLine3D(c[i], c[4+i], rl.Yellow)
	}
	rl.DrawSphere(view.Camera.Position, 0.1, rl.Yellow)
}
