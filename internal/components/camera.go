package components

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RuntimeCamera is the projection and view state a camera entity renders
// with. The scene refreshes the view from the entity transform every frame.
type RuntimeCamera struct {
	rl.Camera3D
	Near float32
	Far  float32
}

func NewRuntimeCamera() *RuntimeCamera {
	return &RuntimeCamera{
		Camera3D: rl.Camera3D{
			Target:     rl.Vector3{Z: -1},
			Up:         rl.Vector3{Y: 1},
			Fovy:       45,
			Projection: rl.CameraPerspective,
		},
		Near: 0.1,
		Far:  1000,
	}
}

// SetView points the camera along the transform's forward axis.
func (c *RuntimeCamera) SetView(t Transform) {
	c.Position = t.Translation
	c.Target = rl.Vector3Add(t.Translation, t.Forward())
	c.Up = t.Up()
}

func (c *RuntimeCamera) ViewMatrix() rl.Matrix {
	return rl.MatrixLookAt(c.Position, c.Target, c.Up)
}

func (c *RuntimeCamera) IsOrthographic() bool {
	return c.Projection == rl.CameraOrthographic
}

// ProjectionMatrix builds the OpenGL-style projection for the camera. Fovy is
// in degrees for perspective cameras and the view height for orthographic
// ones. The perspective matrix is written out here because rl.MatrixFrustum
// mis-computes its off-centre terms (right + left/rl).
func (c *RuntimeCamera) ProjectionMatrix(aspect float32) rl.Matrix {
	if c.IsOrthographic() {
		top := c.Fovy / 2
		right := top * aspect
		return rl.MatrixOrtho(-right, right, -top, top, c.Near, c.Far)
	}
	f := float32(1 / math.Tan(float64(c.Fovy*rl.Deg2rad)/2))
	fn := c.Far - c.Near
	return rl.Matrix{
		M0:  f / aspect,
		M5:  f,
		M10: -(c.Far + c.Near) / fn,
		M11: -1,
		M14: -2 * c.Far * c.Near / fn,
	}
}

// FrustumCorners returns the near plane corners followed by the far plane
// corners, each in the order bottom-left, bottom-right, top-right, top-left.
func (c *RuntimeCamera) FrustumCorners(aspect float32) [8]rl.Vector3 {
	fwd := rl.Vector3Normalize(rl.Vector3Subtract(c.Target, c.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(fwd, c.Up))
	up := rl.Vector3CrossProduct(right, fwd)

	extent := func(d float32) (w, h float32) {
		if c.IsOrthographic() {
			h = c.Fovy / 2
		} else {
			h = d * float32(math.Tan(float64(c.Fovy*rl.Deg2rad)/2))
		}
		return h * aspect, h
	}

	var out [8]rl.Vector3
	for i, d := range [2]float32{c.Near, c.Far} {
		w, h := extent(d)
		center := rl.Vector3Add(c.Position, rl.Vector3Scale(fwd, d))
		r := rl.Vector3Scale(right, w)
		u := rl.Vector3Scale(up, h)
		out[i*4+0] = rl.Vector3Subtract(rl.Vector3Subtract(center, r), u)
		out[i*4+1] = rl.Vector3Subtract(rl.Vector3Add(center, r), u)
		out[i*4+2] = rl.Vector3Add(rl.Vector3Add(center, r), u)
		out[i*4+3] = rl.Vector3Add(rl.Vector3Subtract(center, r), u)
	}
	return out
}

// Camera marks an entity as a viewpoint. At most one active camera renders
// per frame.
type Camera struct {
	Camera *RuntimeCamera
	Active bool
	Debug  bool
}

func NewCamera() Camera {
	return Camera{Camera: NewRuntimeCamera()}
}

// ProjectionName is the persisted form of a camera projection.
func ProjectionName(p rl.CameraProjection) string {
	if p == rl.CameraOrthographic {
		return "Orthographic"
	}
	return "Perspective"
}

func ParseProjection(s string) rl.CameraProjection {
	if s == "Orthographic" {
		return rl.CameraOrthographic
	}
	return rl.CameraPerspective
}
