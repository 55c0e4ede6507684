package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/components"
	"spectral/internal/engine"
)

// Frustum holds the six clip planes of a view, normals pointing inward.
type Frustum struct {
	planes [6]plane // left, right, bottom, top, near, far
}

// ax + by + cz + d = 0
type plane struct {
	normal   rl.Vector3
	distance float32
}

// FrustumOf builds the culling frustum of a camera view.
func FrustumOf(view engine.CameraView, aspect float32) Frustum {
	rc := components.RuntimeCamera{Camera3D: view.Camera, Near: view.Near, Far: view.Far}
	return NewFrustum(rl.MatrixMultiply(rc.ViewMatrix(), rc.ProjectionMatrix(aspect)))
}

// NewFrustum extracts the planes of a view-projection matrix (Gribb/Hartmann).
func NewFrustum(vp rl.Matrix) Frustum {
	var f Frustum
	f.planes[0] = normalize(plane{rl.Vector3{X: vp.M3 + vp.M0, Y: vp.M7 + vp.M4, Z: vp.M11 + vp.M8}, vp.M15 + vp.M12})
	f.planes[1] = normalize(plane{rl.Vector3{X: vp.M3 - vp.M0, Y: vp.M7 - vp.M4, Z: vp.M11 - vp.M8}, vp.M15 - vp.M12})
	f.planes[2] = normalize(plane{rl.Vector3{X: vp.M3 + vp.M1, Y: vp.M7 + vp.M5, Z: vp.M11 + vp.M9}, vp.M15 + vp.M13})
	f.planes[3] = normalize(plane{rl.Vector3{X: vp.M3 - vp.M1, Y: vp.M7 - vp.M5, Z: vp.M11 - vp.M9}, vp.M15 - vp.M13})
	f.planes[4] = normalize(plane{rl.Vector3{X: vp.M3 + vp.M2, Y: vp.M7 + vp.M6, Z: vp.M11 + vp.M10}, vp.M15 + vp.M14})
	f.planes[5] = normalize(plane{rl.Vector3{X: vp.M3 - vp.M2, Y: vp.M7 - vp.M6, Z: vp.M11 - vp.M10}, vp.M15 - vp.M14})
	return f
}

func normalize(p plane) plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return plane{rl.Vector3Scale(p.normal, 1/length), p.distance / length}
}

// ContainsSphere reports whether a sphere is at least partly inside.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for _, p := range f.planes {
		if rl.Vector3DotProduct(p.normal, center)+p.distance < -radius {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	return f.ContainsSphere(point, 0)
}

// boundingSphere places a local-space sphere in world space. The radius grows
// with the largest axis scale of world.
func boundingSphere(world rl.Matrix, localCenter rl.Vector3, localRadius float32) (rl.Vector3, float32) {
	center := rl.Vector3Transform(localCenter, world)
	sx := rl.Vector3Length(rl.Vector3{X: world.M0, Y: world.M1, Z: world.M2})
	sy := rl.Vector3Length(rl.Vector3{X: world.M4, Y: world.M5, Z: world.M6})
	sz := rl.Vector3Length(rl.Vector3{X: world.M8, Y: world.M9, Z: world.M10})
	return center, localRadius * max(sx, sy, sz)
}
