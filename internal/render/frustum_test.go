package render

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/engine"
)

func lookDown(projection rl.CameraProjection) engine.CameraView {
	return engine.CameraView{
		Camera: rl.Camera3D{
			Position:   rl.Vector3{},
			Target:     rl.Vector3{Z: -1},
			Up:         rl.Vector3{Y: 1},
			Fovy:       45,
			Projection: projection,
		},
		Near: 0.1,
		Far:  100,
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := FrustumOf(lookDown(rl.CameraPerspective), 16.0/9)
	cases := []struct {
		name  string
		point rl.Vector3
		want  bool
	}{
		{"ahead", rl.Vector3{Z: -10}, true},
		{"behind", rl.Vector3{Z: 10}, false},
		{"before near", rl.Vector3{Z: -0.05}, false},
		{"past far", rl.Vector3{Z: -150}, false},
		{"far left", rl.Vector3{X: -50, Z: -10}, false},
		{"above", rl.Vector3{Y: 20, Z: -10}, false},
	}
	for _, tc := range cases {
		if got := f.ContainsPoint(tc.point); got != tc.want {
			t.Errorf("%s: ContainsPoint(%v) = %v, want %v", tc.name, tc.point, got, tc.want)
		}
	}
}

func TestFrustumSphereStraddlingPlane(t *testing.T) {
	f := FrustumOf(lookDown(rl.CameraPerspective), 1)
	// Centre is outside the left plane but the radius reaches in.
	if !f.ContainsSphere(rl.Vector3{X: -6, Z: -10}, 3) {
		t.Error("sphere crossing the left plane was culled")
	}
	if f.ContainsSphere(rl.Vector3{X: -60, Z: -10}, 3) {
		t.Error("distant sphere was kept")
	}
}

func TestOrthographicFrustum(t *testing.T) {
	f := FrustumOf(lookDown(rl.CameraOrthographic), 1)
	// Height 45 means half extents of 22.5 on both axes at aspect 1.
	if !f.ContainsPoint(rl.Vector3{X: 20, Z: -50}) {
		t.Error("point inside ortho box culled")
	}
	if f.ContainsPoint(rl.Vector3{X: 25, Z: -50}) {
		t.Error("point outside ortho box kept")
	}
}

func TestBoundingSphereScales(t *testing.T) {
	world := rl.MatrixMultiply(rl.MatrixScale(1, 3, 2), rl.MatrixTranslate(5, 0, 0))
	c, r := boundingSphere(world, rl.Vector3{}, 0.5)
	if c.X != 5 || r != 1.5 {
		t.Errorf("center %v radius %v, want x=5 r=1.5", c, r)
	}
}
