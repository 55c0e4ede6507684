package components

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func nearVec(a, b rl.Vector3) bool { return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) }

func TestTransformMatrixOrder(t *testing.T) {
	tr := NewTransform()
	tr.Translation = rl.Vector3{X: 10}
	tr.Rotation = rl.Vector3{Y: math.Pi / 2}
	tr.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}

	// Scale first, then rotate, then translate: (1,0,0) -> (2,0,0) -> (0,0,-2) -> (10,0,-2).
	got := rl.Vector3Transform(rl.Vector3{X: 1}, tr.Matrix())
	if !nearVec(got, rl.Vector3{X: 10, Z: -2}) {
		t.Errorf("transformed point = %v, want (10,0,-2)", got)
	}
}

func TestTransformRotationMatches2DPhysics(t *testing.T) {
	tr := NewTransform()
	tr.Rotation = rl.Vector3{Z: math.Pi / 2}

	// Counter-clockwise about +Z, as the 2D worlds report angles.
	got := rl.Vector3Transform(rl.Vector3{X: 1}, tr.Matrix())
	want2D := rl.Vector2Rotate(rl.Vector2{X: 1}, math.Pi/2)
	if !nearVec(got, rl.Vector3{X: want2D.X, Y: want2D.Y}) || !near(got.Y, 1) {
		t.Errorf("+X rotated by z=pi/2 = %v, want (0,1,0)", got)
	}

	tr.Rotation = rl.Vector3{X: -0.5}
	if f := tr.Forward(); f.Y >= 0 {
		t.Errorf("negative pitch forward = %v, want it to point down", f)
	}
}

func TestTransformIdentity(t *testing.T) {
	tr := NewTransform()
	if tr.Matrix() != rl.MatrixIdentity() {
		t.Errorf("default transform matrix = %v", tr.Matrix())
	}
	if !nearVec(tr.Forward(), rl.Vector3{Z: -1}) || !nearVec(tr.Up(), rl.Vector3{Y: 1}) {
		t.Errorf("forward = %v, up = %v", tr.Forward(), tr.Up())
	}
}

func TestBodyTypeRoundTrip(t *testing.T) {
	for _, bt := range []BodyType{Static, Kinematic, Dynamic} {
		if got := ParseBodyType(bt.String()); got != bt {
			t.Errorf("ParseBodyType(%q) = %v", bt.String(), got)
		}
	}
	if ParseBodyType("floating") != Static {
		t.Error("unknown body type should parse as Static")
	}
}

func TestNewStableIDNonZero(t *testing.T) {
	seen := map[StableID]bool{}
	for i := 0; i < 1000; i++ {
		id := NewStableID()
		if id == 0 {
			t.Fatal("NewStableID returned 0")
		}
		seen[id] = true
	}
	if len(seen) < 1000 {
		t.Errorf("collisions among 1000 random ids: %d unique", len(seen))
	}
}

func TestScaledColliders(t *testing.T) {
	box := NewBoxCollider3D()
	box.Size = rl.Vector3{X: 1, Y: 2, Z: 3}
	if got := box.ScaledSize(rl.Vector3{X: 2, Y: -1, Z: 1}); got != (rl.Vector3{X: 2, Y: 2, Z: 3}) {
		t.Errorf("ScaledSize = %v", got)
	}
	if got := ScaledRadius(0.5, rl.Vector3{X: 1, Y: 3, Z: 2}); got != 1.5 {
		t.Errorf("ScaledRadius = %v", got)
	}
}

func TestRuntimeCameraFollowsTransform(t *testing.T) {
	cam := NewRuntimeCamera()
	tr := NewTransform()
	tr.Translation = rl.Vector3{X: 1, Y: 2, Z: 3}
	cam.SetView(tr)

	if cam.Position != tr.Translation {
		t.Errorf("position = %v", cam.Position)
	}
	if !nearVec(cam.Target, rl.Vector3{X: 1, Y: 2, Z: 2}) {
		t.Errorf("target = %v, want one unit down -Z", cam.Target)
	}

	corners := cam.FrustumCorners(1)
	// Near plane sits at z = 3 - Near.
	for i := 0; i < 4; i++ {
		if !near(corners[i].Z, 3-cam.Near) {
			t.Errorf("near corner %d z = %v", i, corners[i].Z)
		}
	}
	if !near(corners[4].Z, 3-cam.Far) {
		t.Errorf("far corner z = %v", corners[4].Z)
	}
}

// clip projects a camera-space point and returns normalized device x, y.
func clip(m rl.Matrix, p rl.Vector3) (x, y float32) {
	cx := m.M0*p.X + m.M4*p.Y + m.M8*p.Z + m.M12
	cy := m.M1*p.X + m.M5*p.Y + m.M9*p.Z + m.M13
	w := m.M3*p.X + m.M7*p.Y + m.M11*p.Z + m.M15
	return cx / w, cy / w
}

func TestPerspectiveFieldOfView(t *testing.T) {
	cam := NewRuntimeCamera() // 45 degrees
	m := cam.ProjectionMatrix(1)

	// tan(22.5deg) * 10 = 4.142: the frustum edge ten units ahead.
	edge := float32(math.Tan(math.Pi/8) * 10)
	if x, y := clip(m, rl.Vector3{X: edge, Z: -10}); !near(x, 1) || !near(y, 0) {
		t.Errorf("right edge maps to (%v,%v), want (1,0)", x, y)
	}
	if x, _ := clip(m, rl.Vector3{X: -4, Z: -10}); x < -1 || x > -0.9 {
		t.Errorf("x=-4 maps to %v, want just inside -1", x)
	}
	if _, y := clip(m, rl.Vector3{Y: 5, Z: -10}); y <= 1 {
		t.Errorf("y=5 maps to %v, want outside the view", y)
	}

	m = cam.ProjectionMatrix(2)
	if x, _ := clip(m, rl.Vector3{X: 2 * edge, Z: -10}); !near(x, 1) {
		t.Errorf("aspect 2 right edge maps to %v, want 1", x)
	}
}

func TestProjectionNames(t *testing.T) {
	for _, p := range []rl.CameraProjection{rl.CameraPerspective, rl.CameraOrthographic} {
		if ParseProjection(ProjectionName(p)) != p {
			t.Errorf("projection %v did not round-trip", p)
		}
	}
}
