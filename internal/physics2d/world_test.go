package physics2d

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var backends = []Backend{BackendChipmunk, BackendBox2DLite}

func newTestWorld(t *testing.T, b Backend) World {
	t.Helper()
	s := DefaultSettings()
	s.Backend = b
	w, err := NewWorld(s)
	if err != nil {
		t.Fatalf("NewWorld(%s): %v", b, err)
	}
	t.Cleanup(w.Destroy)
	return w
}

func box(w, h float32) ShapeDef {
	return ShapeDef{
		Kind:     ShapeBox,
		HalfSize: rl.Vector2{X: w / 2, Y: h / 2},
		Density:  1,
		Friction: 0.5,
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
		err  bool
	}{
		{"", BackendChipmunk, false},
		{"Chipmunk", BackendChipmunk, false},
		{"box2d-lite", BackendBox2DLite, false},
		{"box2d", BackendBox2DLite, false},
		{"bullet", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, %v", tt.in, got, err)
		}
		if tt.err && !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("ParseBackend(%q) error %v is not ErrUnknownBackend", tt.in, err)
		}
	}
	if _, err := NewWorld(Settings{Backend: "bullet"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("NewWorld with unknown backend: %v", err)
	}
}

func TestDynamicBodyFalls(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			h, err := w.CreateBody(BodyDef{
				Type:         Dynamic,
				Position:     rl.Vector2{Y: 10},
				GravityScale: 1,
				Awake:        true,
				Shapes:       []ShapeDef{box(1, 1)},
			})
			if err != nil {
				t.Fatalf("CreateBody: %v", err)
			}
			last := float32(10)
			for i := 0; i < 30; i++ {
				if err := w.Step(1.0/60, 6, 2); err != nil {
					t.Fatalf("Step: %v", err)
				}
				pos, _, err := w.Pose(h)
				if err != nil {
					t.Fatalf("Pose: %v", err)
				}
				// Chipmunk moves before it integrates velocity, so
				// the first step may leave y where it was.
				if pos.Y > last {
					t.Fatalf("step %d: y=%v rose above %v", i, pos.Y, last)
				}
				last = pos.Y
			}
			if last > 9 {
				t.Errorf("after 30 steps y=%v, want it to have fallen below 9", last)
			}
			if !w.IsAwake(h) {
				t.Error("falling body reported asleep")
			}
		})
	}
}

func TestBodyLandsOnGround(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			w.CreateBody(BodyDef{Type: Static, Shapes: []ShapeDef{box(20, 1)}})
			h, _ := w.CreateBody(BodyDef{
				Type:         Dynamic,
				Position:     rl.Vector2{Y: 3},
				GravityScale: 1,
				AllowSleep:   true,
				Awake:        true,
				Shapes:       []ShapeDef{box(1, 1)},
			})
			for i := 0; i < 180; i++ {
				w.Step(1.0/60, 6, 2)
			}
			pos, _, _ := w.Pose(h)
			// Ground top at 0.5, box half height 0.5.
			if pos.Y < 0.75 || pos.Y > 1.25 {
				t.Errorf("box rests at y=%v, want about 1", pos.Y)
			}
		})
	}
}

func TestShapelessBodiesHaveNoContacts(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			w.CreateBody(BodyDef{Type: Static})
			h, err := w.CreateBody(BodyDef{
				Type:         Dynamic,
				Position:     rl.Vector2{Y: 2},
				GravityScale: 1,
				Awake:        true,
			})
			if err != nil {
				t.Fatalf("CreateBody: %v", err)
			}
			for i := 0; i < 120; i++ {
				w.Step(1.0/60, 6, 2)
			}
			pos, _, _ := w.Pose(h)
			if pos.Y > -5 {
				t.Errorf("shapeless body stopped at y=%v, want free fall through the static body", pos.Y)
			}
		})
	}
}

func TestGravityScaleZero(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			h, _ := w.CreateBody(BodyDef{
				Type:     Dynamic,
				Position: rl.Vector2{Y: 4},
				Awake:    true,
				Shapes:   []ShapeDef{box(1, 1)},
			})
			for i := 0; i < 20; i++ {
				w.Step(1.0/60, 6, 2)
			}
			pos, _, _ := w.Pose(h)
			if pos.Y < 3.99 || pos.Y > 4.01 {
				t.Errorf("y = %v, want 4 with zero gravity scale", pos.Y)
			}
		})
	}
}

func TestImpulseAndVelocity(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			h, _ := w.CreateBody(BodyDef{
				Type:   Dynamic,
				Awake:  true,
				Shapes: []ShapeDef{box(1, 1)}, // mass 1
			})
			if err := w.ApplyImpulse(h, rl.Vector2{X: 3}); err != nil {
				t.Fatalf("ApplyImpulse: %v", err)
			}
			v, _ := w.LinearVelocity(h)
			if v.X < 2.99 || v.X > 3.01 {
				t.Errorf("velocity after impulse = %v, want x=3", v)
			}
			w.SetLinearVelocity(h, rl.Vector2{Y: 2})
			v, _ = w.LinearVelocity(h)
			if v.X != 0 || v.Y != 2 {
				t.Errorf("velocity after SetLinearVelocity = %v", v)
			}
		})
	}
}

func TestDestroyBodyInvalidatesHandle(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			h, _ := w.CreateBody(BodyDef{Type: Dynamic, Shapes: []ShapeDef{box(1, 1)}})
			keep, _ := w.CreateBody(BodyDef{Type: Static, Shapes: []ShapeDef{box(1, 1)}})
			if err := w.DestroyBody(h); err != nil {
				t.Fatalf("DestroyBody: %v", err)
			}
			if _, _, err := w.Pose(h); !errors.Is(err, ErrInvalidBody) {
				t.Errorf("Pose on destroyed body: %v", err)
			}
			if err := w.DestroyBody(h); !errors.Is(err, ErrInvalidBody) {
				t.Errorf("double DestroyBody: %v", err)
			}
			if _, _, err := w.Pose(keep); err != nil {
				t.Errorf("surviving body lost: %v", err)
			}
			if w.BodyCount() != 1 {
				t.Errorf("BodyCount = %d, want 1", w.BodyCount())
			}
			if err := w.Step(1.0/60, 6, 2); err != nil {
				t.Errorf("Step after DestroyBody: %v", err)
			}
		})
	}
}

func TestDestroyedWorldRejectsUse(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			s := DefaultSettings()
			s.Backend = b
			w, _ := NewWorld(s)
			h, _ := w.CreateBody(BodyDef{Type: Dynamic, Shapes: []ShapeDef{box(1, 1)}})
			w.Destroy()
			w.Destroy()

			if err := w.Step(1.0/60, 6, 2); !errors.Is(err, ErrWorldDestroyed) {
				t.Errorf("Step: %v", err)
			}
			if _, err := w.CreateBody(BodyDef{}); !errors.Is(err, ErrWorldDestroyed) {
				t.Errorf("CreateBody: %v", err)
			}
			if _, _, err := w.Pose(h); !errors.Is(err, ErrWorldDestroyed) {
				t.Errorf("Pose: %v", err)
			}
			if w.IsAwake(h) {
				t.Error("IsAwake on destroyed world")
			}
		})
	}
}

func TestHandlesDoNotCrossWorlds(t *testing.T) {
	a := newTestWorld(t, BackendChipmunk)
	b := newTestWorld(t, BackendChipmunk)
	h, _ := a.CreateBody(BodyDef{Type: Static})
	if _, _, err := b.Pose(h); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("foreign handle resolved: %v", err)
	}
	if !(BodyHandle{}).IsNil() || h.IsNil() {
		t.Error("IsNil mismatch")
	}
}

func TestSetTransformKinematic(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			w := newTestWorld(t, b)
			h, _ := w.CreateBody(BodyDef{
				Type:   Kinematic,
				Shapes: []ShapeDef{{Kind: ShapeCircle, Radius: 0.5, Offset: rl.Vector2{X: 1}}},
			})
			if err := w.SetTransform(h, rl.Vector2{X: 2, Y: 3}, 0); err != nil {
				t.Fatalf("SetTransform: %v", err)
			}
			w.Step(1.0/60, 6, 2)
			pos, _, _ := w.Pose(h)
			if pos.X < 1.999 || pos.X > 2.001 || pos.Y < 2.999 || pos.Y > 3.001 {
				t.Errorf("kinematic pose = %v, want (2,3)", pos)
			}
		})
	}
}
