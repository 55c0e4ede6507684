package scripting

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/engine"
)

// Base gives native scripts no-op hooks to embed.
type Base struct{}

func (Base) OnCreate(engine.Entity) error          { return nil }
func (Base) OnUpdate(engine.Entity, float32) error { return nil }
func (Base) Close() error                          { return nil }

// Rotator spins its entity around the Y axis. Speed is in radians per second.
type Rotator struct {
	Base
	Speed float32
}

func (r *Rotator) OnUpdate(e engine.Entity, dt float32) error {
	tr := e.Transform()
	if tr == nil {
		return nil
	}
	tr.Rotation.Y += r.Speed * dt
	if tr.Rotation.Y > 2*math.Pi {
		tr.Rotation.Y -= 2 * math.Pi
	}
	return nil
}

// Mover translates its entity at a constant velocity.
type Mover struct {
	Base
	Velocity rl.Vector3
}

func (m *Mover) OnUpdate(e engine.Entity, dt float32) error {
	tr := e.Transform()
	if tr == nil {
		return nil
	}
	tr.Translation = rl.Vector3Add(tr.Translation, rl.Vector3Scale(m.Velocity, dt))
	return nil
}

// RegisterBuiltins adds Rotator and Mover to r.
func RegisterBuiltins(r *Registry) {
	r.Register("Rotator", func(props map[string]any) engine.ScriptInstance {
		return &Rotator{Speed: floatProp(props, "speed", math.Pi/2)}
	})
	r.Register("Mover", func(props map[string]any) engine.ScriptInstance {
		return &Mover{Velocity: rl.Vector3{
			X: floatProp(props, "x", 1),
			Y: floatProp(props, "y", 0),
			Z: floatProp(props, "z", 0),
		}}
	})
}
