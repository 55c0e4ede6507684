package physics2d

import (
	"math"

	"github.com/neguse/go-box2d-lite/box2dlite"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/logging"
)

// Box2D-lite only knows single boxes. Circles become their bounding square
// and multi-shape bodies use the first shape. It has no sleeping, filtering or
// restitution. Bodies without shapes never enter the box2dlite world; Step
// integrates them on their own so they have no contacts.
type b2Body struct {
	body          *box2dlite.Body
	typ           BodyType
	shapeless     bool
	offset        rl.Vector2
	gravityScale  float64
	fixedRotation bool
	linearDamping float64
	angularDamp   float64
}

type box2DWorld struct {
	world   *box2dlite.World
	gravity box2dlite.Vec2
	bodies  table[*b2Body]
}

func newBox2DWorld(s Settings) *box2DWorld {
	iters := s.VelocityIterations
	if iters <= 0 {
		iters = DefaultSettings().VelocityIterations
	}
	g := box2dlite.Vec2{X: float64(s.Gravity.X), Y: float64(s.Gravity.Y)}
	w := &box2DWorld{
		world:   box2dlite.NewWorld(g, iters),
		gravity: g,
		bodies:  newTable[*b2Body](),
	}
	logging.Logger().Info("physics2d: world created", "backend", BackendBox2DLite, "world", w.bodies.world)
	return w
}

func (w *box2DWorld) CreateBody(def BodyDef) (BodyHandle, error) {
	if w.bodies.destroyed {
		return BodyHandle{}, ErrWorldDestroyed
	}
	size := box2dlite.Vec2{X: 1, Y: 1}
	friction := 0.2
	var offset rl.Vector2
	mass := 0.0
	if len(def.Shapes) > 0 {
		sd := def.Shapes[0]
		switch sd.Kind {
		case ShapeCircle:
			size = box2dlite.Vec2{X: 2 * float64(sd.Radius), Y: 2 * float64(sd.Radius)}
		default:
			size = box2dlite.Vec2{X: 2 * float64(sd.HalfSize.X), Y: 2 * float64(sd.HalfSize.Y)}
		}
		friction = float64(sd.Friction)
		offset = sd.Offset
		mass = sd.mass()
	}
	if def.Type != Dynamic {
		mass = math.MaxFloat64
	} else if mass <= 0 {
		mass = 1
	}

	b := &box2dlite.Body{}
	b.Set(&size, mass)
	b.Friction = friction
	b.Rotation = float64(def.Angle)
	b.Position = w.shapeCenter(def.Position, offset, def.Angle)

	rec := &b2Body{
		body:          b,
		typ:           def.Type,
		offset:        offset,
		gravityScale:  float64(def.GravityScale),
		fixedRotation: def.FixedRotation,
		linearDamping: float64(def.LinearDamping),
		angularDamp:   float64(def.AngularDamping),
	}
	rec.shapeless = len(def.Shapes) == 0
	if !rec.shapeless {
		w.world.AddBody(b)
	}
	return w.bodies.insert(rec), nil
}

// shapeCenter places the single box at the body origin plus its rotated
// offset.
func (w *box2DWorld) shapeCenter(pos, offset rl.Vector2, angle float32) box2dlite.Vec2 {
	o := rl.Vector2Rotate(offset, angle)
	return box2dlite.Vec2{X: float64(pos.X + o.X), Y: float64(pos.Y + o.Y)}
}

func (w *box2DWorld) origin(rec *b2Body) rl.Vector2 {
	o := rl.Vector2Rotate(rec.offset, float32(rec.body.Rotation))
	return rl.Vector2{X: float32(rec.body.Position.X) - o.X, Y: float32(rec.body.Position.Y) - o.Y}
}

// DestroyBody rebuilds the body list without the removed body. The world
// keeps no other handle on it once Clear has dropped the contact cache.
func (w *box2DWorld) DestroyBody(h BodyHandle) error {
	if _, err := w.bodies.remove(h); err != nil {
		return err
	}
	w.world.Clear()
	w.bodies.each(func(rec *b2Body) {
		if !rec.shapeless {
			w.world.AddBody(rec.body)
		}
	})
	return nil
}

func (w *box2DWorld) Step(dt float32, velocityIterations, _ int) error {
	if w.bodies.destroyed {
		return ErrWorldDestroyed
	}
	if velocityIterations > 0 {
		w.world.Iterations = velocityIterations
	}
	h := float64(dt)
	type spin struct {
		rec *b2Body
		rot float64
	}
	var fixed []spin
	w.bodies.each(func(rec *b2Body) {
		if rec.typ != Dynamic {
			return
		}
		b := rec.body
		if rec.shapeless {
			return
		}
		// The world applies full gravity; add the difference as a force.
		if rec.gravityScale != 1 {
			b.Force.X += (rec.gravityScale - 1) * w.gravity.X * b.Mass
			b.Force.Y += (rec.gravityScale - 1) * w.gravity.Y * b.Mass
		}
		if rec.linearDamping > 0 {
			k := math.Max(0, 1-rec.linearDamping*h)
			b.Velocity.X *= k
			b.Velocity.Y *= k
		}
		if rec.angularDamp > 0 {
			b.AngularVelocity *= math.Max(0, 1-rec.angularDamp*h)
		}
		if rec.fixedRotation {
			fixed = append(fixed, spin{rec, b.Rotation})
		}
	})
	w.world.Step(h)
	w.bodies.each(func(rec *b2Body) {
		if rec.shapeless {
			w.integrateFree(rec, h)
		}
	})
	for _, f := range fixed {
		f.rec.body.Rotation = f.rot
		f.rec.body.AngularVelocity = 0
	}
	return nil
}

// integrateFree advances a body that has no shapes the way the world would,
// minus the contact solve.
func (w *box2DWorld) integrateFree(rec *b2Body, h float64) {
	b := rec.body
	if rec.typ == Dynamic {
		inv := 1 / b.Mass
		b.Velocity.X += h * (w.gravity.X*rec.gravityScale + b.Force.X*inv)
		b.Velocity.Y += h * (w.gravity.Y*rec.gravityScale + b.Force.Y*inv)
		if rec.linearDamping > 0 {
			k := math.Max(0, 1-rec.linearDamping*h)
			b.Velocity.X *= k
			b.Velocity.Y *= k
		}
	}
	if rec.typ != Static {
		b.Position.X += h * b.Velocity.X
		b.Position.Y += h * b.Velocity.Y
		if !rec.fixedRotation {
			b.Rotation += h * b.AngularVelocity
		}
	}
	b.Force = box2dlite.Vec2{}
	b.Torque = 0
}

func (w *box2DWorld) Pose(h BodyHandle) (rl.Vector2, float32, error) {
	rec, err := w.bodies.get(h)
	if err != nil {
		return rl.Vector2{}, 0, err
	}
	return w.origin(rec), float32(rec.body.Rotation), nil
}

func (w *box2DWorld) IsAwake(h BodyHandle) bool {
	rec, err := w.bodies.get(h)
	return err == nil && rec.typ != Static
}

func (w *box2DWorld) LinearVelocity(h BodyHandle) (rl.Vector2, error) {
	rec, err := w.bodies.get(h)
	if err != nil {
		return rl.Vector2{}, err
	}
	return rl.Vector2{X: float32(rec.body.Velocity.X), Y: float32(rec.body.Velocity.Y)}, nil
}

func (w *box2DWorld) ApplyImpulse(h BodyHandle, impulse rl.Vector2) error {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ != Dynamic {
		return err
	}
	inv := 1 / rec.body.Mass
	rec.body.Velocity.X += float64(impulse.X) * inv
	rec.body.Velocity.Y += float64(impulse.Y) * inv
	return nil
}

func (w *box2DWorld) ApplyForce(h BodyHandle, force rl.Vector2) error {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ != Dynamic {
		return err
	}
	rec.body.Force.X += float64(force.X)
	rec.body.Force.Y += float64(force.Y)
	return nil
}

func (w *box2DWorld) SetLinearVelocity(h BodyHandle, v rl.Vector2) error {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ == Static {
		return err
	}
	rec.body.Velocity = box2dlite.Vec2{X: float64(v.X), Y: float64(v.Y)}
	return nil
}

func (w *box2DWorld) SetTransform(h BodyHandle, pos rl.Vector2, angle float32) error {
	rec, err := w.bodies.get(h)
	if err != nil {
		return err
	}
	rec.body.Rotation = float64(angle)
	rec.body.Position = w.shapeCenter(pos, rec.offset, angle)
	return nil
}

func (w *box2DWorld) BodyCount() int { return w.bodies.count }

func (w *box2DWorld) Destroy() {
	if w.bodies.destroyed {
		return
	}
	w.world.Clear()
	w.bodies.destroy()
	w.world = nil
	logging.Logger().Info("physics2d: world destroyed", "backend", BackendBox2DLite)
}
