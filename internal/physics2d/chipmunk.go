package physics2d

import (
	"math"

	"github.com/jakecoffman/cp"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/logging"
)

const sleepTimeThreshold = 0.5

type cpBody struct {
	body           *cp.Body
	shapes         []*cp.Shape
	typ            BodyType
	allowSleep     bool
	fixedRotation  bool
	linearDamping  float64
	angularDamping float64
}

type chipmunkWorld struct {
	space  *cp.Space
	bodies table[*cpBody]
}

func newChipmunkWorld(s Settings) *chipmunkWorld {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: float64(s.Gravity.X), Y: float64(s.Gravity.Y)})
	space.SleepTimeThreshold = sleepTimeThreshold
	if s.VelocityIterations > 0 {
		space.Iterations = uint(s.VelocityIterations)
	}
	w := &chipmunkWorld{space: space, bodies: newTable[*cpBody]()}
	logging.Logger().Info("physics2d: world created", "backend", BackendChipmunk, "world", w.bodies.world)
	return w
}

func toCP(v rl.Vector2) cp.Vector { return cp.Vector{X: float64(v.X), Y: float64(v.Y)} }

func fromCP(v cp.Vector) rl.Vector2 { return rl.Vector2{X: float32(v.X), Y: float32(v.Y)} }

func filterFor(def BodyDef) cp.ShapeFilter {
	categories, mask := uint(def.Categories), uint(def.Mask)
	if def.Categories == 0 {
		categories = cp.ALL_CATEGORIES
	}
	if def.Mask == 0 {
		mask = cp.ALL_CATEGORIES
	}
	return cp.NewShapeFilter(cp.NO_GROUP, categories, mask)
}

func (w *chipmunkWorld) CreateBody(def BodyDef) (BodyHandle, error) {
	if w.bodies.destroyed {
		return BodyHandle{}, ErrWorldDestroyed
	}

	var body *cp.Body
	switch def.Type {
	case Static:
		body = cp.NewStaticBody()
	case Kinematic:
		body = cp.NewKinematicBody()
	default:
		mass, moment := massProperties(def.Shapes)
		if def.FixedRotation {
			moment = math.Inf(1)
		}
		body = cp.NewBody(mass, moment)
	}
	body.SetPosition(toCP(def.Position))
	body.SetAngle(float64(def.Angle))

	rec := &cpBody{
		body:           body,
		typ:            def.Type,
		allowSleep:     def.AllowSleep,
		fixedRotation:  def.FixedRotation,
		linearDamping:  float64(def.LinearDamping),
		angularDamping: float64(def.AngularDamping),
	}
	if def.Type == Dynamic {
		scale := float64(def.GravityScale)
		body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
			damping *= math.Max(0, 1-rec.linearDamping*dt)
			cp.BodyUpdateVelocity(b, gravity.Mult(scale), damping, dt)
			if rec.angularDamping > 0 {
				b.SetAngularVelocity(b.AngularVelocity() * math.Max(0, 1-rec.angularDamping*dt))
			}
		})
	}
	w.space.AddBody(body)

	filter := filterFor(def)
	for _, sd := range def.Shapes {
		var shape *cp.Shape
		switch sd.Kind {
		case ShapeCircle:
			shape = cp.NewCircle(body, float64(sd.Radius), toCP(sd.Offset))
		default:
			ox, oy := float64(sd.Offset.X), float64(sd.Offset.Y)
			hx, hy := float64(sd.HalfSize.X), float64(sd.HalfSize.Y)
			shape = cp.NewBox2(body, cp.BB{L: ox - hx, B: oy - hy, R: ox + hx, T: oy + hy}, 0)
		}
		shape.SetFriction(float64(sd.Friction))
		shape.SetElasticity(float64(sd.Restitution))
		shape.SetFilter(filter)
		w.space.AddShape(shape)
		rec.shapes = append(rec.shapes, shape)
	}

	// Chipmunk bodies always start awake; Awake=false only matters on box2d-lite.
	return w.bodies.insert(rec), nil
}

// massProperties sums density*area over the shapes. A body without mass gets
// a unit box so the solver stays stable.
func massProperties(shapes []ShapeDef) (mass, moment float64) {
	for _, sd := range shapes {
		m := sd.mass()
		if m <= 0 {
			continue
		}
		mass += m
		switch sd.Kind {
		case ShapeCircle:
			moment += cp.MomentForCircle(m, 0, float64(sd.Radius), toCP(sd.Offset))
		default:
			moment += cp.MomentForBox(m, 2*float64(sd.HalfSize.X), 2*float64(sd.HalfSize.Y))
		}
	}
	if mass <= 0 {
		return 1, cp.MomentForBox(1, 1, 1)
	}
	return mass, moment
}

func (w *chipmunkWorld) DestroyBody(h BodyHandle) error {
	rec, err := w.bodies.remove(h)
	if err != nil {
		return err
	}
	for _, s := range rec.shapes {
		w.space.RemoveShape(s)
	}
	w.space.RemoveBody(rec.body)
	return nil
}

func (w *chipmunkWorld) Step(dt float32, velocityIterations, _ int) error {
	if w.bodies.destroyed {
		return ErrWorldDestroyed
	}
	if velocityIterations > 0 {
		w.space.Iterations = uint(velocityIterations)
	}
	w.bodies.each(func(rec *cpBody) {
		if rec.typ == Dynamic && !rec.allowSleep && rec.body.IsSleeping() {
			rec.body.Activate()
		}
	})
	w.space.Step(float64(dt))
	return nil
}

func (w *chipmunkWorld) Pose(h BodyHandle) (rl.Vector2, float32, error) {
	rec, err := w.bodies.get(h)
	if err != nil {
		return rl.Vector2{}, 0, err
	}
	return fromCP(rec.body.Position()), float32(rec.body.Angle()), nil
}

func (w *chipmunkWorld) IsAwake(h BodyHandle) bool {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ == Static {
		return false
	}
	return !rec.body.IsSleeping()
}

func (w *chipmunkWorld) LinearVelocity(h BodyHandle) (rl.Vector2, error) {
	rec, err := w.bodies.get(h)
	if err != nil {
		return rl.Vector2{}, err
	}
	return fromCP(rec.body.Velocity()), nil
}

func (w *chipmunkWorld) ApplyImpulse(h BodyHandle, impulse rl.Vector2) error {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ != Dynamic {
		return err
	}
	rec.body.Activate()
	rec.body.ApplyImpulseAtWorldPoint(toCP(impulse), rec.body.Position())
	return nil
}

func (w *chipmunkWorld) ApplyForce(h BodyHandle, force rl.Vector2) error {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ != Dynamic {
		return err
	}
	rec.body.Activate()
	rec.body.ApplyForceAtWorldPoint(toCP(force), rec.body.Position())
	return nil
}

func (w *chipmunkWorld) SetLinearVelocity(h BodyHandle, v rl.Vector2) error {
	rec, err := w.bodies.get(h)
	if err != nil || rec.typ == Static {
		return err
	}
	rec.body.Activate()
	rec.body.SetVelocityVector(toCP(v))
	return nil
}

func (w *chipmunkWorld) SetTransform(h BodyHandle, pos rl.Vector2, angle float32) error {
	rec, err := w.bodies.get(h)
	if err != nil {
		return err
	}
	if rec.typ != Static {
		rec.body.Activate()
	}
	rec.body.SetPosition(toCP(pos))
	rec.body.SetAngle(float64(angle))
	if rec.typ == Static {
		// Static shapes are only reindexed when they enter the space.
		for _, s := range rec.shapes {
			w.space.RemoveShape(s)
			w.space.AddShape(s)
		}
	}
	return nil
}

func (w *chipmunkWorld) BodyCount() int { return w.bodies.count }

func (w *chipmunkWorld) Destroy() {
	if w.bodies.destroyed {
		return
	}
	w.bodies.each(func(rec *cpBody) {
		for _, s := range rec.shapes {
			w.space.RemoveShape(s)
		}
		w.space.RemoveBody(rec.body)
	})
	w.bodies.destroy()
	w.space = nil
	logging.Logger().Info("physics2d: world destroyed", "backend", BackendChipmunk)
}
