package physics

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BodyID names a body inside one System. The zero value is the nil handle.
// Handles from a shut down or different world never resolve.
type BodyID struct {
	Index uint32
	Gen   uint32
	World uint32
}

// IsNil reports whether id is the zero handle.
func (id BodyID) IsNil() bool { return id.Gen == 0 }

func (id BodyID) String() string {
	if id.IsNil() {
		return "body(nil)"
	}
	return fmt.Sprintf("body(%d:%d@%d)", id.Index, id.Gen, id.World)
}

type MotionType uint8

const (
	MotionStatic MotionType = iota
	MotionKinematic
	MotionDynamic
)

func (m MotionType) String() string {
	switch m {
	case MotionStatic:
		return "Static"
	case MotionKinematic:
		return "Kinematic"
	case MotionDynamic:
		return "Dynamic"
	}
	return fmt.Sprintf("MotionType(%d)", uint8(m))
}

type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeBox
	ShapeSphere
)

// Shape is the single collision shape of a body, in body-local space.
type Shape struct {
	Kind        ShapeKind
	HalfExtents rl.Vector3 // ShapeBox
	Radius      float32    // ShapeSphere
}

// BoxShape builds a box shape from full extents.
func BoxShape(size rl.Vector3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: rl.Vector3Scale(size, 0.5)}
}

// SphereShape builds a sphere shape.
func SphereShape(radius float32) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

func (s Shape) volume() float32 {
	switch s.Kind {
	case ShapeBox:
		return 8 * s.HalfExtents.X * s.HalfExtents.Y * s.HalfExtents.Z
	case ShapeSphere:
		return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	}
	return 0
}

func (s Shape) validate() error {
	switch s.Kind {
	case ShapeNone:
		return nil
	case ShapeBox:
		if s.HalfExtents.X <= 0 || s.HalfExtents.Y <= 0 || s.HalfExtents.Z <= 0 {
			return fmt.Errorf("box half extents %v must be positive", s.HalfExtents)
		}
	case ShapeSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("sphere radius %v must be positive", s.Radius)
		}
	default:
		return fmt.Errorf("unknown shape kind %d", s.Kind)
	}
	return nil
}

// BodySettings describes a body at creation time.
type BodySettings struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler radians, XYZ
	Motion   MotionType
	Layer    ObjectLayer
	Shape    Shape
	Offset   rl.Vector3 // shape center relative to the body origin

	// Mass overrides Density*volume when positive.
	Mass           float32
	Density        float32
	Friction       float32
	Restitution    float32
	GravityScale   float32
	LinearDamping  float32
	AngularDamping float32
	AllowSleep     bool
	Awake          bool

	// UserData is opaque to the world and handed back by raycasts.
	UserData uint64
}

type body struct {
	gen   uint32
	used  bool
	added bool

	pos, rot       rl.Vector3
	vel, angVel    rl.Vector3
	motion         MotionType
	layer          ObjectLayer
	shape          Shape
	offset         rl.Vector3
	invMass        float32
	friction       float32
	restitution    float32
	gravityScale   float32
	linearDamping  float32
	angularDamping float32
	allowSleep     bool
	sleeping       bool
	sleepTimer     float32
	userData       uint64
}

func (b *body) reset(s BodySettings) {
	gen := b.gen
	*b = body{
		gen:            gen,
		used:           true,
		pos:            s.Position,
		rot:            s.Rotation,
		motion:         s.Motion,
		layer:          s.Layer,
		shape:          s.Shape,
		offset:         s.Offset,
		friction:       s.Friction,
		restitution:    s.Restitution,
		gravityScale:   s.GravityScale,
		linearDamping:  s.LinearDamping,
		angularDamping: s.AngularDamping,
		allowSleep:     s.AllowSleep,
		sleeping:       !s.Awake && s.AllowSleep,
		userData:       s.UserData,
	}
	if s.Motion == MotionDynamic {
		mass := s.Mass
		if mass <= 0 {
			mass = s.Density * s.Shape.volume()
		}
		if mass <= 0 {
			mass = 1
		}
		b.invMass = 1 / mass
	}
	if s.Motion == MotionStatic {
		b.sleeping = true
	}
}

// moving reports whether the body takes part in integration this step.
func (b *body) moving() bool {
	return b.added && b.motion != MotionStatic && !b.sleeping
}

func (b *body) wake() {
	if b.motion == MotionStatic {
		return
	}
	b.sleeping = false
	b.sleepTimer = 0
}

// center returns the world-space shape center.
func (b *body) center() rl.Vector3 {
	if b.offset == (rl.Vector3{}) {
		return b.pos
	}
	return rl.Vector3Add(b.pos, rl.Vector3Transform(b.offset, rl.MatrixRotateZYX(b.rot)))
}

func (b *body) obb() OBB {
	return NewOBB(b.center(), b.shape.HalfExtents, b.rot)
}

// bounds returns the world-space AABB of the body's shape.
func (b *body) bounds() AABB {
	c := b.center()
	switch b.shape.Kind {
	case ShapeSphere:
		r := b.shape.Radius
		return AABB{
			Min: rl.Vector3{X: c.X - r, Y: c.Y - r, Z: c.Z - r},
			Max: rl.Vector3{X: c.X + r, Y: c.Y + r, Z: c.Z + r},
		}
	case ShapeBox:
		return b.obb().Bounds()
	}
	return AABB{Min: c, Max: c}
}
