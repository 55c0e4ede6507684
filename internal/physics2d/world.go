// Package physics2d wraps the 2D rigid-body engines the scene can simulate
// with during Play. Chipmunk (jakecoffman/cp) is the default back-end;
// Box2D-lite is available as a lighter alternative.
package physics2d

import (
	"errors"
	"fmt"
	"math"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	ErrWorldDestroyed = errors.New("physics2d: world destroyed")
	ErrInvalidBody    = errors.New("physics2d: invalid body")
	ErrUnknownBackend = errors.New("physics2d: unknown backend")
)

// BodyHandle names a body inside one World. The zero value is the nil handle.
type BodyHandle struct {
	Index uint32
	Gen   uint32
	World uint32
}

func (h BodyHandle) IsNil() bool { return h.Gen == 0 }

func (h BodyHandle) String() string {
	if h.IsNil() {
		return "body2d(nil)"
	}
	return fmt.Sprintf("body2d(%d:%d@%d)", h.Index, h.Gen, h.World)
}

type BodyType uint8

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
)

// ShapeDef is one fixture of a body, in body-local space.
type ShapeDef struct {
	Kind        ShapeKind
	HalfSize    rl.Vector2 // ShapeBox
	Radius      float32    // ShapeCircle
	Offset      rl.Vector2
	Density     float32
	Friction    float32
	Restitution float32
}

// mass returns density times area.
func (s ShapeDef) mass() float64 {
	switch s.Kind {
	case ShapeBox:
		return float64(s.Density) * 4 * float64(s.HalfSize.X) * float64(s.HalfSize.Y)
	case ShapeCircle:
		return float64(s.Density) * math.Pi * float64(s.Radius) * float64(s.Radius)
	}
	return 0
}

// BodyDef describes a body at creation time.
type BodyDef struct {
	Type           BodyType
	Position       rl.Vector2
	Angle          float32 // radians
	FixedRotation  bool
	AllowSleep     bool
	Awake          bool
	GravityScale   float32
	LinearDamping  float32
	AngularDamping float32
	Shapes         []ShapeDef

	// Categories and Mask filter contacts between shapes. Zero means all.
	Categories uint32
	Mask       uint32
}

// World is a 2D physics world. Destroy frees every body; afterwards every
// call fails with ErrWorldDestroyed.
type World interface {
	CreateBody(def BodyDef) (BodyHandle, error)
	DestroyBody(h BodyHandle) error
	Step(dt float32, velocityIterations, positionIterations int) error

	Pose(h BodyHandle) (pos rl.Vector2, angle float32, err error)
	IsAwake(h BodyHandle) bool
	LinearVelocity(h BodyHandle) (rl.Vector2, error)

	ApplyImpulse(h BodyHandle, impulse rl.Vector2) error
	ApplyForce(h BodyHandle, force rl.Vector2) error
	SetLinearVelocity(h BodyHandle, v rl.Vector2) error
	SetTransform(h BodyHandle, pos rl.Vector2, angle float32) error

	BodyCount() int
	Destroy()
}

type Backend string

const (
	BackendChipmunk  Backend = "chipmunk"
	BackendBox2DLite Backend = "box2d-lite"
)

// ParseBackend accepts the config spellings of a back-end. Empty means
// chipmunk.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chipmunk", "cp":
		return BackendChipmunk, nil
	case "box2d-lite", "box2dlite", "box2d":
		return BackendBox2DLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

type Settings struct {
	Backend            Backend
	Gravity            rl.Vector2
	VelocityIterations int
	PositionIterations int
}

func DefaultSettings() Settings {
	return Settings{
		Backend:            BackendChipmunk,
		Gravity:            rl.Vector2{Y: -15},
		VelocityIterations: 6,
		PositionIterations: 2,
	}
}

// NewWorld builds a world on the configured back-end.
func NewWorld(s Settings) (World, error) {
	switch s.Backend {
	case BackendChipmunk, "":
		return newChipmunkWorld(s), nil
	case BackendBox2DLite:
		return newBox2DWorld(s), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
}
