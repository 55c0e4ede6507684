package components

import (
	"strings"

	"spectral/internal/physics"
	"spectral/internal/physics2d"
)

type BodyType uint8

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

func (t BodyType) String() string {
	switch t {
	case Kinematic:
		return "Kinematic"
	case Dynamic:
		return "Dynamic"
	}
	return "Static"
}

// ParseBodyType is the inverse of String. Unknown names are Static.
func ParseBodyType(s string) BodyType {
	switch strings.ToLower(s) {
	case "kinematic":
		return Kinematic
	case "dynamic":
		return Dynamic
	}
	return Static
}

func (t BodyType) Physics2D() physics2d.BodyType {
	switch t {
	case Kinematic:
		return physics2d.Kinematic
	case Dynamic:
		return physics2d.Dynamic
	}
	return physics2d.Static
}

func (t BodyType) Physics3D() physics.MotionType {
	switch t {
	case Kinematic:
		return physics.MotionKinematic
	case Dynamic:
		return physics.MotionDynamic
	}
	return physics.MotionStatic
}

// RigidBody2D is simulated in the XY plane. RuntimeBody is only set in Play.
type RigidBody2D struct {
	Type           BodyType
	FixedRotation  bool
	AllowSleep     bool
	Awake          bool
	GravityScale   float32
	LinearDamping  float32
	AngularDamping float32

	RuntimeBody physics2d.BodyHandle
}

func NewRigidBody2D(t BodyType) RigidBody2D {
	return RigidBody2D{
		Type:         t,
		AllowSleep:   true,
		Awake:        true,
		GravityScale: 1,
	}
}

// RigidBody3D is simulated by the 3D world. Mass zero means density times
// collider volume.
type RigidBody3D struct {
	Type           BodyType
	AllowSleep     bool
	Awake          bool
	GravityScale   float32
	LinearDamping  float32
	AngularDamping float32
	Mass           float32

	RuntimeBody physics.BodyID
}

func NewRigidBody3D(t BodyType) RigidBody3D {
	return RigidBody3D{
		Type:           t,
		AllowSleep:     true,
		Awake:          true,
		GravityScale:   1,
		LinearDamping:  0.05,
		AngularDamping: 0.05,
	}
}
