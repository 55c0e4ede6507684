package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/assets"
	"spectral/internal/components"
)

// RaycastResult is a 3D ray hit resolved to its entity.
type RaycastResult struct {
	Entity   Entity
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// SceneAccess is the part of a Scene that scripts reach through
// Entity.Scene. Component access goes through the generic functions.
type SceneAccess interface {
	Mode() Mode
	IsPlaying() bool
	FindByID(id components.StableID) (Entity, bool)
	FindByName(name string) (Entity, bool)
	CreateEntity(name string) (Entity, error)
	QueueDestroy(e Entity)
	Assets() *assets.Manager

	ApplyImpulse2D(e Entity, impulse rl.Vector2) error
	ApplyForce2D(e Entity, force rl.Vector2) error
	SetLinearVelocity2D(e Entity, v rl.Vector2) error
	ApplyImpulse3D(e Entity, impulse rl.Vector3) error
	Raycast3D(origin, direction rl.Vector3, maxDistance float32) (RaycastResult, bool)
}

var _ SceneAccess = (*Scene)(nil)
