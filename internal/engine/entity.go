package engine

import (
	"fmt"

	"spectral/internal/components"
	"spectral/internal/ecs"
)

// Entity is the handle scripts and native code use to reach one entity of a
// scene. It is a small value; copy it freely. The zero Entity is invalid.
type Entity struct {
	scene  *Scene
	handle ecs.Entity
}

// Handle returns the raw registry handle.
func (e Entity) Handle() ecs.Entity { return e.handle }

// Scene returns the narrow scene surface available to scripts.
func (e Entity) Scene() SceneAccess {
	if e.scene == nil {
		return nil
	}
	return e.scene
}

func (e Entity) IsValid() bool {
	return e.scene != nil && e.scene.registry.Alive(e.handle)
}

func (e Entity) Identity() *components.Identity {
	if e.scene == nil {
		return nil
	}
	return ecs.TryGet[components.Identity](e.scene.registry, e.handle)
}

func (e Entity) Transform() *components.Transform {
	if e.scene == nil {
		return nil
	}
	return ecs.TryGet[components.Transform](e.scene.registry, e.handle)
}

// ID returns the stable ID, or 0 for an invalid entity.
func (e Entity) ID() components.StableID {
	if id := e.Identity(); id != nil {
		return id.ID
	}
	return 0
}

func (e Entity) Name() string {
	if id := e.Identity(); id != nil {
		return id.Name
	}
	return ""
}

func (e Entity) String() string {
	if !e.IsValid() {
		return "entity(invalid)"
	}
	return fmt.Sprintf("%s(%s)", e.Name(), e.ID())
}

// EntityRef is a persistent reference to an entity by stable ID. Unlike
// Entity it survives save/load.
type EntityRef struct {
	ID components.StableID // 0 = none
}

// Get resolves the reference in scene.
func (r EntityRef) Get(scene *Scene) (Entity, bool) {
	if r.ID == 0 || scene == nil {
		return Entity{}, false
	}
	return scene.FindByID(r.ID)
}

// IsSet reports whether the reference points at anything. It does not check
// that the entity still exists.
func (r EntityRef) IsSet() bool { return r.ID != 0 }

func (r *EntityRef) Set(e Entity) { r.ID = e.ID() }

func (r *EntityRef) Clear() { r.ID = 0 }
