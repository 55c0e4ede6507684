package engine

import (
	"fmt"

	"spectral/internal/components"
	"spectral/internal/ecs"
	"spectral/internal/logging"
)

// AddComponent attaches c to e. In Play, rigid bodies get a runtime body and
// scripts are loaded and started immediately.
func AddComponent[T any](e Entity, c T) (*T, error) {
	if e.scene == nil {
		return nil, ErrInvalidEntity
	}
	p, err := ecs.Add(e.scene.registry, e.handle, c)
	if err != nil {
		return nil, err
	}
	e.scene.componentAdded(e, p)
	return p, nil
}

func GetComponent[T any](e Entity) (*T, error) {
	if e.scene == nil {
		return nil, ErrInvalidEntity
	}
	return ecs.Get[T](e.scene.registry, e.handle)
}

// TryGetComponent returns nil when e lacks T.
func TryGetComponent[T any](e Entity) *T {
	if e.scene == nil {
		return nil
	}
	return ecs.TryGet[T](e.scene.registry, e.handle)
}

func HasComponent[T any](e Entity) bool {
	return e.scene != nil && ecs.Has[T](e.scene.registry, e.handle)
}

// RemoveComponent detaches T from e, releasing any runtime state it owns.
// Identity and Transform are part of every entity and cannot be removed.
func RemoveComponent[T any](e Entity) bool {
	if e.scene == nil {
		return false
	}
	p := ecs.TryGet[T](e.scene.registry, e.handle)
	if p == nil {
		return false
	}
	switch any(p).(type) {
	case *components.Identity, *components.Transform:
		return false
	}
	e.scene.componentRemoving(e, p)
	return ecs.Remove[T](e.scene.registry, e.handle)
}

// GetOrAddComponent returns the existing T or attaches def.
func GetOrAddComponent[T any](e Entity, def T) (*T, error) {
	if p := TryGetComponent[T](e); p != nil {
		return p, nil
	}
	return AddComponent(e, def)
}

// MustComponent panics when e lacks T.
func MustComponent[T any](e Entity) *T {
	p, err := GetComponent[T](e)
	if err != nil {
		panic(fmt.Sprintf("engine: %v on %s", err, e))
	}
	return p
}

func (s *Scene) componentAdded(e Entity, c any) {
	if s.mode != Play {
		return
	}
	switch v := c.(type) {
	case *components.RigidBody2D:
		if err := s.createBody2D(e, v); err != nil {
			logging.Logger().Warn("engine: 2d body creation failed", "entity", e.ID(), "err", err)
		}
	case *components.RigidBody3D:
		if err := s.createBody3D(e, v); err != nil {
			logging.Logger().Warn("engine: 3d body creation failed", "entity", e.ID(), "err", err)
		}
	case *Script:
		s.startScript(e, v)
	}
}

func (s *Scene) componentRemoving(e Entity, c any) {
	switch v := c.(type) {
	case *components.RigidBody2D:
		s.releaseBody2D(v)
	case *components.RigidBody3D:
		s.releaseBody3D(v)
	case *Script:
		s.stopScript(e, v)
	case *components.Sprite:
		v.Texture.Release()
	case *components.Model:
		v.Model.Release()
	}
}
