// Package engine holds the Scene: the entity registry plus the Edit/Play
// lifecycle that builds physics worlds and script instances on entering Play
// and tears them down again on exit.
package engine

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"spectral/internal/assets"
	"spectral/internal/components"
	"spectral/internal/ecs"
	"spectral/internal/logging"
	"spectral/internal/physics"
	"spectral/internal/physics2d"
)

var (
	ErrNotPlaying     = errors.New("engine: scene is not in play mode")
	ErrAlreadyPlaying = errors.New("engine: scene is in play mode")
	ErrDuplicateID    = errors.New("engine: duplicate entity id")
	ErrInvalidID      = errors.New("engine: entity id must be non-zero")
	ErrInvalidEntity  = errors.New("engine: entity does not belong to a scene")
)

type Mode uint8

const (
	Edit Mode = iota
	Play
)

func (m Mode) String() string {
	if m == Play {
		return "play"
	}
	return "edit"
}

// CameraPolicy picks the runtime camera when several are active.
type CameraPolicy uint8

const (
	FirstActive CameraPolicy = iota
	LastActive
)

type Option func(*Scene)

func WithScriptRuntime(rt ScriptRuntime) Option {
	return func(s *Scene) { s.runtime = rt }
}

func WithAssets(m *assets.Manager) Option {
	return func(s *Scene) { s.assets = m }
}

func WithPhysics2D(settings physics2d.Settings) Option {
	return func(s *Scene) { s.settings2D = settings }
}

func WithPhysics3D(settings physics.Settings) Option {
	return func(s *Scene) { s.settings3D = settings }
}

func WithCameraPolicy(p CameraPolicy) Option {
	return func(s *Scene) { s.cameraPolicy = p }
}

type Scene struct {
	Name string

	registry *ecs.Registry
	idMap    map[components.StableID]ecs.Entity
	mode     Mode

	world2D    physics2d.World
	world3D    *physics.System
	settings2D physics2d.Settings
	settings3D physics.Settings

	runtime      ScriptRuntime
	assets       *assets.Manager
	cameraPolicy CameraPolicy
	activeCamera ecs.Entity

	pendingDestroy []ecs.Entity
	scriptErrors   int
	running        []ScriptInstance
	closing        []pendingClose

	// ModeChanged fires after every completed Edit/Play transition.
	ModeChanged EventWithArg[Mode]
}

func NewScene(name string, opts ...Option) *Scene {
	s := &Scene{
		Name:       name,
		registry:   ecs.NewRegistry(),
		idMap:      make(map[components.StableID]ecs.Entity),
		settings2D: physics2d.DefaultSettings(),
		settings3D: physics.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) Mode() Mode      { return s.mode }
func (s *Scene) IsPlaying() bool { return s.mode == Play }

// Assets returns the asset manager the scene was built with, or nil.
func (s *Scene) Assets() *assets.Manager { return s.assets }

// Registry exposes the underlying registry for systems that iterate
// components directly.
func (s *Scene) Registry() *ecs.Registry { return s.registry }

func (s *Scene) wrap(h ecs.Entity) Entity { return Entity{scene: s, handle: h} }

// CreateEntity creates an entity with a fresh stable ID.
func (s *Scene) CreateEntity(name string) (Entity, error) {
	for {
		id := components.NewStableID()
		if _, taken := s.idMap[id]; !taken {
			return s.CreateEntityWithID(id, name)
		}
	}
}

// CreateEntityWithID creates an entity that keeps a persisted stable ID.
// New entities sit on the Default layer.
func (s *Scene) CreateEntityWithID(id components.StableID, name string) (Entity, error) {
	if id == 0 {
		return Entity{}, ErrInvalidID
	}
	if _, ok := s.idMap[id]; ok {
		return Entity{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	h, err := s.registry.Create()
	if err != nil {
		return Entity{}, fmt.Errorf("create entity %q: %w", name, err)
	}
	if _, err := ecs.Add(s.registry, h, components.Identity{ID: id, Name: name, Layer: uint8(physics.LayerDefault)}); err != nil {
		s.registry.Destroy(h)
		return Entity{}, fmt.Errorf("create entity %q: %w", name, err)
	}
	if _, err := ecs.Add(s.registry, h, components.NewTransform()); err != nil {
		s.registry.Destroy(h)
		return Entity{}, fmt.Errorf("create entity %q: %w", name, err)
	}
	s.idMap[id] = h
	return s.wrap(h), nil
}

// DestroyEntity removes e now. In Play its body and script instance are
// released first. Use QueueDestroy from inside script hooks that iterate.
func (s *Scene) DestroyEntity(e Entity) error {
	if e.scene != s || !s.registry.Alive(e.handle) {
		return fmt.Errorf("destroy entity: %w", ecs.ErrStaleEntity)
	}
	if s.registry.Iterating() {
		return fmt.Errorf("destroy entity: %w", ecs.ErrIterating)
	}
	s.releaseRuntime(e)
	if sp := ecs.TryGet[components.Sprite](s.registry, e.handle); sp != nil {
		sp.Texture.Release()
	}
	if m := ecs.TryGet[components.Model](s.registry, e.handle); m != nil {
		m.Model.Release()
	}
	id := e.ID()
	if err := s.registry.Destroy(e.handle); err != nil {
		return fmt.Errorf("destroy entity: %w", err)
	}
	delete(s.idMap, id)
	if s.activeCamera == e.handle {
		s.activeCamera = ecs.Null
	}
	return nil
}

// Clear destroys every entity. It is an Edit-mode operation.
func (s *Scene) Clear() error {
	if s.mode == Play {
		return fmt.Errorf("clear %q: %w", s.Name, ErrAlreadyPlaying)
	}
	for _, e := range slices.Collect(s.Entities()) {
		if err := s.DestroyEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// QueueDestroy defers destruction to the end of the current UpdateRuntime.
func (s *Scene) QueueDestroy(e Entity) {
	if e.scene != s || !s.registry.Alive(e.handle) {
		return
	}
	s.pendingDestroy = append(s.pendingDestroy, e.handle)
}

// FlushDestroyed destroys everything queued with QueueDestroy.
func (s *Scene) FlushDestroyed() {
	pending := s.pendingDestroy
	s.pendingDestroy = nil
	for _, h := range pending {
		if !s.registry.Alive(h) {
			continue
		}
		if err := s.DestroyEntity(s.wrap(h)); err != nil {
			logging.Logger().Warn("engine: queued destroy failed", "entity", h, "err", err)
		}
	}
}

func (s *Scene) FindByID(id components.StableID) (Entity, bool) {
	h, ok := s.idMap[id]
	if !ok {
		return Entity{}, false
	}
	return s.wrap(h), true
}

// FindByName returns the first entity with the given name.
func (s *Scene) FindByName(name string) (Entity, bool) {
	for h, ident := range ecs.Each[components.Identity](s.registry) {
		if ident.Name == name {
			return s.wrap(h), true
		}
	}
	return Entity{}, false
}

// Entities yields every live entity. The registry must not be mutated while
// the sequence runs; collect first when destroying.
func (s *Scene) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for h := range s.registry.Entities() {
			if !yield(s.wrap(h)) {
				return
			}
		}
	}
}

func (s *Scene) EntityCount() int { return s.registry.Len() }

// Stats is a snapshot for the statistics overlay.
type Stats struct {
	Entities       int
	Bodies2D       int
	Bodies3D       int
	ActiveBodies3D int
	Scripts        int
	ScriptErrors   int
}

func (s *Scene) Stats() Stats {
	st := Stats{
		Entities:     s.registry.Len(),
		Scripts:      ecs.Count[Script](s.registry),
		ScriptErrors: s.scriptErrors,
	}
	if s.world2D != nil {
		st.Bodies2D = s.world2D.BodyCount()
	}
	if s.world3D != nil {
		st.Bodies3D = s.world3D.BodyCount()
		st.ActiveBodies3D = s.world3D.ActiveBodyCount()
	}
	return st
}
