package engine

import (
	"fmt"

	"spectral/internal/components"
	"spectral/internal/ecs"
	"spectral/internal/logging"
	"spectral/internal/physics"
	"spectral/internal/physics2d"
)

// EnterPlay builds the physics worlds and bodies, then starts scripts. If
// anything fails the scene is left in Edit with nothing half-built.
func (s *Scene) EnterPlay() error {
	if s.mode == Play {
		return nil
	}
	w2, err := physics2d.NewWorld(s.settings2D)
	if err != nil {
		return fmt.Errorf("enter play: %w", err)
	}
	w3, err := physics.New(s.settings3D)
	if err != nil {
		w2.Destroy()
		return fmt.Errorf("enter play: %w", err)
	}
	s.world2D, s.world3D = w2, w3
	s.mode = Play
	s.scriptErrors = 0

	if err := s.buildBodies(); err != nil {
		s.teardown()
		s.mode = Edit
		return fmt.Errorf("enter play: %w", err)
	}
	s.startScripts()

	logging.Logger().Info("engine: entered play", "scene", s.Name,
		"entities", s.registry.Len(), "bodies2d", w2.BodyCount(), "bodies3d", w3.BodyCount())
	s.ModeChanged.Invoke(Play)
	return nil
}

func (s *Scene) buildBodies() error {
	for h, rb := range ecs.Each[components.RigidBody2D](s.registry) {
		if err := s.createBody2D(s.wrap(h), rb); err != nil {
			return err
		}
	}
	for h, rb := range ecs.Each[components.RigidBody3D](s.registry) {
		if err := s.createBody3D(s.wrap(h), rb); err != nil {
			return err
		}
	}
	return nil
}

// ExitPlay releases everything EnterPlay built. Component configuration is
// left exactly as it was.
func (s *Scene) ExitPlay() error {
	if s.mode == Edit {
		return nil
	}
	s.teardown()
	s.mode = Edit
	logging.Logger().Info("engine: exited play", "scene", s.Name, "scriptErrors", s.scriptErrors)
	s.ModeChanged.Invoke(Edit)
	return nil
}

func (s *Scene) teardown() {
	if s.world3D != nil {
		for _, rb := range ecs.Each[components.RigidBody3D](s.registry) {
			s.releaseBody3D(rb)
		}
		s.world3D.Shutdown()
		s.world3D = nil
	}
	if s.world2D != nil {
		s.world2D.Destroy()
		s.world2D = nil
	}
	for _, rb := range ecs.Each[components.RigidBody2D](s.registry) {
		rb.RuntimeBody = physics2d.BodyHandle{}
	}
	s.stopScripts()
	s.activeCamera = ecs.Null
	s.pendingDestroy = nil
}

// UpdateRuntime advances one Play frame: scripts, physics, camera, then
// queued destroys.
func (s *Scene) UpdateRuntime(dt float32) error {
	if s.mode != Play {
		return ErrNotPlaying
	}
	s.updateScripts(dt)
	if err := s.StepPhysics(dt); err != nil {
		return err
	}
	s.ResolveCamera()
	s.FlushDestroyed()
	return nil
}

// UpdateEditor refreshes camera views. Nothing is simulated.
func (s *Scene) UpdateEditor(float32) {
	s.refreshCameras()
}
