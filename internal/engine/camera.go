package engine

import (
	"spectral/internal/components"
	"spectral/internal/ecs"
)

// refreshCameras syncs every camera's view with its transform.
func (s *Scene) refreshCameras() {
	for _, row := range ecs.Each2[components.Transform, components.Camera](s.registry) {
		cam := row.B
		if cam.Camera == nil {
			cam.Camera = components.NewRuntimeCamera()
		}
		cam.Camera.SetView(*row.A)
	}
}

// ResolveCamera refreshes camera views and picks the runtime camera among the
// active ones according to the scene's policy. At most one camera wins.
func (s *Scene) ResolveCamera() (Entity, bool) {
	s.activeCamera = ecs.Null
	for h, row := range ecs.Each2[components.Transform, components.Camera](s.registry) {
		cam := row.B
		if cam.Camera == nil {
			cam.Camera = components.NewRuntimeCamera()
		}
		cam.Camera.SetView(*row.A)
		if !cam.Active {
			continue
		}
		if s.cameraPolicy == FirstActive && !s.activeCamera.IsNull() {
			continue
		}
		s.activeCamera = h
	}
	if s.activeCamera.IsNull() {
		return Entity{}, false
	}
	return s.wrap(s.activeCamera), true
}

// ActiveCamera returns the camera chosen by the last ResolveCamera.
func (s *Scene) ActiveCamera() (Entity, *components.Camera, bool) {
	cam := ecs.TryGet[components.Camera](s.registry, s.activeCamera)
	if cam == nil || cam.Camera == nil {
		return Entity{}, nil, false
	}
	return s.wrap(s.activeCamera), cam, true
}
