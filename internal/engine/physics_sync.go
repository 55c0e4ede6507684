package engine

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/components"
	"spectral/internal/ecs"
	"spectral/internal/logging"
	"spectral/internal/physics"
	"spectral/internal/physics2d"
)

const allCategories = ^uint32(0)

// filter2D turns an identity layer into a category bit and mask. Static
// layer shapes touch everything; other layers touch Static and themselves.
func filter2D(layer uint8) (categories, mask uint32) {
	if layer >= 32 {
		layer = uint8(physics.LayerDefault)
	}
	categories = 1 << layer
	if physics.ObjectLayer(layer) == physics.LayerStatic {
		return categories, allCategories
	}
	return categories, categories | 1<<uint8(physics.LayerStatic)
}

func (s *Scene) createBody2D(e Entity, rb *components.RigidBody2D) error {
	if s.world2D == nil {
		return ErrNotPlaying
	}
	tr := e.Transform()
	def := physics2d.BodyDef{
		Type:           rb.Type.Physics2D(),
		Position:       rl.Vector2{X: tr.Translation.X, Y: tr.Translation.Y},
		Angle:          tr.Rotation.Z,
		FixedRotation:  rb.FixedRotation,
		AllowSleep:     rb.AllowSleep,
		Awake:          rb.Awake,
		GravityScale:   rb.GravityScale,
		LinearDamping:  rb.LinearDamping,
		AngularDamping: rb.AngularDamping,
	}
	def.Categories, def.Mask = filter2D(e.Identity().Layer)

	if bc := TryGetComponent[components.BoxCollider2D](e); bc != nil {
		size := bc.ScaledSize(tr.Scale)
		def.Shapes = append(def.Shapes, physics2d.ShapeDef{
			Kind:        physics2d.ShapeBox,
			HalfSize:    rl.Vector2Scale(size, 0.5),
			Offset:      bc.Offset,
			Density:     bc.Density,
			Friction:    bc.Friction,
			Restitution: bc.Restitution,
		})
	}
	if cc := TryGetComponent[components.CircleCollider2D](e); cc != nil {
		def.Shapes = append(def.Shapes, physics2d.ShapeDef{
			Kind:        physics2d.ShapeCircle,
			Radius:      cc.Radius * max(absf(tr.Scale.X), absf(tr.Scale.Y)),
			Offset:      cc.Offset,
			Density:     cc.Density,
			Friction:    cc.Friction,
			Restitution: cc.Restitution,
		})
	}

	h, err := s.world2D.CreateBody(def)
	if err != nil {
		return fmt.Errorf("2d body for %s: %w", e, err)
	}
	rb.RuntimeBody = h
	return nil
}

func (s *Scene) createBody3D(e Entity, rb *components.RigidBody3D) error {
	if s.world3D == nil {
		return ErrNotPlaying
	}
	tr := e.Transform()
	layer := physics.ObjectLayer(e.Identity().Layer)
	if layer >= physics.NumLayers {
		layer = physics.LayerDefault
	}
	if layer == physics.LayerStatic && rb.Type != components.Static {
		logging.Logger().Debug("engine: moving body on static layer moved to default", "entity", e.ID())
		layer = physics.LayerDefault
	}
	bs := physics.BodySettings{
		Position:       tr.Translation,
		Rotation:       tr.Rotation,
		Motion:         rb.Type.Physics3D(),
		Layer:          layer,
		Mass:           rb.Mass,
		GravityScale:   rb.GravityScale,
		LinearDamping:  rb.LinearDamping,
		AngularDamping: rb.AngularDamping,
		AllowSleep:     rb.AllowSleep,
		Awake:          rb.Awake,
		UserData:       uint64(e.ID()),
	}
	if bc := TryGetComponent[components.BoxCollider3D](e); bc != nil {
		bs.Shape = physics.BoxShape(bc.ScaledSize(tr.Scale))
		bs.Offset, bs.Density, bs.Friction, bs.Restitution = bc.Offset, bc.Density, bc.Friction, bc.Restitution
	} else if sc := TryGetComponent[components.SphereCollider3D](e); sc != nil {
		bs.Shape = physics.SphereShape(components.ScaledRadius(sc.Radius, tr.Scale))
		bs.Offset, bs.Density, bs.Friction, bs.Restitution = sc.Offset, sc.Density, sc.Friction, sc.Restitution
	}

	id, err := s.world3D.CreateBody(bs)
	if err != nil {
		return fmt.Errorf("3d body for %s: %w", e, err)
	}
	if err := s.world3D.AddBody(id, rb.Awake && rb.Type != components.Static); err != nil {
		s.world3D.DestroyBody(id)
		return fmt.Errorf("3d body for %s: %w", e, err)
	}
	rb.RuntimeBody = id
	return nil
}

func (s *Scene) releaseBody2D(rb *components.RigidBody2D) {
	if rb.RuntimeBody.IsNil() {
		return
	}
	if s.world2D != nil {
		if err := s.world2D.DestroyBody(rb.RuntimeBody); err != nil {
			logging.Logger().Debug("engine: 2d body release", "body", rb.RuntimeBody, "err", err)
		}
	}
	rb.RuntimeBody = physics2d.BodyHandle{}
}

func (s *Scene) releaseBody3D(rb *components.RigidBody3D) {
	if rb.RuntimeBody.IsNil() {
		return
	}
	if s.world3D != nil {
		if err := s.world3D.RemoveBody(rb.RuntimeBody); err != nil && !errors.Is(err, physics.ErrInvalidBody) {
			logging.Logger().Debug("engine: 3d body remove", "body", rb.RuntimeBody, "err", err)
		}
		if err := s.world3D.DestroyBody(rb.RuntimeBody); err != nil {
			logging.Logger().Debug("engine: 3d body destroy", "body", rb.RuntimeBody, "err", err)
		}
	}
	rb.RuntimeBody = physics.BodyID{}
}

// releaseRuntime frees whatever Play-mode state e owns.
func (s *Scene) releaseRuntime(e Entity) {
	if rb := TryGetComponent[components.RigidBody2D](e); rb != nil {
		s.releaseBody2D(rb)
	}
	if rb := TryGetComponent[components.RigidBody3D](e); rb != nil {
		s.releaseBody3D(rb)
	}
	if sc := TryGetComponent[Script](e); sc != nil {
		s.stopScript(e, sc)
	}
}

func (s *Scene) physicsLive() bool {
	return s.mode == Play && s.world2D != nil && s.world3D != nil
}

// StepPhysics pushes kinematic transforms, advances both worlds by dt and
// writes awake bodies back to their transforms.
func (s *Scene) StepPhysics(dt float32) error {
	if !s.physicsLive() {
		return ErrNotPlaying
	}
	s.pushKinematic()

	if err := s.world2D.Step(dt, s.settings2D.VelocityIterations, s.settings2D.PositionIterations); err != nil {
		return fmt.Errorf("step 2d: %w", err)
	}
	if err := s.world3D.Step(dt); err != nil {
		return fmt.Errorf("step 3d: %w", err)
	}

	for _, row := range ecs.Each2[components.RigidBody2D, components.Transform](s.registry) {
		rb, tr := row.A, row.B
		if rb.RuntimeBody.IsNil() || !s.world2D.IsAwake(rb.RuntimeBody) {
			continue
		}
		pos, angle, err := s.world2D.Pose(rb.RuntimeBody)
		if err != nil {
			continue
		}
		tr.Translation.X, tr.Translation.Y = pos.X, pos.Y
		tr.Rotation.Z = angle
	}
	for _, row := range ecs.Each2[components.RigidBody3D, components.Transform](s.registry) {
		rb, tr := row.A, row.B
		if rb.RuntimeBody.IsNil() || !s.world3D.IsActive(rb.RuntimeBody) {
			continue
		}
		pos, rot, err := s.world3D.Pose(rb.RuntimeBody)
		if err != nil {
			continue
		}
		tr.Translation, tr.Rotation = pos, rot
	}
	return nil
}

// pushKinematic moves kinematic bodies to wherever scripts left their
// transforms.
func (s *Scene) pushKinematic() {
	for _, row := range ecs.Each2[components.RigidBody2D, components.Transform](s.registry) {
		rb, tr := row.A, row.B
		if rb.Type != components.Kinematic || rb.RuntimeBody.IsNil() {
			continue
		}
		s.world2D.SetTransform(rb.RuntimeBody, rl.Vector2{X: tr.Translation.X, Y: tr.Translation.Y}, tr.Rotation.Z)
	}
	for _, row := range ecs.Each2[components.RigidBody3D, components.Transform](s.registry) {
		rb, tr := row.A, row.B
		if rb.Type != components.Kinematic || rb.RuntimeBody.IsNil() {
			continue
		}
		s.world3D.SetPose(rb.RuntimeBody, tr.Translation, tr.Rotation)
	}
}

func (s *Scene) body2D(e Entity) (physics2d.BodyHandle, error) {
	if !s.physicsLive() {
		return physics2d.BodyHandle{}, ErrNotPlaying
	}
	rb, err := GetComponent[components.RigidBody2D](e)
	if err != nil {
		return physics2d.BodyHandle{}, err
	}
	return rb.RuntimeBody, nil
}

func (s *Scene) ApplyImpulse2D(e Entity, impulse rl.Vector2) error {
	h, err := s.body2D(e)
	if err != nil {
		return fmt.Errorf("apply impulse: %w", err)
	}
	return s.world2D.ApplyImpulse(h, impulse)
}

func (s *Scene) ApplyForce2D(e Entity, force rl.Vector2) error {
	h, err := s.body2D(e)
	if err != nil {
		return fmt.Errorf("apply force: %w", err)
	}
	return s.world2D.ApplyForce(h, force)
}

func (s *Scene) SetLinearVelocity2D(e Entity, v rl.Vector2) error {
	h, err := s.body2D(e)
	if err != nil {
		return fmt.Errorf("set velocity: %w", err)
	}
	return s.world2D.SetLinearVelocity(h, v)
}

func (s *Scene) ApplyImpulse3D(e Entity, impulse rl.Vector3) error {
	if !s.physicsLive() {
		return fmt.Errorf("apply impulse: %w", ErrNotPlaying)
	}
	rb, err := GetComponent[components.RigidBody3D](e)
	if err != nil {
		return fmt.Errorf("apply impulse: %w", err)
	}
	return s.world3D.AddImpulse(rb.RuntimeBody, impulse)
}

// Raycast3D casts against the 3D world. Only available in Play.
func (s *Scene) Raycast3D(origin, direction rl.Vector3, maxDistance float32) (RaycastResult, bool) {
	if !s.physicsLive() {
		return RaycastResult{}, false
	}
	hit, ok := s.world3D.CastRay(origin, direction, maxDistance)
	if !ok {
		return RaycastResult{}, false
	}
	e, _ := s.FindByID(components.StableID(hit.UserData))
	return RaycastResult{Entity: e, Point: hit.Point, Normal: hit.Normal, Distance: hit.Distance}, true
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
