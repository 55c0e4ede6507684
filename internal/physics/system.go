// Package physics is the 3D physics world used by the scene during Play. A
// System is built as one unit (layer tables, broad phase, scratch space and
// job pool) and released as one unit by Shutdown.
package physics

import (
	"errors"
	"fmt"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/logging"
)

var (
	ErrShutdown        = errors.New("physics: world is shut down")
	ErrInvalidBody     = errors.New("physics: invalid body")
	ErrTooManyBodies   = errors.New("physics: body limit reached")
	ErrBodyInWorld     = errors.New("physics: body is still added to the world")
	ErrInvalidSettings = errors.New("physics: invalid settings")
)

// Sleep thresholds. A body slower than these for SleepTime seconds sleeps.
const (
	SleepVelocityThreshold = 0.3
	SleepTime              = 0.3

	restitutionThreshold = 1.0
	maxCellsPerBody      = 64
	minChunk             = 64
)

// Settings configures a System.
type Settings struct {
	Gravity        rl.Vector3
	Workers        int // <= 0 means GOMAXPROCS
	MaxBodies      int
	CollisionSteps int
	ScratchPairs   int // initial capacity of the per-step pair buffer
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:        rl.Vector3{Y: -9.81},
		MaxBodies:      65536,
		CollisionSteps: 1,
		ScratchPairs:   1024,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxBodies == 0 {
		s.MaxBodies = d.MaxBodies
	}
	if s.CollisionSteps == 0 {
		s.CollisionSteps = d.CollisionSteps
	}
	if s.ScratchPairs == 0 {
		s.ScratchPairs = d.ScratchPairs
	}
	return s
}

var worldSerial atomic.Uint32

// System owns every body created through it.
type System struct {
	settings Settings
	serial   uint32
	layers   layerTable
	jobs     *jobPool
	scratch  scratch

	bodies   []body
	free     []uint32
	count    int
	shutdown bool
}

func New(settings Settings) (*System, error) {
	settings = settings.withDefaults()
	if settings.MaxBodies < 0 || settings.CollisionSteps < 0 || settings.ScratchPairs < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidSettings, settings)
	}
	s := &System{
		settings: settings,
		serial:   worldSerial.Add(1),
		layers:   newLayerTable(),
		jobs:     newJobPool(settings.Workers),
		scratch:  newScratch(settings.ScratchPairs),
	}
	logging.Logger().Info("physics3d: world created",
		"world", s.serial, "workers", s.jobs.workers, "maxBodies", settings.MaxBodies)
	return s, nil
}

// Shutdown stops the job pool and drops every body. Every later call on the
// System fails with ErrShutdown. Calling it twice is harmless.
func (s *System) Shutdown() {
	if s.shutdown {
		return
	}
	s.shutdown = true
	s.jobs.close()
	s.bodies = nil
	s.free = nil
	s.count = 0
	s.scratch = scratch{}
	logging.Logger().Info("physics3d: world shut down", "world", s.serial)
}

func (s *System) IsShutdown() bool { return s.shutdown }

func (s *System) Settings() Settings { return s.settings }

func (s *System) lookup(id BodyID) (*body, error) {
	if s.shutdown {
		return nil, ErrShutdown
	}
	if id.IsNil() || id.World != s.serial || int(id.Index) >= len(s.bodies) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, id)
	}
	b := &s.bodies[id.Index]
	if !b.used || b.gen != id.Gen {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, id)
	}
	return b, nil
}

// CreateBody allocates a body. It does not take part in simulation until
// AddBody.
func (s *System) CreateBody(bs BodySettings) (BodyID, error) {
	if s.shutdown {
		return BodyID{}, ErrShutdown
	}
	if s.count >= s.settings.MaxBodies {
		return BodyID{}, fmt.Errorf("%w (%d)", ErrTooManyBodies, s.settings.MaxBodies)
	}
	if err := bs.Shape.validate(); err != nil {
		return BodyID{}, fmt.Errorf("create body: %w", err)
	}
	if bs.Layer >= NumLayers {
		return BodyID{}, fmt.Errorf("create body: unknown layer %v", bs.Layer)
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.bodies))
		s.bodies = append(s.bodies, body{gen: 1})
	}
	b := &s.bodies[idx]
	b.reset(bs)
	s.count++
	return BodyID{Index: idx, Gen: b.gen, World: s.serial}, nil
}

// AddBody inserts a created body into the simulation.
func (s *System) AddBody(id BodyID, activate bool) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if b.added {
		return fmt.Errorf("add %v: %w", id, ErrBodyInWorld)
	}
	b.added = true
	if activate {
		b.wake()
	}
	return nil
}

// RemoveBody takes a body out of the simulation without freeing it.
// Sleeping neighbours are woken so they do not hang in the air.
func (s *System) RemoveBody(id BodyID) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !b.added {
		return fmt.Errorf("remove %v: %w", id, ErrInvalidBody)
	}
	b.added = false
	box := b.bounds()
	for i := range s.bodies {
		o := &s.bodies[i]
		if o.used && o.added && o.sleeping && o.motion == MotionDynamic && o.bounds().Intersects(box) {
			o.wake()
		}
	}
	return nil
}

// DestroyBody frees a removed body. Its handle never resolves again.
func (s *System) DestroyBody(id BodyID) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if b.added {
		return fmt.Errorf("destroy %v: %w", id, ErrBodyInWorld)
	}
	gen := b.gen + 1
	if gen == 0 {
		gen = 1
	}
	*b = body{gen: gen}
	s.free = append(s.free, id.Index)
	s.count--
	return nil
}

// BodyCount returns the number of created bodies.
func (s *System) BodyCount() int { return s.count }

// ActiveBodyCount returns the number of added, awake, non-static bodies.
func (s *System) ActiveBodyCount() int {
	n := 0
	for i := range s.bodies {
		if s.bodies[i].used && s.bodies[i].moving() {
			n++
		}
	}
	return n
}

// Pose returns the body origin and Euler rotation in radians.
func (s *System) Pose(id BodyID) (pos, rot rl.Vector3, err error) {
	b, err := s.lookup(id)
	if err != nil {
		return pos, rot, err
	}
	return b.pos, b.rot, nil
}

// IsActive reports whether the body is added and awake.
func (s *System) IsActive(id BodyID) bool {
	b, err := s.lookup(id)
	return err == nil && b.moving()
}

func (s *System) LinearVelocity(id BodyID) (rl.Vector3, error) {
	b, err := s.lookup(id)
	if err != nil {
		return rl.Vector3{}, err
	}
	return b.vel, nil
}

// SetPose teleports a body and wakes it. Scenes use it to push edited
// kinematic transforms into the world.
func (s *System) SetPose(id BodyID, pos, rot rl.Vector3) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	b.pos, b.rot = pos, rot
	b.wake()
	return nil
}

// AddImpulse changes a dynamic body's velocity by impulse/mass.
func (s *System) AddImpulse(id BodyID, impulse rl.Vector3) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if b.motion != MotionDynamic {
		return nil
	}
	b.vel = rl.Vector3Add(b.vel, rl.Vector3Scale(impulse, b.invMass))
	b.wake()
	return nil
}

func (s *System) SetLinearVelocity(id BodyID, v rl.Vector3) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if b.motion == MotionStatic {
		return nil
	}
	b.vel = v
	b.wake()
	return nil
}

func (s *System) SetAngularVelocity(id BodyID, w rl.Vector3) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if b.motion == MotionStatic {
		return nil
	}
	b.angVel = w
	b.wake()
	return nil
}

// Step advances the simulation by dt, split into CollisionSteps substeps.
func (s *System) Step(dt float32) error {
	if s.shutdown {
		return ErrShutdown
	}
	if dt <= 0 {
		return nil
	}
	steps := s.settings.CollisionSteps
	h := dt / float32(steps)
	for range steps {
		s.collectMoving()
		s.parallel(func(b *body) { s.applyForces(b, h) })
		s.broadPhase()
		for _, p := range s.scratch.pairs {
			s.collide(&s.bodies[p.a], &s.bodies[p.b])
		}
		s.parallel(func(b *body) { integrate(b, h) })
		s.updateSleep(h)
	}
	return nil
}

func (s *System) collectMoving() {
	s.scratch.moving = s.scratch.moving[:0]
	for i := range s.bodies {
		if s.bodies[i].used && s.bodies[i].moving() {
			s.scratch.moving = append(s.scratch.moving, uint32(i))
		}
	}
}

// parallel runs fn over the moving bodies in chunks on the job pool. Each
// chunk touches a disjoint set of bodies.
func (s *System) parallel(fn func(*body)) {
	moving := s.scratch.moving
	if len(moving) == 0 {
		return
	}
	chunk := (len(moving) + s.jobs.workers - 1) / s.jobs.workers
	if chunk < minChunk {
		chunk = minChunk
	}
	s.scratch.jobs = s.scratch.jobs[:0]
	for start := 0; start < len(moving); start += chunk {
		part := moving[start:min(start+chunk, len(moving))]
		s.scratch.jobs = append(s.scratch.jobs, func() {
			for _, idx := range part {
				fn(&s.bodies[idx])
			}
		})
	}
	s.jobs.Run(s.scratch.jobs)
}

func (s *System) applyForces(b *body, h float32) {
	if b.motion != MotionDynamic {
		return
	}
	b.vel = rl.Vector3Add(b.vel, rl.Vector3Scale(s.settings.Gravity, b.gravityScale*h))
	b.vel = rl.Vector3Scale(b.vel, max(0, 1-b.linearDamping*h))
	b.angVel = rl.Vector3Scale(b.angVel, max(0, 1-b.angularDamping*h))
}

func integrate(b *body, h float32) {
	b.pos = rl.Vector3Add(b.pos, rl.Vector3Scale(b.vel, h))
	b.rot = rl.Vector3Add(b.rot, rl.Vector3Scale(b.angVel, h))
}

func (s *System) updateSleep(h float32) {
	for _, idx := range s.scratch.moving {
		b := &s.bodies[idx]
		if b.motion != MotionDynamic || !b.allowSleep {
			continue
		}
		if rl.Vector3Length(b.vel) < SleepVelocityThreshold && rl.Vector3Length(b.angVel) < SleepVelocityThreshold {
			b.sleepTimer += h
			if b.sleepTimer >= SleepTime {
				b.sleeping = true
				b.vel = rl.Vector3{}
				b.angVel = rl.Vector3{}
			}
		} else {
			b.sleepTimer = 0
		}
	}
}
