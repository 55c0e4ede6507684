package engine

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/components"
	"spectral/internal/ecs"
	"spectral/internal/physics2d"
)

const frame = float32(1.0 / 60)

// fakeScript moves its owner along X and records hook calls.
type fakeScript struct {
	created, updated, destroyed, closed int
	fail                                bool
	panics                              bool
	onUpdate                            func(e Entity)
}

func (f *fakeScript) OnCreate(Entity) error { f.created++; return nil }

func (f *fakeScript) OnUpdate(e Entity, dt float32) error {
	f.updated++
	if f.panics {
		panic("boom")
	}
	if f.fail {
		return errors.New("script error")
	}
	if f.onUpdate != nil {
		f.onUpdate(e)
		return nil
	}
	e.Transform().Translation.X++
	return nil
}

func (f *fakeScript) OnDestroy(Entity) error { f.destroyed++; return nil }
func (f *fakeScript) Close() error           { f.closed++; return nil }

type fakeRuntime struct {
	scripts map[string]*fakeScript
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{scripts: map[string]*fakeScript{}}
}

func (r *fakeRuntime) Load(path string) (ScriptInstance, error) {
	s, ok := r.scripts[path]
	if !ok {
		return nil, errors.New("no such script")
	}
	return s, nil
}

type fakeRenderer struct {
	begins, ends, sprites, models, debug int
	view                                 CameraView
}

func (r *fakeRenderer) Begin(v CameraView)                       { r.begins++; r.view = v }
func (r *fakeRenderer) DrawSprite(rl.Matrix, *components.Sprite) { r.sprites++ }
func (r *fakeRenderer) DrawModel(rl.Matrix, *components.Model)   { r.models++ }
func (r *fakeRenderer) DrawCameraDebug(CameraView)               { r.debug++ }
func (r *fakeRenderer) End()                                     { r.ends++ }

func zeroGravity2D() physics2d.Settings {
	s := physics2d.DefaultSettings()
	s.Gravity = rl.Vector2{}
	return s
}

func mustEntity(t *testing.T, s *Scene, name string) Entity {
	t.Helper()
	e, err := s.CreateEntity(name)
	if err != nil {
		t.Fatalf("CreateEntity(%q): %v", name, err)
	}
	return e
}

func mustAdd[T any](t *testing.T, e Entity, c T) *T {
	t.Helper()
	p, err := AddComponent(e, c)
	if err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	return p
}

func TestCreateEntityHasIdentityAndTransform(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "Player")

	if !HasComponent[components.Identity](e) || !HasComponent[components.Transform](e) {
		t.Fatal("new entity lacks identity or transform")
	}
	if e.ID() == 0 || e.Name() != "Player" {
		t.Errorf("identity = %+v", e.Identity())
	}
	if e.Transform().Scale != (rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("default scale = %v", e.Transform().Scale)
	}
	if RemoveComponent[components.Identity](e) || RemoveComponent[components.Transform](e) {
		t.Error("identity and transform must not be removable")
	}
}

func TestFindByIDAndName(t *testing.T) {
	s := NewScene("test")
	e, err := s.CreateEntityWithID(42, "Crate")
	if err != nil {
		t.Fatalf("CreateEntityWithID: %v", err)
	}
	if got, ok := s.FindByID(42); !ok || got != e {
		t.Errorf("FindByID = %v, %v", got, ok)
	}
	if got, ok := s.FindByName("Crate"); !ok || got != e {
		t.Errorf("FindByName = %v, %v", got, ok)
	}
	if _, err := s.CreateEntityWithID(42, "Other"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id: %v", err)
	}
	if _, err := s.CreateEntityWithID(0, "Zero"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("zero id: %v", err)
	}

	if err := s.DestroyEntity(e); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}
	if _, ok := s.FindByID(42); ok {
		t.Error("destroyed entity still found by id")
	}
	if e.IsValid() {
		t.Error("destroyed entity still valid")
	}
	if err := s.DestroyEntity(e); !errors.Is(err, ecs.ErrStaleEntity) {
		t.Errorf("double destroy: %v", err)
	}
}

func TestCreateEntityDuringIteration(t *testing.T) {
	s := NewScene("test")
	mustEntity(t, s, "a")
	for range ecs.Each[components.Identity](s.registry) {
		if _, err := s.CreateEntityWithID(7, "b"); !errors.Is(err, ecs.ErrIterating) {
			t.Errorf("create while iterating: %v", err)
		}
	}
	if n := s.EntityCount(); n != 1 {
		t.Errorf("EntityCount = %d, want 1", n)
	}
	if _, err := s.CreateEntityWithID(7, "b"); err != nil {
		t.Errorf("id 7 stayed reserved after the failed create: %v", err)
	}
}

func TestClear(t *testing.T) {
	s := NewScene("test")
	for _, name := range []string{"a", "b", "c"} {
		mustEntity(t, s, name)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.EntityCount() != 0 {
		t.Errorf("count = %d after Clear", s.EntityCount())
	}
	if _, ok := s.FindByName("a"); ok {
		t.Error("cleared entity still found")
	}

	mustEntity(t, s, "d")
	if err := s.EnterPlay(); err != nil {
		t.Fatal(err)
	}
	defer s.ExitPlay()
	if err := s.Clear(); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("Clear in play: %v", err)
	}
}

func TestComponentCapability(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "e")

	mustAdd(t, e, components.NewBoxCollider2D())
	if !HasComponent[components.BoxCollider2D](e) {
		t.Fatal("Has after Add = false")
	}
	if _, err := AddComponent(e, components.NewBoxCollider2D()); !errors.Is(err, ecs.ErrComponentExists) {
		t.Errorf("double add: %v", err)
	}
	if _, err := GetComponent[components.CircleCollider2D](e); !errors.Is(err, ecs.ErrComponentMissing) {
		t.Errorf("missing get: %v", err)
	}
	p, err := GetOrAddComponent(e, components.NewCircleCollider2D())
	if err != nil || p.Radius != 0.5 {
		t.Fatalf("GetOrAddComponent = %+v, %v", p, err)
	}
	p.Radius = 2
	if q, _ := GetOrAddComponent(e, components.NewCircleCollider2D()); q.Radius != 2 {
		t.Error("GetOrAddComponent replaced the existing component")
	}
	if !RemoveComponent[components.BoxCollider2D](e) || HasComponent[components.BoxCollider2D](e) {
		t.Error("remove failed")
	}

	var zero Entity
	if _, err := AddComponent(zero, components.NewBoxCollider2D()); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("add to zero entity: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustComponent on missing component did not panic")
		}
	}()
	MustComponent[components.Camera](e)
}

func TestGravityScenario2D(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "ball")
	rb := mustAdd(t, e, components.NewRigidBody2D(components.Dynamic))
	mustAdd(t, e, components.NewBoxCollider2D())

	if err := s.EnterPlay(); err != nil {
		t.Fatalf("EnterPlay: %v", err)
	}
	if rb.RuntimeBody.IsNil() {
		t.Fatal("no runtime body after EnterPlay")
	}
	start := e.Transform().Translation.Y
	last := start
	for i := 0; i < 10; i++ {
		if err := s.UpdateRuntime(frame); err != nil {
			t.Fatalf("UpdateRuntime: %v", err)
		}
		y := e.Transform().Translation.Y
		if y > last {
			t.Fatalf("frame %d: y=%v rose above %v", i, y, last)
		}
		last = y
	}
	if last >= start-0.05 {
		t.Errorf("after 10 frames y=%v, want it well below %v", last, start)
	}
	if err := s.ExitPlay(); err != nil {
		t.Fatalf("ExitPlay: %v", err)
	}
	if !rb.RuntimeBody.IsNil() {
		t.Error("runtime body handle survived ExitPlay")
	}
}

func TestGravityScenario3D(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "crate")
	e.Transform().Translation.Y = 10
	rb := mustAdd(t, e, components.NewRigidBody3D(components.Dynamic))
	mustAdd(t, e, components.NewBoxCollider3D())

	if err := s.EnterPlay(); err != nil {
		t.Fatalf("EnterPlay: %v", err)
	}
	for i := 0; i < 10; i++ {
		s.UpdateRuntime(frame)
	}
	if y := e.Transform().Translation.Y; y >= 10 {
		t.Errorf("y = %v, want below 10", y)
	}
	s.ExitPlay()
	if !rb.RuntimeBody.IsNil() {
		t.Error("3d handle survived ExitPlay")
	}
}

func TestPlayRoundTripKeepsConfig(t *testing.T) {
	rt := newFakeRuntime()
	rt.scripts["mover"] = &fakeScript{}
	s := NewScene("test", WithScriptRuntime(rt))

	e := mustEntity(t, s, "e")
	rb2 := mustAdd(t, e, components.NewRigidBody2D(components.Kinematic))
	rb2.GravityScale = 0.5
	rb3 := mustAdd(t, e, components.NewRigidBody3D(components.Static))
	rb3.Mass = 3
	sc := mustAdd(t, e, NewScript("mover"))
	before2, before3 := *rb2, *rb3

	if err := s.EnterPlay(); err != nil {
		t.Fatalf("EnterPlay: %v", err)
	}
	if sc.Instance() == nil || rb2.RuntimeBody.IsNil() || rb3.RuntimeBody.IsNil() {
		t.Fatal("runtime state not built")
	}
	s.ExitPlay()

	if *rb2 != before2 || *rb3 != before3 {
		t.Errorf("rigid bodies changed: %+v %+v", *rb2, *rb3)
	}
	if sc.Instance() != nil || sc.Path != "mover" {
		t.Errorf("script after exit = %+v", sc)
	}
	fs := rt.scripts["mover"]
	if fs.created != 1 || fs.destroyed != 1 || fs.closed != 1 {
		t.Errorf("hooks = %+v", fs)
	}
	if st := s.Stats(); st.Bodies2D != 0 || st.Bodies3D != 0 {
		t.Errorf("stats after exit = %+v", st)
	}
}

func TestTransitionsAreIdempotent(t *testing.T) {
	s := NewScene("test")
	var modes []Mode
	s.ModeChanged.AddListener(func(m Mode) { modes = append(modes, m) })

	if err := s.ExitPlay(); err != nil {
		t.Fatalf("ExitPlay in edit: %v", err)
	}
	s.EnterPlay()
	s.EnterPlay()
	if !s.IsPlaying() {
		t.Fatal("not playing after EnterPlay")
	}
	s.ExitPlay()
	s.ExitPlay()
	if len(modes) != 2 || modes[0] != Play || modes[1] != Edit {
		t.Errorf("mode events = %v", modes)
	}
}

func TestScriptRunsEveryFrame(t *testing.T) {
	rt := newFakeRuntime()
	rt.scripts["inc"] = &fakeScript{}
	s := NewScene("test", WithScriptRuntime(rt))
	e := mustEntity(t, s, "e")
	mustAdd(t, e, NewScript("inc"))

	s.EnterPlay()
	for i := 0; i < 5; i++ {
		s.UpdateRuntime(frame)
	}
	if x := e.Transform().Translation.X; x != 5 {
		t.Errorf("x = %v after 5 frames, want 5", x)
	}
	s.ExitPlay()
	s.UpdateRuntime(frame)
	if x := e.Transform().Translation.X; x != 5 {
		t.Error("script ran in edit mode")
	}
}

func TestScriptFaultsDoNotAbortFrame(t *testing.T) {
	rt := newFakeRuntime()
	rt.scripts["bad"] = &fakeScript{fail: true}
	rt.scripts["panic"] = &fakeScript{panics: true}
	rt.scripts["good"] = &fakeScript{}
	s := NewScene("test", WithScriptRuntime(rt))
	for _, name := range []string{"bad", "panic", "missing", "good"} {
		mustAdd(t, mustEntity(t, s, name), NewScript(name))
	}

	s.EnterPlay()
	for i := 0; i < 3; i++ {
		if err := s.UpdateRuntime(frame); err != nil {
			t.Fatalf("UpdateRuntime: %v", err)
		}
	}
	if rt.scripts["good"].updated != 3 {
		t.Errorf("good script ran %d times", rt.scripts["good"].updated)
	}
	if rt.scripts["bad"].updated != 3 || rt.scripts["panic"].updated != 3 {
		t.Error("failing scripts should keep being called")
	}
	missing, _ := s.FindByName("missing")
	if MustComponent[Script](missing).Instance() != nil {
		t.Error("script that failed to load has an instance")
	}
	// 3 errors, 3 panics and 1 failed load.
	if got := s.Stats().ScriptErrors; got != 7 {
		t.Errorf("ScriptErrors = %d, want 7", got)
	}
}

func TestQueueDestroyFromScript(t *testing.T) {
	rt := newFakeRuntime()
	s := NewScene("test", WithScriptRuntime(rt))
	victim := mustEntity(t, s, "victim")
	rb := mustAdd(t, victim, components.NewRigidBody2D(components.Dynamic))
	killer := mustEntity(t, s, "killer")
	rt.scripts["kill"] = &fakeScript{onUpdate: func(e Entity) {
		if v, ok := e.Scene().FindByName("victim"); ok {
			e.Scene().QueueDestroy(v)
		}
	}}
	mustAdd(t, killer, NewScript("kill"))

	s.EnterPlay()
	if s.Stats().Bodies2D != 1 {
		t.Fatalf("bodies = %d", s.Stats().Bodies2D)
	}
	s.UpdateRuntime(frame)
	if victim.IsValid() {
		t.Error("queued entity survived the frame")
	}
	if !rb.RuntimeBody.IsNil() || s.Stats().Bodies2D != 0 {
		t.Error("queued entity's body was not released")
	}
	s.ExitPlay()
}

func TestAddRigidBodyDuringPlay(t *testing.T) {
	s := NewScene("test")
	s.EnterPlay()
	defer s.ExitPlay()

	e := mustEntity(t, s, "late")
	rb := mustAdd(t, e, components.NewRigidBody3D(components.Dynamic))
	if rb.RuntimeBody.IsNil() {
		t.Fatal("body not created for component added in play")
	}
	if !RemoveComponent[components.RigidBody3D](e) {
		t.Fatal("remove failed")
	}
	if s.Stats().Bodies3D != 0 {
		t.Errorf("bodies3d = %d after removing the component", s.Stats().Bodies3D)
	}
}

func TestPhysicsAPIOutsidePlay(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "e")
	mustAdd(t, e, components.NewRigidBody2D(components.Dynamic))

	if err := s.StepPhysics(frame); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("StepPhysics: %v", err)
	}
	if err := s.UpdateRuntime(frame); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("UpdateRuntime: %v", err)
	}
	if err := s.ApplyImpulse2D(e, rl.Vector2{X: 1}); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("ApplyImpulse2D: %v", err)
	}
	if err := s.ApplyImpulse3D(e, rl.Vector3{X: 1}); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("ApplyImpulse3D: %v", err)
	}
	if _, ok := s.Raycast3D(rl.Vector3{}, rl.Vector3{Y: -1}, 10); ok {
		t.Error("raycast hit outside play")
	}
}

func TestImpulse2D(t *testing.T) {
	s := NewScene("test", WithPhysics2D(zeroGravity2D()))
	e := mustEntity(t, s, "e")
	mustAdd(t, e, components.NewRigidBody2D(components.Dynamic))
	mustAdd(t, e, components.NewBoxCollider2D())
	s.EnterPlay()
	defer s.ExitPlay()

	if err := s.ApplyImpulse2D(e, rl.Vector2{X: 10}); err != nil {
		t.Fatalf("ApplyImpulse2D: %v", err)
	}
	s.StepPhysics(frame)
	if x := e.Transform().Translation.X; x <= 0 {
		t.Errorf("x = %v after impulse", x)
	}
	other := mustEntity(t, s, "nobody")
	if err := s.ApplyImpulse2D(other, rl.Vector2{X: 1}); !errors.Is(err, ecs.ErrComponentMissing) {
		t.Errorf("impulse on entity without body: %v", err)
	}
}

func TestRaycast3DResolvesEntity(t *testing.T) {
	s := NewScene("test")
	floor := mustEntity(t, s, "floor")
	floor.Identity().Layer = 0
	mustAdd(t, floor, components.NewRigidBody3D(components.Static))
	box := mustAdd(t, floor, components.NewBoxCollider3D())
	box.Size = rl.Vector3{X: 10, Y: 1, Z: 10}

	s.EnterPlay()
	defer s.ExitPlay()
	hit, ok := s.Raycast3D(rl.Vector3{Y: 5}, rl.Vector3{Y: -1}, 20)
	if !ok || hit.Entity != floor {
		t.Fatalf("raycast = %+v, %v", hit, ok)
	}
	if hit.Distance < 4.49 || hit.Distance > 4.51 {
		t.Errorf("distance = %v, want 4.5", hit.Distance)
	}
}

func TestCameraResolution(t *testing.T) {
	t.Run("none active", func(t *testing.T) {
		s := NewScene("test")
		mustAdd(t, mustEntity(t, s, "cam"), components.NewCamera())
		s.EnterPlay()
		defer s.ExitPlay()
		s.UpdateRuntime(frame)

		r := &fakeRenderer{}
		if s.RenderRuntime(r) {
			t.Error("rendered without an active camera")
		}
		if r.begins != 0 {
			t.Error("renderer touched without an active camera")
		}
	})

	for _, tt := range []struct {
		policy CameraPolicy
		want   string
	}{
		{FirstActive, "first"},
		{LastActive, "second"},
	} {
		t.Run(tt.want, func(t *testing.T) {
			s := NewScene("test", WithCameraPolicy(tt.policy))
			for i, name := range []string{"first", "second"} {
				e := mustEntity(t, s, name)
				e.Transform().Translation.X = float32(i)
				cam := mustAdd(t, e, components.NewCamera())
				cam.Active = true
			}
			s.EnterPlay()
			defer s.ExitPlay()
			s.UpdateRuntime(frame)

			e, cam, ok := s.ActiveCamera()
			if !ok || e.Name() != tt.want {
				t.Fatalf("active camera = %v, %v", e, ok)
			}
			r := &fakeRenderer{}
			if !s.RenderRuntime(r) || r.begins != 1 || r.ends != 1 {
				t.Fatalf("render = %+v", r)
			}
			if r.view.Camera.Position != cam.Camera.Position {
				t.Errorf("rendered from %v", r.view.Camera.Position)
			}
		})
	}
}

func TestRenderEditorDrawsDebugCameras(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "cam")
	cam := mustAdd(t, e, components.NewCamera())
	cam.Debug = true
	mustAdd(t, e, components.NewSprite(nil))
	mustAdd(t, mustEntity(t, s, "ship"), components.NewModel(nil))

	s.UpdateEditor(frame)
	r := &fakeRenderer{}
	s.RenderEditor(r, ViewOf(components.NewRuntimeCamera()))
	if r.begins != 1 || r.sprites != 1 || r.models != 1 || r.debug != 1 {
		t.Errorf("render calls = %+v", r)
	}
	if s.RenderRuntime(r) {
		t.Error("runtime render in edit mode with no active camera")
	}
}

func TestEntityRef(t *testing.T) {
	s := NewScene("test")
	e := mustEntity(t, s, "target")

	var ref EntityRef
	if ref.IsSet() {
		t.Error("zero ref is set")
	}
	if _, ok := ref.Get(s); ok {
		t.Error("zero ref resolved")
	}
	ref.Set(e)
	if got, ok := ref.Get(s); !ok || got != e {
		t.Errorf("Get = %v, %v", got, ok)
	}
	s.DestroyEntity(e)
	if _, ok := ref.Get(s); ok {
		t.Error("ref to destroyed entity resolved")
	}
	ref.Clear()
	if ref.IsSet() {
		t.Error("cleared ref still set")
	}
}

func TestSleepingBodiesKeepEditedTransforms(t *testing.T) {
	s := NewScene("test")
	sleeper := mustEntity(t, s, "sleeper")
	sleeper.Transform().Translation.Y = 10
	rb := components.NewRigidBody3D(components.Dynamic)
	rb.Awake = false
	mustAdd(t, sleeper, rb)
	mustAdd(t, sleeper, components.NewBoxCollider3D())

	faller := mustEntity(t, s, "faller")
	faller.Transform().Translation = rl.Vector3{X: 50, Y: 10}
	mustAdd(t, faller, components.NewRigidBody3D(components.Dynamic))
	mustAdd(t, faller, components.NewSphereCollider3D())

	if err := s.EnterPlay(); err != nil {
		t.Fatalf("EnterPlay: %v", err)
	}
	defer s.ExitPlay()

	sleeper.Transform().Translation.X = 7
	for i := 0; i < 5; i++ {
		if err := s.UpdateRuntime(frame); err != nil {
			t.Fatalf("UpdateRuntime: %v", err)
		}
	}
	if got := sleeper.Transform().Translation; got.X != 7 || got.Y != 10 {
		t.Errorf("sleeping body transform = %+v, want the edited (7, 10, 0)", got)
	}
	if y := faller.Transform().Translation.Y; y >= 10 {
		t.Errorf("awake body y = %v, want below 10", y)
	}
}

func TestScriptRemovingItselfClosesAfterHook(t *testing.T) {
	rt := newFakeRuntime()
	fs := &fakeScript{}
	closedInHook := -1
	fs.onUpdate = func(e Entity) {
		RemoveComponent[Script](e)
		closedInHook = fs.closed
		e.Transform().Translation.X++
	}
	rt.scripts["self"] = fs
	s := NewScene("test", WithScriptRuntime(rt))
	e := mustEntity(t, s, "e")
	mustAdd(t, e, NewScript("self"))

	if err := s.EnterPlay(); err != nil {
		t.Fatalf("EnterPlay: %v", err)
	}
	defer s.ExitPlay()
	for i := 0; i < 3; i++ {
		s.UpdateRuntime(frame)
	}
	if closedInHook != 0 {
		t.Errorf("instance closed %d times while its hook ran", closedInHook)
	}
	if fs.updated != 1 || fs.destroyed != 1 || fs.closed != 1 {
		t.Errorf("hooks: updated=%d destroyed=%d closed=%d, want 1 each", fs.updated, fs.destroyed, fs.closed)
	}
	if x := e.Transform().Translation.X; x != 1 {
		t.Errorf("x = %v, want 1", x)
	}
	if HasComponent[Script](e) {
		t.Error("Script component survived RemoveComponent")
	}
}
