package engine

import (
	"fmt"
	"slices"

	"spectral/internal/ecs"
	"spectral/internal/logging"
)

// ScriptRuntime turns a script path into a running instance. Implementations
// live in internal/scripting.
type ScriptRuntime interface {
	Load(path string) (ScriptInstance, error)
}

// ScriptInstance is one loaded script bound to nothing yet; the scene hands
// it the owning entity on every hook. Instances are compared by identity, so
// implementations use pointer receivers.
type ScriptInstance interface {
	OnCreate(e Entity) error
	OnUpdate(e Entity, dt float32) error
	Close() error
}

// ScriptDestroyer is implemented by instances that want a hook when Play
// ends or their entity goes away.
type ScriptDestroyer interface {
	OnDestroy(e Entity) error
}

// Script attaches a script by path. The instance only exists in Play.
type Script struct {
	Path string

	instance ScriptInstance
}

func NewScript(path string) Script { return Script{Path: path} }

// Instance returns the running instance, or nil in Edit mode or when the
// script failed to load.
func (s *Script) Instance() ScriptInstance { return s.instance }

// pendingClose is an instance stopped while one of its own hooks was running.
type pendingClose struct {
	e    Entity
	path string
	inst ScriptInstance
}

// callHook runs one script hook. Errors and panics are logged and counted;
// they never escape into the frame. Instances stopped from inside a hook are
// closed once the outermost hook returns.
func (s *Scene) callHook(e Entity, inst ScriptInstance, path, hook string, fn func() error) {
	s.running = append(s.running, inst)
	defer func() {
		s.running = s.running[:len(s.running)-1]
		if r := recover(); r != nil {
			s.scriptErrors++
			logging.Logger().Error("engine: script panicked", "hook", hook, "entity", e.ID(), "path", path, "panic", fmt.Sprint(r))
		}
		if len(s.running) == 0 {
			s.closePending()
		}
	}()
	if err := fn(); err != nil {
		s.scriptErrors++
		logging.Logger().Error("engine: script hook failed", "hook", hook, "entity", e.ID(), "path", path, "err", err)
	}
}

func (s *Scene) closePending() {
	for len(s.closing) > 0 {
		p := s.closing[0]
		s.closing = s.closing[1:]
		s.callHook(p.e, p.inst, p.path, "Close", p.inst.Close)
	}
}

func (s *Scene) startScript(e Entity, sc *Script) {
	if sc.instance != nil {
		return
	}
	if s.runtime == nil {
		logging.Logger().Warn("engine: no script runtime, script skipped", "entity", e.ID(), "path", sc.Path)
		return
	}
	inst, err := s.runtime.Load(sc.Path)
	if err != nil {
		s.scriptErrors++
		logging.Logger().Error("engine: script failed to load", "entity", e.ID(), "path", sc.Path, "err", err)
		return
	}
	sc.instance = inst
	s.callHook(e, inst, sc.Path, "OnCreate", func() error { return inst.OnCreate(e) })
}

func (s *Scene) stopScript(e Entity, sc *Script) {
	inst := sc.instance
	if inst == nil {
		return
	}
	sc.instance = nil
	if d, ok := inst.(ScriptDestroyer); ok {
		s.callHook(e, inst, sc.Path, "OnDestroy", func() error { return d.OnDestroy(e) })
	}
	if slices.Contains(s.running, inst) {
		s.closing = append(s.closing, pendingClose{e: e, path: sc.Path, inst: inst})
		return
	}
	s.callHook(e, inst, sc.Path, "Close", inst.Close)
}

func (s *Scene) startScripts() {
	for _, h := range ecs.Collect[Script](s.registry) {
		if sc := ecs.TryGet[Script](s.registry, h); sc != nil {
			s.startScript(s.wrap(h), sc)
		}
	}
}

// updateScripts runs OnUpdate over a snapshot. Scripts may add or remove
// components and entities created mid-frame start updating next frame.
func (s *Scene) updateScripts(dt float32) {
	for _, h := range ecs.Collect[Script](s.registry) {
		sc := ecs.TryGet[Script](s.registry, h)
		if sc == nil || sc.instance == nil {
			continue
		}
		e, inst := s.wrap(h), sc.instance
		s.callHook(e, inst, sc.Path, "OnUpdate", func() error { return inst.OnUpdate(e, dt) })
	}
}

func (s *Scene) stopScripts() {
	for _, h := range ecs.Collect[Script](s.registry) {
		if sc := ecs.TryGet[Script](s.registry, h); sc != nil {
			s.stopScript(s.wrap(h), sc)
		}
	}
}
