package scripting

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	lua "github.com/yuin/gopher-lua"

	"spectral/internal/components"
	"spectral/internal/engine"
	"spectral/internal/logging"
)

const entityTypeName = "spectral.entity"

// Input answers keyboard queries from Lua. Key codes are raylib's.
type Input interface {
	IsKeyDown(key int32) bool
	IsKeyPressed(key int32) bool
}

// LuaRuntime loads Lua scripts. Every instance gets its own interpreter
// state, so scripts share nothing.
//
// A script file returns a table. OnCreate(self), OnUpdate(self, dt) and
// OnDestroy(self) are called when present, with self.owner set to the
// entity.
type LuaRuntime struct {
	// PackagePath is appended to package.path as "<dir>/?.lua" when set.
	PackagePath string
	Input       Input
}

func NewLuaRuntime(packagePath string) *LuaRuntime {
	return &LuaRuntime{PackagePath: packagePath}
}

func (r *LuaRuntime) Load(path string) (engine.ScriptInstance, error) {
	return r.load(path, func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadString runs src as a script named name.
func (r *LuaRuntime) LoadString(name, src string) (engine.ScriptInstance, error) {
	return r.load(name, func(L *lua.LState) error { return L.DoString(src) })
}

func (r *LuaRuntime) load(name string, run func(*lua.LState) error) (engine.ScriptInstance, error) {
	L := lua.NewState()
	r.openLibs(L, name)
	if err := run(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrBadScript, name, err)
	}
	self, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w: %s must return a table", ErrBadScript, name)
	}
	L.Pop(1)

	owner := L.NewUserData()
	L.SetMetatable(owner, L.GetTypeMetatable(entityTypeName))
	return &luaInstance{L: L, self: self, owner: owner, path: name}, nil
}

func (r *LuaRuntime) openLibs(L *lua.LState, name string) {
	if r.PackagePath != "" {
		if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
			path := lua.LVAsString(L.GetField(pkg, "path"))
			L.SetField(pkg, "path", lua.LString(path+";"+strings.TrimRight(r.PackagePath, "/")+"/?.lua"))
		}
	}

	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), entityMethods))

	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logging.Logger().Info("lua: "+strings.Join(parts, " "), "script", name)
		return 0
	}))
	L.SetGlobal("input_key_down", L.NewFunction(func(L *lua.LState) int {
		key := int32(L.CheckInt(1))
		L.Push(lua.LBool(r.Input != nil && r.Input.IsKeyDown(key)))
		return 1
	}))
	L.SetGlobal("input_key_pressed", L.NewFunction(func(L *lua.LState) int {
		key := int32(L.CheckInt(1))
		L.Push(lua.LBool(r.Input != nil && r.Input.IsKeyPressed(key)))
		return 1
	}))
}

type luaInstance struct {
	L     *lua.LState
	self  *lua.LTable
	owner *lua.LUserData
	path  string
}

func (i *luaInstance) call(hook string, e engine.Entity, args ...lua.LValue) error {
	fn := i.self.RawGetString(hook)
	if fn == lua.LNil {
		return nil
	}
	if _, ok := fn.(*lua.LFunction); !ok {
		return fmt.Errorf("%w: %s: %s is a %s, not a function", ErrBadScript, i.path, hook, fn.Type())
	}
	i.owner.Value = e
	i.self.RawSetString("owner", i.owner)
	return i.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, append([]lua.LValue{i.self}, args...)...)
}

func (i *luaInstance) OnCreate(e engine.Entity) error { return i.call("OnCreate", e) }

func (i *luaInstance) OnUpdate(e engine.Entity, dt float32) error {
	return i.call("OnUpdate", e, lua.LNumber(dt))
}

func (i *luaInstance) OnDestroy(e engine.Entity) error { return i.call("OnDestroy", e) }

func (i *luaInstance) Close() error {
	i.L.Close()
	return nil
}

var entityMethods = map[string]lua.LGFunction{
	"id": func(L *lua.LState) int {
		L.Push(lua.LString(checkEntity(L).ID().String()))
		return 1
	},
	"name": func(L *lua.LState) int {
		L.Push(lua.LString(checkEntity(L).Name()))
		return 1
	},
	"has": func(L *lua.LState) int {
		e := checkEntity(L)
		ops, ok := luaComponents[L.CheckString(2)]
		L.Push(lua.LBool(ok && ops.has(e)))
		return 1
	},
	"remove": func(L *lua.LState) int {
		e := checkEntity(L)
		ops, ok := luaComponents[L.CheckString(2)]
		L.Push(lua.LBool(ok && ops.remove(e)))
		return 1
	},
	// get returns a copy of the component as a table, or nil.
	"get": func(L *lua.LState) int {
		e := checkEntity(L)
		ops := checkComponent(L, 2)
		L.Push(ops.get(L, e))
		return 1
	},
	// add attaches a component built from its defaults and the optional
	// table. It returns true, or false and a message.
	"add": func(L *lua.LState) int {
		e := checkEntity(L)
		ops := checkComponent(L, 2)
		if err := ops.add(e, L.OptTable(3, nil)); err != nil {
			L.Push(lua.LFalse)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LTrue)
		return 1
	},
	"get_translation": vecGetter(func(t *components.Transform) *rl.Vector3 { return &t.Translation }),
	"set_translation": vecSetter(func(t *components.Transform) *rl.Vector3 { return &t.Translation }),
	"get_rotation":    vecGetter(func(t *components.Transform) *rl.Vector3 { return &t.Rotation }),
	"set_rotation":    vecSetter(func(t *components.Transform) *rl.Vector3 { return &t.Rotation }),
	"get_scale":       vecGetter(func(t *components.Transform) *rl.Vector3 { return &t.Scale }),
	"set_scale":       vecSetter(func(t *components.Transform) *rl.Vector3 { return &t.Scale }),
	"apply_impulse": func(L *lua.LState) int {
		e := checkEntity(L)
		x, y := float32(L.CheckNumber(2)), float32(L.CheckNumber(3))
		var err error
		if engine.HasComponent[components.RigidBody3D](e) {
			err = e.Scene().ApplyImpulse3D(e, rl.Vector3{X: x, Y: y, Z: float32(L.OptNumber(4, 0))})
		} else {
			err = e.Scene().ApplyImpulse2D(e, rl.Vector2{X: x, Y: y})
		}
		if err != nil {
			L.RaiseError("apply_impulse: %v", err)
		}
		return 0
	},
}

func checkEntity(L *lua.LState) engine.Entity {
	ud := L.CheckUserData(1)
	e, ok := ud.Value.(engine.Entity)
	if !ok || !e.IsValid() {
		L.ArgError(1, "live entity expected")
	}
	return e
}

func vecGetter(field func(*components.Transform) *rl.Vector3) lua.LGFunction {
	return func(L *lua.LState) int {
		v := field(checkEntity(L).Transform())
		L.Push(lua.LNumber(v.X))
		L.Push(lua.LNumber(v.Y))
		L.Push(lua.LNumber(v.Z))
		return 3
	}
}

func vecSetter(field func(*components.Transform) *rl.Vector3) lua.LGFunction {
	return func(L *lua.LState) int {
		v := field(checkEntity(L).Transform())
		v.X = float32(L.CheckNumber(2))
		v.Y = float32(L.CheckNumber(3))
		v.Z = float32(L.CheckNumber(4))
		return 0
	}
}
