package scripting

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"spectral/internal/assets"
	"spectral/internal/components"
	"spectral/internal/engine"
)

// componentOps is what the Lua entity methods can do with one component
// kind. Tables mirror the Go struct: exported field names as keys, vectors
// as {X=, Y=, Z=}, body types as their names and asset handles as paths.
type componentOps struct {
	has    func(engine.Entity) bool
	remove func(engine.Entity) bool
	get    func(*lua.LState, engine.Entity) lua.LValue
	add    func(engine.Entity, *lua.LTable) error
}

func opsFor[T any](def func() T) componentOps {
	return componentOps{
		has:    engine.HasComponent[T],
		remove: engine.RemoveComponent[T],
		get: func(L *lua.LState, e engine.Entity) lua.LValue {
			p := engine.TryGetComponent[T](e)
			if p == nil {
				return lua.LNil
			}
			return toLua(L, reflect.ValueOf(p).Elem())
		},
		add: func(e engine.Entity, tbl *lua.LTable) error {
			c := def()
			if tbl != nil {
				if err := fromLua(tbl, reflect.ValueOf(&c).Elem(), e.Scene().Assets()); err != nil {
					return err
				}
			}
			_, err := engine.AddComponent(e, c)
			return err
		},
	}
}

// luaComponents are the component names scripts may use.
var luaComponents = map[string]componentOps{
	"Identity":         opsFor(func() components.Identity { return components.Identity{} }),
	"Transform":        opsFor(components.NewTransform),
	"RigidBody2D":      opsFor(func() components.RigidBody2D { return components.NewRigidBody2D(components.Dynamic) }),
	"RigidBody3D":      opsFor(func() components.RigidBody3D { return components.NewRigidBody3D(components.Dynamic) }),
	"BoxCollider2D":    opsFor(components.NewBoxCollider2D),
	"CircleCollider2D": opsFor(components.NewCircleCollider2D),
	"BoxCollider3D":    opsFor(components.NewBoxCollider3D),
	"SphereCollider3D": opsFor(components.NewSphereCollider3D),
	"Camera":           opsFor(components.NewCamera),
	"Sprite":           opsFor(func() components.Sprite { return components.NewSprite(nil) }),
	"Model":            opsFor(func() components.Model { return components.NewModel(nil) }),
	"Script":           opsFor(func() engine.Script { return engine.Script{} }),
}

func checkComponent(L *lua.LState, n int) componentOps {
	name := L.CheckString(n)
	ops, ok := luaComponents[name]
	if !ok {
		L.ArgError(n, "unknown component "+name)
	}
	return ops
}

var (
	bodyTypeType = reflect.TypeOf(components.BodyType(0))
	textureType  = reflect.TypeOf((*assets.Texture)(nil))
	modelType    = reflect.TypeOf((*assets.Model)(nil))
)

// skipField reports fields that only exist at runtime.
func skipField(f reflect.StructField) bool {
	return !f.IsExported() || f.Name == "RuntimeBody"
}

func toLua(L *lua.LState, v reflect.Value) lua.LValue {
	switch v.Type() {
	case bodyTypeType:
		return lua.LString(components.BodyType(v.Uint()).String())
	case textureType:
		return lua.LString(v.Interface().(*assets.Texture).Path())
	case modelType:
		return lua.LString(v.Interface().(*assets.Model).Path())
	}
	switch v.Kind() {
	case reflect.Bool:
		return lua.LBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(v.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(v.Float())
	case reflect.String:
		return lua.LString(v.String())
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return lua.LNil
		}
		return toLua(L, v.Elem())
	case reflect.Struct:
		tbl := L.NewTable()
		fillTable(L, tbl, v)
		return tbl
	}
	return lua.LNil
}

// fillTable flattens embedded structs into tbl.
func fillTable(L *lua.LState, tbl *lua.LTable, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if skipField(f) {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			fillTable(L, tbl, v.Field(i))
			continue
		}
		if lv := toLua(L, v.Field(i)); lv != lua.LNil {
			tbl.RawSetString(f.Name, lv)
		}
	}
}

// fromLua writes lv into v. Fields missing from a table keep their value.
func fromLua(lv lua.LValue, v reflect.Value, m *assets.Manager) error {
	switch v.Type() {
	case bodyTypeType:
		s, ok := lv.(lua.LString)
		if !ok {
			return mismatch("body type name", lv)
		}
		v.SetUint(uint64(components.ParseBodyType(string(s))))
		return nil
	case textureType, modelType:
		s, ok := lv.(lua.LString)
		if !ok {
			return mismatch("asset path", lv)
		}
		if v.Type() == textureType {
			v.Set(reflect.ValueOf(textureFor(m, string(s))))
		} else {
			v.Set(reflect.ValueOf(modelFor(m, string(s))))
		}
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return mismatch("boolean", lv)
		}
		v.SetBool(bool(b))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return mismatch("number", lv)
		}
		v.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := lv.(lua.LNumber)
		if !ok || n < 0 {
			return mismatch("non-negative number", lv)
		}
		v.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return mismatch("number", lv)
		}
		v.SetFloat(float64(n))
	case reflect.String:
		s, ok := lv.(lua.LString)
		if !ok {
			return mismatch("string", lv)
		}
		v.SetString(string(s))
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return nil
		}
		return fromLua(lv, v.Elem(), m)
	case reflect.Struct:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return mismatch("table", lv)
		}
		return readTable(tbl, v, m)
	}
	return nil
}

func readTable(tbl *lua.LTable, v reflect.Value, m *assets.Manager) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if skipField(f) {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if err := readTable(tbl, v.Field(i), m); err != nil {
				return err
			}
			continue
		}
		lv := tbl.RawGetString(f.Name)
		if lv == lua.LNil {
			continue
		}
		if err := fromLua(lv, v.Field(i), m); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func mismatch(want string, got lua.LValue) error {
	return fmt.Errorf("%w: want %s, got %s", ErrBadScript, want, got.Type())
}

func textureFor(m *assets.Manager, path string) *assets.Texture {
	if m == nil {
		return assets.EmptyTexture(path)
	}
	return m.Texture(path)
}

func modelFor(m *assets.Manager, path string) *assets.Model {
	if m == nil {
		return assets.EmptyModel(path)
	}
	return m.Model(path)
}
