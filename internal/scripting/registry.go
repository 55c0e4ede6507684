// Package scripting provides the script runtimes a Scene loads its Script
// components with: native Go scripts from a Registry and Lua scripts run by
// gopher-lua. Mux picks between them by path.
package scripting

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"spectral/internal/engine"
)

var (
	ErrUnknownScript = errors.New("scripting: unknown script")
	ErrBadScript     = errors.New("scripting: bad script")
)

// Factory builds a native script instance from its properties.
type Factory func(props map[string]any) engine.ScriptInstance

// Registry maps script names to factories. A script path names the script
// and may carry properties as a query: "Rotator?speed=3".
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named script. Registering a name twice panics.
func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("script %q already registered", name))
	}
	r.factories[name] = f
}

// Names returns the registered script names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

func (r *Registry) Load(path string) (engine.ScriptInstance, error) {
	name, props, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	return f(props), nil
}

// ParsePath splits "Name?key=value&..." into the name and its properties.
// Numeric values become float64, true/false become bool.
func ParsePath(path string) (string, map[string]any, error) {
	name, query, _ := strings.Cut(path, "?")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: empty script name", ErrBadScript)
	}
	props := map[string]any{}
	if query == "" {
		return name, props, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %v", ErrBadScript, path, err)
	}
	for k, vs := range values {
		v := vs[len(vs)-1]
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			props[k] = f
		} else if b, err := strconv.ParseBool(v); err == nil {
			props[k] = b
		} else {
			props[k] = v
		}
	}
	return name, props, nil
}

// Mux sends .lua paths to Lua and everything else to Native.
type Mux struct {
	Lua    *LuaRuntime
	Native *Registry
}

func (m Mux) Load(path string) (engine.ScriptInstance, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		if m.Lua == nil {
			return nil, fmt.Errorf("%w: no lua runtime for %q", ErrUnknownScript, path)
		}
		return m.Lua.Load(path)
	}
	if m.Native == nil {
		return nil, fmt.Errorf("%w: no native registry for %q", ErrUnknownScript, path)
	}
	return m.Native.Load(path)
}

func floatProp(props map[string]any, key string, def float32) float32 {
	if v, ok := props[key].(float64); ok {
		return float32(v)
	}
	return def
}
