// Package assets caches textures and models by path. Handles are reference
// counted: the GPU resource is unloaded when the last holder releases it.
package assets

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/logging"
)

var ErrLoadFailed = errors.New("assets: load failed")

// Loader does the actual resource loading. RaylibLoader is the real one;
// tests pass fakes.
type Loader interface {
	LoadTexture(path string) (rl.Texture2D, error)
	UnloadTexture(t rl.Texture2D)
	LoadModel(path string) (rl.Model, error)
	UnloadModel(m rl.Model)
}

// Texture is a shared handle. A handle whose load failed is still valid: it
// draws nothing but remembers its path so scenes round-trip.
type Texture struct {
	path    string
	texture rl.Texture2D
	loaded  bool
	refs    int
	owner   *Manager
}

func (t *Texture) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

func (t *Texture) Loaded() bool { return t != nil && t.loaded }

// Raw returns the raylib texture. Check Loaded first.
func (t *Texture) Raw() rl.Texture2D { return t.texture }

// Release drops one reference.
func (t *Texture) Release() {
	if t == nil || t.owner == nil {
		return
	}
	t.owner.releaseTexture(t)
}

type Model struct {
	path   string
	model  rl.Model
	loaded bool
	refs   int
	owner  *Manager
}

func (m *Model) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}

func (m *Model) Loaded() bool { return m != nil && m.loaded }

func (m *Model) Raw() rl.Model { return m.model }

func (m *Model) Release() {
	if m == nil || m.owner == nil {
		return
	}
	m.owner.releaseModel(m)
}

// EmptyTexture returns an unmanaged handle that only carries a path.
func EmptyTexture(path string) *Texture { return &Texture{path: path} }

// EmptyModel returns an unmanaged handle that only carries a path.
func EmptyModel(path string) *Model { return &Model{path: path} }

type Manager struct {
	loader   Loader
	textures map[string]*Texture
	models   map[string]*Model
}

func NewManager(loader Loader) *Manager {
	return &Manager{
		loader:   loader,
		textures: make(map[string]*Texture),
		models:   make(map[string]*Model),
	}
}

// Texture returns a handle for path, loading it on first use. Every call
// adds a reference that the caller must Release.
func (m *Manager) Texture(path string) *Texture {
	if t, ok := m.textures[path]; ok {
		t.refs++
		return t
	}
	tex, err := m.loader.LoadTexture(path)
	if err != nil {
		logging.Logger().Warn("assets: texture failed to load", "path", path, "err", err)
		return EmptyTexture(path)
	}
	t := &Texture{path: path, texture: tex, loaded: true, refs: 1, owner: m}
	m.textures[path] = t
	return t
}

// Model returns a handle for path, loading it on first use.
func (m *Manager) Model(path string) *Model {
	if h, ok := m.models[path]; ok {
		h.refs++
		return h
	}
	model, err := m.loader.LoadModel(path)
	if err != nil {
		logging.Logger().Warn("assets: model failed to load", "path", path, "err", err)
		return EmptyModel(path)
	}
	h := &Model{path: path, model: model, loaded: true, refs: 1, owner: m}
	m.models[path] = h
	return h
}

func (m *Manager) releaseTexture(t *Texture) {
	if t.refs == 0 {
		return
	}
	t.refs--
	if t.refs > 0 {
		return
	}
	if cur, ok := m.textures[t.path]; ok && cur == t {
		delete(m.textures, t.path)
	}
	m.loader.UnloadTexture(t.texture)
	t.loaded = false
}

func (m *Manager) releaseModel(h *Model) {
	if h.refs == 0 {
		return
	}
	h.refs--
	if h.refs > 0 {
		return
	}
	if cur, ok := m.models[h.path]; ok && cur == h {
		delete(m.models, h.path)
	}
	m.loader.UnloadModel(h.model)
	h.loaded = false
}

// TexturePath maps a loaded texture back to the path it came from.
func (m *Manager) TexturePath(id uint32) (string, bool) {
	for path, t := range m.textures {
		if t.texture.ID == id {
			return path, true
		}
	}
	return "", false
}

// UnloadAll frees every cached resource regardless of outstanding
// references. Outstanding handles keep their path and stop drawing.
func (m *Manager) UnloadAll() {
	for _, t := range m.textures {
		m.loader.UnloadTexture(t.texture)
		t.loaded, t.refs = false, 0
	}
	for _, h := range m.models {
		m.loader.UnloadModel(h.model)
		h.loaded, h.refs = false, 0
	}
	clear(m.textures)
	clear(m.models)
}

type Stats struct {
	Textures int
	Models   int
}

func (m *Manager) Stats() Stats {
	return Stats{Textures: len(m.textures), Models: len(m.models)}
}

// RaylibLoader loads through raylib. It needs an open window.
type RaylibLoader struct{}

func (RaylibLoader) LoadTexture(path string) (rl.Texture2D, error) {
	t := rl.LoadTexture(path)
	if t.ID == 0 {
		return t, fmt.Errorf("%w: texture %s", ErrLoadFailed, path)
	}
	return t, nil
}

func (RaylibLoader) UnloadTexture(t rl.Texture2D) { rl.UnloadTexture(t) }

func (RaylibLoader) LoadModel(path string) (rl.Model, error) {
	m := rl.LoadModel(path)
	if m.MeshCount == 0 {
		return m, fmt.Errorf("%w: model %s", ErrLoadFailed, path)
	}
	return m, nil
}

func (RaylibLoader) UnloadModel(m rl.Model) { rl.UnloadModel(m) }
