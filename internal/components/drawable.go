package components

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/assets"
)

// Sprite draws a textured quad in the XY plane of its transform.
type Sprite struct {
	Texture *assets.Texture
	Tint    rl.Vector4 // normalized RGBA
}

func NewSprite(tex *assets.Texture) Sprite {
	return Sprite{Texture: tex, Tint: rl.Vector4{X: 1, Y: 1, Z: 1, W: 1}}
}

// Model draws a mesh at its transform.
type Model struct {
	Model *assets.Model
	Tint  rl.Vector4
}

func NewModel(m *assets.Model) Model {
	return Model{Model: m, Tint: rl.Vector4{X: 1, Y: 1, Z: 1, W: 1}}
}

// TintColor converts a normalized tint to a raylib color.
func TintColor(v rl.Vector4) rl.Color {
	return rl.ColorFromNormalized(v)
}
