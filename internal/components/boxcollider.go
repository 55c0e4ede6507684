package components

import rl "github.com/gen2brain/raylib-go/raylib"

// BoxCollider2D sizes are full extents, scaled by the transform at body
// creation.
type BoxCollider2D struct {
	Offset      rl.Vector2
	Size        rl.Vector2
	Density     float32
	Friction    float32
	Restitution float32
}

func NewBoxCollider2D() BoxCollider2D {
	return BoxCollider2D{
		Size:     rl.Vector2{X: 1, Y: 1},
		Density:  1,
		Friction: 0.5,
	}
}

type BoxCollider3D struct {
	Offset      rl.Vector3
	Size        rl.Vector3
	Density     float32
	Friction    float32
	Restitution float32
}

func NewBoxCollider3D() BoxCollider3D {
	return BoxCollider3D{
		Size:     rl.Vector3{X: 1, Y: 1, Z: 1},
		Density:  1,
		Friction: 0.5,
	}
}

// ScaledSize multiplies the collider size by the transform scale. Negative
// scales are treated as mirrored, not inverted.
func (b BoxCollider3D) ScaledSize(scale rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: abs(b.Size.X * scale.X),
		Y: abs(b.Size.Y * scale.Y),
		Z: abs(b.Size.Z * scale.Z),
	}
}

func (b BoxCollider2D) ScaledSize(scale rl.Vector3) rl.Vector2 {
	return rl.Vector2{X: abs(b.Size.X * scale.X), Y: abs(b.Size.Y * scale.Y)}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
