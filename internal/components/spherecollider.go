package components

import rl "github.com/gen2brain/raylib-go/raylib"

type CircleCollider2D struct {
	Offset      rl.Vector2
	Radius      float32
	Density     float32
	Friction    float32
	Restitution float32
}

func NewCircleCollider2D() CircleCollider2D {
	return CircleCollider2D{Radius: 0.5, Density: 1, Friction: 0.5}
}

type SphereCollider3D struct {
	Offset      rl.Vector3
	Radius      float32
	Density     float32
	Friction    float32
	Restitution float32
}

func NewSphereCollider3D() SphereCollider3D {
	return SphereCollider3D{Radius: 0.5, Density: 1, Friction: 0.5}
}

// ScaledRadius uses the largest scale axis so the sphere encloses the mesh.
func ScaledRadius(radius float32, scale rl.Vector3) float32 {
	return radius * max(abs(scale.X), abs(scale.Y), abs(scale.Z))
}
