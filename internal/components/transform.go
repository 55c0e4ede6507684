package components

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform is the spatial state of an entity. Rotation is Euler XYZ in
// radians.
type Transform struct {
	Translation rl.Vector3
	Rotation    rl.Vector3
	Scale       rl.Vector3
}

func NewTransform() Transform {
	return Transform{Scale: rl.Vector3{X: 1, Y: 1, Z: 1}}
}

// RotationMatrix turns Euler angles into a right-handed rotation applied X,
// then Y, then Z. Positive angles turn counter-clockwise, the same way the 2D
// physics worlds report them. rl.MatrixRotateXYZ negates its angles.
func RotationMatrix(r rl.Vector3) rl.Matrix {
	return rl.MatrixRotateZYX(r)
}

// Matrix composes scale, then rotation, then translation.
func (t Transform) Matrix() rl.Matrix {
	m := rl.MatrixScale(t.Scale.X, t.Scale.Y, t.Scale.Z)
	m = rl.MatrixMultiply(m, RotationMatrix(t.Rotation))
	return rl.MatrixMultiply(m, rl.MatrixTranslate(t.Translation.X, t.Translation.Y, t.Translation.Z))
}

// Forward is the local -Z axis in world space.
func (t Transform) Forward() rl.Vector3 {
	return rl.Vector3Transform(rl.Vector3{Z: -1}, RotationMatrix(t.Rotation))
}

// Up is the local +Y axis in world space.
func (t Transform) Up() rl.Vector3 {
	return rl.Vector3Transform(rl.Vector3{Y: 1}, RotationMatrix(t.Rotation))
}
