package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB is an oriented box in world space.
type OBB struct {
	Center   rl.Vector3
	HalfSize rl.Vector3
	Axes     [3]rl.Vector3 // rotated local X, Y, Z
}

// NewOBB builds an OBB from its center, half extents and Euler rotation in
// radians, applied X then Y then Z like Transform.Matrix.
func NewOBB(center, halfSize, rotation rl.Vector3) OBB {
	m := rl.MatrixRotateZYX(rotation)
	return OBB{
		Center:   center,
		HalfSize: halfSize,
		Axes: [3]rl.Vector3{
			rl.Vector3Normalize(rl.Vector3{X: m.M0, Y: m.M1, Z: m.M2}),
			rl.Vector3Normalize(rl.Vector3{X: m.M4, Y: m.M5, Z: m.M6}),
			rl.Vector3Normalize(rl.Vector3{X: m.M8, Y: m.M9, Z: m.M10}),
		},
	}
}

// Bounds returns the smallest AABB enclosing the box.
func (o OBB) Bounds() AABB {
	var ext rl.Vector3
	for i, h := range [3]float32{o.HalfSize.X, o.HalfSize.Y, o.HalfSize.Z} {
		ax := o.Axes[i]
		ext.X += absf(ax.X) * h
		ext.Y += absf(ax.Y) * h
		ext.Z += absf(ax.Z) * h
	}
	return AABB{Min: rl.Vector3Subtract(o.Center, ext), Max: rl.Vector3Add(o.Center, ext)}
}

func (o OBB) project(axis rl.Vector3) float32 {
	return o.HalfSize.X*absf(rl.Vector3DotProduct(o.Axes[0], axis)) +
		o.HalfSize.Y*absf(rl.Vector3DotProduct(o.Axes[1], axis)) +
		o.HalfSize.Z*absf(rl.Vector3DotProduct(o.Axes[2], axis))
}

// Penetration runs the separating axis test over the 15 candidate axes and
// returns the minimum translation that pushes a out of b. ok is false when
// a separating axis exists.
func (a OBB) Penetration(b OBB) (mtv rl.Vector3, ok bool) {
	t := rl.Vector3Subtract(b.Center, a.Center)
	best := float32(math.MaxFloat32)

	test := func(axis rl.Vector3) bool {
		if rl.Vector3Length(axis) < 0.0001 {
			return true // parallel edges
		}
		axis = rl.Vector3Normalize(axis)
		dist := rl.Vector3DotProduct(t, axis)
		depth := a.project(axis) + b.project(axis) - absf(dist)
		if depth < 0 {
			return false
		}
		if depth < best {
			best = depth
			if dist < 0 {
				mtv = rl.Vector3Scale(axis, depth)
			} else {
				mtv = rl.Vector3Scale(axis, -depth)
			}
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(a.Axes[i]) || !test(b.Axes[i]) {
			return rl.Vector3{}, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(rl.Vector3CrossProduct(a.Axes[i], b.Axes[j])) {
				return rl.Vector3{}, false
			}
		}
	}
	return mtv, true
}

// toLocal expresses a world point in the box's frame, relative to its center.
func (o OBB) toLocal(p rl.Vector3) rl.Vector3 {
	d := rl.Vector3Subtract(p, o.Center)
	return rl.Vector3{
		X: rl.Vector3DotProduct(d, o.Axes[0]),
		Y: rl.Vector3DotProduct(d, o.Axes[1]),
		Z: rl.Vector3DotProduct(d, o.Axes[2]),
	}
}

func (o OBB) toWorld(l rl.Vector3) rl.Vector3 {
	p := o.Center
	p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[0], l.X))
	p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[1], l.Y))
	p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[2], l.Z))
	return p
}

// ClosestPoint returns the point of the box closest to p. inside reports
// whether p lies within the box.
func (o OBB) ClosestPoint(p rl.Vector3) (closest rl.Vector3, inside bool) {
	l := o.toLocal(p)
	c := rl.Vector3{
		X: clampf(l.X, -o.HalfSize.X, o.HalfSize.X),
		Y: clampf(l.Y, -o.HalfSize.Y, o.HalfSize.Y),
		Z: clampf(l.Z, -o.HalfSize.Z, o.HalfSize.Z),
	}
	return o.toWorld(c), c == l
}
