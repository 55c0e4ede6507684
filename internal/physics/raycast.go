package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type RayHit struct {
	Body     BodyID
	UserData uint64
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// CastRay returns the closest added body hit by the ray within maxDistance.
func (s *System) CastRay(origin, direction rl.Vector3, maxDistance float32) (RayHit, bool) {
	if s.shutdown || rl.Vector3Length(direction) == 0 {
		return RayHit{}, false
	}
	direction = rl.Vector3Normalize(direction)
	closest := RayHit{Distance: maxDistance}
	hit := false

	for i := range s.bodies {
		b := &s.bodies[i]
		if !b.used || !b.added {
			continue
		}
		var h RayHit
		var ok bool
		switch b.shape.Kind {
		case ShapeBox:
			h, ok = raycastBox(origin, direction, b.obb(), closest.Distance)
		case ShapeSphere:
			h, ok = raycastSphere(origin, direction, b.center(), b.shape.Radius, closest.Distance)
		}
		if ok && h.Distance < closest.Distance {
			h.Body = BodyID{Index: uint32(i), Gen: b.gen, World: s.serial}
			h.UserData = b.userData
			closest = h
			hit = true
		}
	}
	return closest, hit
}

// raycastBox runs the slab test in the box's local frame.
func raycastBox(origin, direction rl.Vector3, box OBB, maxDistance float32) (RayHit, bool) {
	o := box.toLocal(origin)
	d := rl.Vector3{
		X: rl.Vector3DotProduct(direction, box.Axes[0]),
		Y: rl.Vector3DotProduct(direction, box.Axes[1]),
		Z: rl.Vector3DotProduct(direction, box.Axes[2]),
	}
	os := [3]float32{o.X, o.Y, o.Z}
	ds := [3]float32{d.X, d.Y, d.Z}
	hs := [3]float32{box.HalfSize.X, box.HalfSize.Y, box.HalfSize.Z}

	tMin := float32(-math.MaxFloat32)
	tMax := float32(math.MaxFloat32)
	axis, sign := 0, float32(1)
	for i := 0; i < 3; i++ {
		if absf(ds[i]) < 1e-8 {
			if os[i] < -hs[i] || os[i] > hs[i] {
				return RayHit{}, false
			}
			continue
		}
		t1 := (-hs[i] - os[i]) / ds[i]
		t2 := (hs[i] - os[i]) / ds[i]
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tMin {
			tMin = t1
			axis, sign = i, s
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return RayHit{}, false
		}
	}

	t := tMin
	if t < 0 {
		// Origin inside the box.
		t = 0
	}
	if t > maxDistance || tMax < 0 {
		return RayHit{}, false
	}
	return RayHit{
		Point:    rl.Vector3Add(origin, rl.Vector3Scale(direction, t)),
		Normal:   rl.Vector3Scale(box.Axes[axis], sign),
		Distance: t,
	}, true
}

func raycastSphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (RayHit, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := 2.0 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return RayHit{}, false
	}

	t := (-b - sqrtf(discriminant)) / 2
	if t < 0 {
		t = (-b + sqrtf(discriminant)) / 2
	}
	if t < 0 || t > maxDistance {
		return RayHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))

	return RayHit{Point: point, Normal: normal, Distance: t}, true
}
