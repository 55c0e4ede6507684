package physics

import (
	"cmp"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type pair struct{ a, b uint32 }

// scratch is the per-world temp allocator. Its buffers are reset, never
// freed, between steps.
type scratch struct {
	pairs  []pair
	seen   map[pair]struct{}
	cells  map[cellKey][]uint32
	large  []uint32
	moving []uint32
	jobs   []func()
}

func newScratch(capacity int) scratch {
	return scratch{
		pairs: make([]pair, 0, capacity),
		seen:  make(map[pair]struct{}, capacity),
		cells: make(map[cellKey][]uint32),
	}
}

func (sc *scratch) reset() {
	sc.pairs = sc.pairs[:0]
	clear(sc.seen)
	if len(sc.cells) > 4*cap(sc.pairs) {
		clear(sc.cells)
	}
	for k, v := range sc.cells {
		sc.cells[k] = v[:0]
	}
	sc.large = sc.large[:0]
}

// broadPhase fills scratch.pairs with body pairs whose bounds overlap and
// whose layers may collide. Bodies covering many cells skip the grid and are
// tested against everything.
func (s *System) broadPhase() {
	sc := &s.scratch
	sc.reset()

	for i := range s.bodies {
		b := &s.bodies[i]
		if !b.used || !b.added || b.shape.Kind == ShapeNone {
			continue
		}
		box := b.bounds()
		if box.cellCount() > maxCellsPerBody {
			sc.large = append(sc.large, uint32(i))
			continue
		}
		lo, hi := box.cellRange()
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					k := cellKey{x, y, z}
					sc.cells[k] = append(sc.cells[k], uint32(i))
				}
			}
		}
	}

	for _, cell := range sc.cells {
		for i := 0; i < len(cell); i++ {
			for j := i + 1; j < len(cell); j++ {
				s.candidate(cell[i], cell[j])
			}
		}
	}
	for _, li := range sc.large {
		for j := range s.bodies {
			o := &s.bodies[j]
			if o.used && o.added && o.shape.Kind != ShapeNone {
				s.candidate(li, uint32(j))
			}
		}
	}
	// Map order is random; keep resolution order stable between runs.
	slices.SortFunc(sc.pairs, func(x, y pair) int {
		if c := cmp.Compare(x.a, y.a); c != 0 {
			return c
		}
		return cmp.Compare(x.b, y.b)
	})
}

func (s *System) candidate(i, j uint32) {
	if i == j {
		return
	}
	if i > j {
		i, j = j, i
	}
	a, b := &s.bodies[i], &s.bodies[j]
	if !a.moving() && !b.moving() {
		return
	}
	if !s.layers.broadPhase[a.layer][b.layer.BroadPhase()] || !s.layers.collide(a.layer, b.layer) {
		return
	}
	p := pair{i, j}
	if _, ok := s.scratch.seen[p]; ok {
		return
	}
	s.scratch.seen[p] = struct{}{}
	if a.bounds().Intersects(b.bounds()) {
		s.scratch.pairs = append(s.scratch.pairs, p)
	}
}

// contact computes the separating normal (pointing from b to a) and depth.
func contact(a, b *body) (normal rl.Vector3, depth float32, ok bool) {
	switch {
	case a.shape.Kind == ShapeSphere && b.shape.Kind == ShapeSphere:
		d := rl.Vector3Subtract(a.center(), b.center())
		dist := rl.Vector3Length(d)
		r := a.shape.Radius + b.shape.Radius
		if dist >= r {
			return normal, 0, false
		}
		if dist < 0.0001 {
			return rl.Vector3{Y: 1}, r, true
		}
		return rl.Vector3Scale(d, 1/dist), r - dist, true

	case a.shape.Kind == ShapeSphere && b.shape.Kind == ShapeBox:
		return sphereBox(a.center(), a.shape.Radius, b.obb())

	case a.shape.Kind == ShapeBox && b.shape.Kind == ShapeSphere:
		n, d, ok := sphereBox(b.center(), b.shape.Radius, a.obb())
		return rl.Vector3Negate(n), d, ok

	case a.shape.Kind == ShapeBox && b.shape.Kind == ShapeBox:
		mtv, ok := a.obb().Penetration(b.obb())
		if !ok {
			return normal, 0, false
		}
		depth = rl.Vector3Length(mtv)
		if depth < 0.0001 {
			return rl.Vector3{Y: 1}, depth, true
		}
		return rl.Vector3Scale(mtv, 1/depth), depth, true
	}
	return normal, 0, false
}

// sphereBox returns the normal pointing from the box toward the sphere.
func sphereBox(c rl.Vector3, r float32, box OBB) (rl.Vector3, float32, bool) {
	closest, inside := box.ClosestPoint(c)
	if inside {
		// Center is inside the box: push out through the nearest face.
		l := box.toLocal(c)
		best := float32(-1)
		var n rl.Vector3
		for i, v := range [3]float32{l.X, l.Y, l.Z} {
			half := [3]float32{box.HalfSize.X, box.HalfSize.Y, box.HalfSize.Z}[i]
			gap := half - absf(v)
			if best < 0 || gap < best {
				best = gap
				n = box.Axes[i]
				if v < 0 {
					n = rl.Vector3Negate(n)
				}
			}
		}
		return n, best + r, true
	}
	d := rl.Vector3Subtract(c, closest)
	dist := rl.Vector3Length(d)
	if dist >= r {
		return rl.Vector3{}, 0, false
	}
	if dist < 0.0001 {
		return rl.Vector3{Y: 1}, r, true
	}
	return rl.Vector3Scale(d, 1/dist), r - dist, true
}

func effectiveInvMass(b *body) float32 {
	if !b.moving() {
		return 0
	}
	return b.invMass
}

// collide resolves one overlapping pair: split the push-out by inverse mass,
// then apply a restitution and friction impulse along the contact.
func (s *System) collide(a, b *body) {
	n, depth, ok := contact(a, b)
	if !ok {
		return
	}

	relVel := rl.Vector3Subtract(a.vel, b.vel)
	if rl.Vector3Length(relVel) > 2*SleepVelocityThreshold {
		if a.sleeping && a.motion == MotionDynamic {
			a.wake()
		}
		if b.sleeping && b.motion == MotionDynamic {
			b.wake()
		}
	}

	invA, invB := effectiveInvMass(a), effectiveInvMass(b)
	total := invA + invB
	if total == 0 {
		return
	}

	a.pos = rl.Vector3Add(a.pos, rl.Vector3Scale(n, depth*invA/total))
	b.pos = rl.Vector3Subtract(b.pos, rl.Vector3Scale(n, depth*invB/total))

	vn := rl.Vector3DotProduct(relVel, n)
	if vn >= 0 {
		return
	}
	e := (a.restitution + b.restitution) / 2
	if -vn < restitutionThreshold {
		e = 0
	}
	j := -(1 + e) * vn / total
	impulse := rl.Vector3Scale(n, j)
	a.vel = rl.Vector3Add(a.vel, rl.Vector3Scale(impulse, invA))
	b.vel = rl.Vector3Subtract(b.vel, rl.Vector3Scale(impulse, invB))

	tangent := rl.Vector3Subtract(relVel, rl.Vector3Scale(n, vn))
	vt := rl.Vector3Length(tangent)
	if vt < 0.0001 {
		return
	}
	tangent = rl.Vector3Scale(tangent, 1/vt)
	mu := sqrtf(a.friction * b.friction)
	jt := clampf(vt/total, 0, mu*j)
	fImpulse := rl.Vector3Scale(tangent, -jt)
	a.vel = rl.Vector3Add(a.vel, rl.Vector3Scale(fImpulse, invA))
	b.vel = rl.Vector3Subtract(b.vel, rl.Vector3Scale(fImpulse, invB))
}
