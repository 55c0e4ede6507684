package ecs

import "iter"

// Row2 is one result of Each2.
type Row2[A, B any] struct {
	A *A
	B *B
}

// Row3 is one result of Each3.
type Row3[A, B, C any] struct {
	A *A
	B *B
	C *C
}

// guard holds the iteration lock for the lifetime of a range loop. Create,
// Destroy, Add and Remove fail while it is held; snapshot with Collect first
// when a loop needs to mutate the entity set.
func (r *Registry) guard() func() {
	r.iterating++
	return func() { r.iterating-- }
}

// Each yields every entity holding a T together with its component.
func Each[T any](r *Registry) iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		p := poolOf[T](r, false)
		if p == nil {
			return
		}
		defer r.guard()()
		for i := 0; i < len(p.dense); i++ {
			if !yield(p.dense[i], p.data[i]) {
				return
			}
		}
	}
}

// Each2 yields every entity holding both an A and a B.
func Each2[A, B any](r *Registry) iter.Seq2[Entity, Row2[A, B]] {
	return func(yield func(Entity, Row2[A, B]) bool) {
		pa, pb := poolOf[A](r, false), poolOf[B](r, false)
		if pa == nil || pb == nil {
			return
		}
		defer r.guard()()
		if pa.len() <= pb.len() {
			for i := 0; i < len(pa.dense); i++ {
				e := pa.dense[i]
				if b := pb.get(e); b != nil {
					if !yield(e, Row2[A, B]{A: pa.data[i], B: b}) {
						return
					}
				}
			}
			return
		}
		for i := 0; i < len(pb.dense); i++ {
			e := pb.dense[i]
			if a := pa.get(e); a != nil {
				if !yield(e, Row2[A, B]{A: a, B: pb.data[i]}) {
					return
				}
			}
		}
	}
}

// Each3 yields every entity holding an A, a B and a C, driven by the A pool.
func Each3[A, B, C any](r *Registry) iter.Seq2[Entity, Row3[A, B, C]] {
	return func(yield func(Entity, Row3[A, B, C]) bool) {
		pa, pb, pc := poolOf[A](r, false), poolOf[B](r, false), poolOf[C](r, false)
		if pa == nil || pb == nil || pc == nil {
			return
		}
		defer r.guard()()
		for i := 0; i < len(pa.dense); i++ {
			e := pa.dense[i]
			b := pb.get(e)
			if b == nil {
				continue
			}
			c := pc.get(e)
			if c == nil {
				continue
			}
			if !yield(e, Row3[A, B, C]{A: pa.data[i], B: b, C: c}) {
				return
			}
		}
	}
}

// Entities yields every live entity in index order.
func (r *Registry) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		defer r.guard()()
		for i := range r.gens {
			if !r.alive[i] {
				continue
			}
			if !yield(Entity{Index: uint32(i), Gen: r.gens[i]}) {
				return
			}
		}
	}
}

// Collect snapshots the entities holding a T.
func Collect[T any](r *Registry) []Entity {
	p := poolOf[T](r, false)
	if p == nil {
		return nil
	}
	out := make([]Entity, len(p.dense))
	copy(out, p.dense)
	return out
}

// CollectAll snapshots every live entity.
func (r *Registry) CollectAll() []Entity {
	out := make([]Entity, 0, r.count)
	for e := range r.Entities() {
		out = append(out, e)
	}
	return out
}
