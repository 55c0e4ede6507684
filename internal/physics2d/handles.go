package physics2d

import (
	"fmt"
	"sync/atomic"
)

var worldSerial atomic.Uint32

type slot[T any] struct {
	gen  uint32
	used bool
	val  T
}

// table maps generation-checked handles to back-end bodies.
type table[T any] struct {
	world     uint32
	slots     []slot[T]
	free      []uint32
	count     int
	destroyed bool
}

func newTable[T any]() table[T] {
	return table[T]{world: worldSerial.Add(1)}
}

func (t *table[T]) insert(v T) BodyHandle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{gen: 1})
	}
	s := &t.slots[idx]
	s.used = true
	s.val = v
	t.count++
	return BodyHandle{Index: idx, Gen: s.gen, World: t.world}
}

func (t *table[T]) get(h BodyHandle) (T, error) {
	var zero T
	if t.destroyed {
		return zero, ErrWorldDestroyed
	}
	if h.IsNil() || h.World != t.world || int(h.Index) >= len(t.slots) {
		return zero, fmt.Errorf("%w: %v", ErrInvalidBody, h)
	}
	s := &t.slots[h.Index]
	if !s.used || s.gen != h.Gen {
		return zero, fmt.Errorf("%w: %v", ErrInvalidBody, h)
	}
	return s.val, nil
}

func (t *table[T]) remove(h BodyHandle) (T, error) {
	v, err := t.get(h)
	if err != nil {
		return v, err
	}
	s := &t.slots[h.Index]
	var zero T
	s.val = zero
	s.used = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, h.Index)
	t.count--
	return v, nil
}

// each calls fn for every live body.
func (t *table[T]) each(fn func(T)) {
	for i := range t.slots {
		if t.slots[i].used {
			fn(t.slots[i].val)
		}
	}
}

func (t *table[T]) destroy() {
	t.destroyed = true
	t.slots = nil
	t.free = nil
	t.count = 0
}
