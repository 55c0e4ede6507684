package ecs

const absent = -1

// storage is the type-erased view of a Pool used by the registry for
// whole-entity operations.
type storage interface {
	has(e Entity) bool
	remove(e Entity) bool
	len() int
}

// Pool is a sparse set holding every component of type T. Components are
// heap-allocated so pointers handed out by Get stay valid until removal.
type Pool[T any] struct {
	sparse []int32 // entity index -> dense slot, absent if none
	dense  []Entity
	data   []*T
}

func newPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

func (p *Pool[T]) slot(e Entity) int32 {
	if int(e.Index) >= len(p.sparse) {
		return absent
	}
	i := p.sparse[e.Index]
	if i == absent || p.dense[i] != e {
		return absent
	}
	return i
}

func (p *Pool[T]) has(e Entity) bool {
	return p.slot(e) != absent
}

func (p *Pool[T]) get(e Entity) *T {
	i := p.slot(e)
	if i == absent {
		return nil
	}
	return p.data[i]
}

func (p *Pool[T]) insert(e Entity, v T) *T {
	for int(e.Index) >= len(p.sparse) {
		p.sparse = append(p.sparse, absent)
	}
	c := new(T)
	*c = v
	p.sparse[e.Index] = int32(len(p.dense))
	p.dense = append(p.dense, e)
	p.data = append(p.data, c)
	return c
}

// remove swaps the last element into the freed slot.
func (p *Pool[T]) remove(e Entity) bool {
	i := p.slot(e)
	if i == absent {
		return false
	}
	last := int32(len(p.dense) - 1)
	if i != last {
		moved := p.dense[last]
		p.dense[i] = moved
		p.data[i] = p.data[last]
		p.sparse[moved.Index] = i
	}
	p.data[last] = nil
	p.dense = p.dense[:last]
	p.data = p.data[:last]
	p.sparse[e.Index] = absent
	return true
}

func (p *Pool[T]) len() int {
	return len(p.dense)
}
