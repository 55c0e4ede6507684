package ecs

import (
	"fmt"
	"reflect"
)

// Registry owns entities and their components. It is not safe for concurrent
// use; the scene mutates it from the frame thread only.
type Registry struct {
	gens      []uint32 // current generation per index
	alive     []bool
	free      []uint32
	count     int
	pools     map[reflect.Type]storage
	iterating int
}

func NewRegistry() *Registry {
	return &Registry{
		pools: make(map[reflect.Type]storage),
	}
}

// Create mints a new live entity.
func (r *Registry) Create() (Entity, error) {
	if r.iterating > 0 {
		return Null, fmt.Errorf("create: %w", ErrIterating)
	}
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.gens))
		r.gens = append(r.gens, 1)
		r.alive = append(r.alive, false)
	}
	r.alive[idx] = true
	r.count++
	return Entity{Index: idx, Gen: r.gens[idx]}, nil
}

// Destroy removes every component of e and invalidates the handle.
func (r *Registry) Destroy(e Entity) error {
	if r.iterating > 0 {
		return fmt.Errorf("destroy %v: %w", e, ErrIterating)
	}
	if !r.Alive(e) {
		return fmt.Errorf("destroy %v: %w", e, ErrStaleEntity)
	}
	for _, p := range r.pools {
		p.remove(e)
	}
	r.alive[e.Index] = false
	r.gens[e.Index]++
	if r.gens[e.Index] == 0 {
		// generation wrapped; retire the slot instead of reusing it
		r.count--
		return nil
	}
	r.free = append(r.free, e.Index)
	r.count--
	return nil
}

// Alive reports whether e refers to a live entity.
func (r *Registry) Alive(e Entity) bool {
	if e.IsNull() || int(e.Index) >= len(r.gens) {
		return false
	}
	return r.alive[e.Index] && r.gens[e.Index] == e.Gen
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return r.count
}

// Iterating reports whether an iteration guard is currently held.
func (r *Registry) Iterating() bool {
	return r.iterating > 0
}

func poolOf[T any](r *Registry, create bool) *Pool[T] {
	key := reflect.TypeFor[T]()
	if s, ok := r.pools[key]; ok {
		return s.(*Pool[T])
	}
	if !create {
		return nil
	}
	p := newPool[T]()
	r.pools[key] = p
	return p
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Add attaches c to e and returns a pointer to the stored copy.
func Add[T any](r *Registry, e Entity, c T) (*T, error) {
	if r.iterating > 0 {
		return nil, fmt.Errorf("add %s to %v: %w", typeName[T](), e, ErrIterating)
	}
	if !r.Alive(e) {
		return nil, fmt.Errorf("add %s to %v: %w", typeName[T](), e, ErrStaleEntity)
	}
	p := poolOf[T](r, true)
	if p.has(e) {
		return nil, fmt.Errorf("add %s to %v: %w", typeName[T](), e, ErrComponentExists)
	}
	return p.insert(e, c), nil
}

// Get returns the component of type T on e.
func Get[T any](r *Registry, e Entity) (*T, error) {
	if !r.Alive(e) {
		return nil, fmt.Errorf("get %s from %v: %w", typeName[T](), e, ErrStaleEntity)
	}
	if p := poolOf[T](r, false); p != nil {
		if c := p.get(e); c != nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("get %s from %v: %w", typeName[T](), e, ErrComponentMissing)
}

// TryGet is Get without the error: nil means absent or stale.
func TryGet[T any](r *Registry, e Entity) *T {
	if !r.Alive(e) {
		return nil
	}
	if p := poolOf[T](r, false); p != nil {
		return p.get(e)
	}
	return nil
}

// MustGet panics when the component is absent.
func MustGet[T any](r *Registry, e Entity) *T {
	c, err := Get[T](r, e)
	if err != nil {
		panic(err)
	}
	return c
}

// Has reports whether e is alive and holds a T.
func Has[T any](r *Registry, e Entity) bool {
	return TryGet[T](r, e) != nil
}

// Remove detaches T from e. It returns false when there was nothing to remove
// and panics if called while an iteration is running.
func Remove[T any](r *Registry, e Entity) bool {
	if r.iterating > 0 {
		panic(fmt.Errorf("remove %s from %v: %w", typeName[T](), e, ErrIterating))
	}
	if !r.Alive(e) {
		return false
	}
	p := poolOf[T](r, false)
	if p == nil {
		return false
	}
	return p.remove(e)
}

// Count returns how many entities hold a T.
func Count[T any](r *Registry) int {
	if p := poolOf[T](r, false); p != nil {
		return p.len()
	}
	return 0
}

// ComponentCount returns the number of components attached to e.
func (r *Registry) ComponentCount(e Entity) int {
	if !r.Alive(e) {
		return 0
	}
	n := 0
	for _, p := range r.pools {
		if p.has(e) {
			n++
		}
	}
	return n
}
