// Package ecs provides the sparse-set entity registry that owns all component
// data of a scene. Entities are generation-checked handles; a destroyed handle
// never resolves again.
package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrStaleEntity      = errors.New("ecs: entity is not alive")
	ErrComponentExists  = errors.New("ecs: component already present")
	ErrComponentMissing = errors.New("ecs: component not present")
	ErrIterating        = errors.New("ecs: registry mutated during iteration")
)

// Entity is an opaque handle into a Registry. The zero value is the null entity.
type Entity struct {
	Index uint32
	Gen   uint32
}

// Null is the handle that never resolves.
var Null = Entity{}

// IsNull reports whether e is the null handle.
func (e Entity) IsNull() bool {
	return e.Gen == 0
}

func (e Entity) String() string {
	if e.IsNull() {
		return "entity(null)"
	}
	return fmt.Sprintf("entity(%d:%d)", e.Index, e.Gen)
}
